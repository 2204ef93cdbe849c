// Package ncerr models the <rpc-error> elements of NETCONF replies.
package ncerr

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Type is the <error-type> of an <rpc-error>: the layer that failed.
type Type int

// Error types.
const (
	TypeApplication Type = iota
	TypeProtocol
	TypeRPC
	TypeTransport
)

var typeNames = []string{"application", "protocol", "rpc", "transport"}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	i, err := lookup(typeNames, b)
	if err != nil {
		return errors.Wrap(err, "error-type")
	}
	*t = Type(i)
	return nil
}

// Severity is the <error-severity> of an <rpc-error>.
type Severity int

// Error severities. RFC6241 defines no warnings, but servers may send
// them.
const (
	SeverityError Severity = iota
	SeverityWarning
)

var severityNames = []string{"error", "warning"}

func (s Severity) String() string {
	if s >= 0 && int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	i, err := lookup(severityNames, b)
	if err != nil {
		return errors.Wrap(err, "error-severity")
	}
	*s = Severity(i)
	return nil
}

func lookup(names []string, b []byte) (int, error) {
	v := string(bytes.TrimSpace(b))
	for i, name := range names {
		if name == v {
			return i, nil
		}
	}
	return 0, errors.Errorf("unknown value %q", v)
}

// Error is one <rpc-error> of a reply.
type Error struct {
	XMLName  xml.Name   `xml:"urn:ietf:params:xml:ns:netconf:base:1.0 rpc-error" json:"-"`
	Type     Type       `xml:"error-type" json:"error-type"`
	Tag      string     `xml:"error-tag" json:"error-tag"`
	Severity Severity   `xml:"error-severity" json:"error-severity"`
	AppTag   string     `xml:"error-app-tag,omitempty" json:"error-app-tag,omitempty"`
	Path     string     `xml:"error-path,omitempty" json:"error-path,omitempty"`
	Message  string     `xml:"error-message,omitempty" json:"error-message,omitempty"`
	Info     *ErrorInfo `xml:"error-info,omitempty" json:"error-info,omitempty"`

	// InfoXML is the received <error-info> element, verbatim. Servers may
	// put elements other than those of ErrorInfo there.
	InfoXML string `xml:"-" json:"-"`
}

// ErrorInfo holds the <error-info> elements defined by RFC6241.
type ErrorInfo struct {
	BadAttribute string `xml:"bad-attribute,omitempty" json:"bad-attribute,omitempty"`
	BadElement   string `xml:"bad-element,omitempty" json:"bad-element,omitempty"`
	BadNamespace string `xml:"bad-namespace,omitempty" json:"bad-namespace,omitempty"`
	SessionID    string `xml:"session-id,omitempty" json:"session-id,omitempty"`
}

// Error formats e as "[warning ]<type> <tag>" followed by the fields that
// are set, then the message.
func (e Error) Error() string {
	var b strings.Builder
	if e.Severity != SeverityError {
		fmt.Fprintf(&b, "%s ", e.Severity)
	}
	fmt.Fprintf(&b, "%s %s", e.Type, e.Tag)
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, " %s=%s", name, value)
		}
	}
	field("app-tag", e.AppTag)
	field("path", e.Path)
	if e.Info != nil {
		field("bad-attribute", e.Info.BadAttribute)
		field("bad-element", e.Info.BadElement)
		field("bad-namespace", e.Info.BadNamespace)
		field("session-id", e.Info.SessionID)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

// <error-tag> values of RFC6241 Appendix A.
const (
	TagInUse                 = "in-use"
	TagInvalidValue          = "invalid-value"
	TagTooBig                = "too-big"
	TagMissingAttribute      = "missing-attribute"
	TagBadAttribute          = "bad-attribute"
	TagUnknownAttribute      = "unknown-attribute"
	TagMissingElement        = "missing-element"
	TagBadElement            = "bad-element"
	TagUnknownElement        = "unknown-element"
	TagUnknownNamespace      = "unknown-namespace"
	TagAccessDenied          = "access-denied"
	TagLockDenied            = "lock-denied"
	TagResourceDenied        = "resource-denied"
	TagRollbackFailed        = "rollback-failed"
	TagDataExists            = "data-exists"
	TagDataMissing           = "data-missing"
	TagOperationNotSupported = "operation-not-supported"
	TagOperationFailed       = "operation-failed"
	TagMalformedMessage      = "malformed-message"
)
