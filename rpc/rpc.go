// Package rpc builds NETCONF <rpc> request documents.
//
// Builders return the complete <rpc> element as bytes, ready to be sent
// with session.Session.SendRPC. Filter, config and source documents are
// inserted verbatim; simple values are XML escaped.
package rpc

import (
	"bytes"
	"crypto/rand"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ADTRAN/netconf-client/message"
	"github.com/ADTRAN/netconf-client/xmlutil"
)

const (
	// NamespaceWithDefaults is the RFC6243 with-defaults namespace.
	NamespaceWithDefaults = "urn:ietf:params:xml:ns:yang:ietf-netconf-with-defaults"
	// NamespaceDatastores is the RFC8342 datastores identity namespace.
	NamespaceDatastores = "urn:ietf:params:xml:ns:yang:ietf-datastores"
	// NamespaceOrigin is the RFC8342 origin identity namespace.
	NamespaceOrigin = "urn:ietf:params:xml:ns:yang:ietf-origin"
)

// newMessageID returns the message-id of requests built without
// WithMessageID.
var newMessageID = uuid

// uuid returns a random (version 4) UUID string.
func uuid() string {
	b := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic(err)
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}

// Wrap returns operation wrapped in an <rpc> element.
func Wrap(operation string, opts ...Option) []byte {
	return newRequest(opts).wrap(operation)
}

func (r *request) wrap(operation string) []byte {
	id := r.messageID
	if id == "" {
		id = newMessageID()
	}
	var b bytes.Buffer
	b.WriteString(`<rpc message-id="`)
	xml.EscapeText(&b, []byte(id))
	b.WriteString(`" xmlns="` + message.NamespaceBase + `">`)
	b.WriteString(operation)
	b.WriteString(`</rpc>`)
	return b.Bytes()
}

// builder accumulates an operation's XML.
type builder struct{ strings.Builder }

// elem writes <name>value</name> with value escaped.
func (b *builder) elem(name, value string) {
	b.WriteString("<" + name + ">")
	xml.EscapeText(b, []byte(value))
	b.WriteString("</" + name + ">")
}

// datastore writes <name><datastore/></name>.
func (b *builder) datastore(name, datastore string) {
	b.WriteString("<" + name + "><" + datastore + "/></" + name + ">")
}

func (b *builder) withDefaults(r *request) {
	if r.withDefaults != "" {
		b.WriteString(`<with-defaults xmlns="` + NamespaceWithDefaults + `">`)
		xml.EscapeText(b, []byte(r.withDefaults))
		b.WriteString(`</with-defaults>`)
	}
}

const ncPrefix = ` xmlns:nc="` + message.NamespaceBase + `"`

// getDataPrefixes are the prefixes of datastore and origin identities.
var getDataPrefixes = xmlutil.PrefixMap{"ds": NamespaceDatastores, "or": NamespaceOrigin}

// EditConfig returns an <edit-config> request loading config into target.
func EditConfig(target, config string, opts ...Option) []byte {
	r := newRequest(opts)
	var b builder
	b.WriteString("<edit-config" + ncPrefix + ">")
	b.datastore("target", target)
	if r.defaultOperation != "" {
		b.elem("default-operation", r.defaultOperation)
	}
	if r.testOption != "" {
		b.elem("test-option", r.testOption)
	}
	if r.errorOption != "" {
		b.elem("error-option", r.errorOption)
	}
	b.WriteString(config)
	b.WriteString("</edit-config>")
	return r.wrap(b.String())
}

// Get returns a <get> request.
func Get(opts ...Option) []byte {
	r := newRequest(opts)
	var b builder
	b.WriteString("<get" + ncPrefix + ">")
	b.WriteString(r.filter)
	b.withDefaults(r)
	b.WriteString("</get>")
	return r.wrap(b.String())
}

// GetConfig returns a <get-config> request for the source datastore.
func GetConfig(source string, opts ...Option) []byte {
	r := newRequest(opts)
	var b builder
	b.WriteString("<get-config" + ncPrefix + ">")
	b.datastore("source", source)
	b.WriteString(r.filter)
	b.withDefaults(r)
	b.WriteString("</get-config>")
	return r.wrap(b.String())
}

// GetData returns an RFC8526 <get-data> request for datastore, an
// identity such as "ds:operational" with the ds prefix bound to the
// datastores namespace.
func GetData(datastore string, opts ...Option) []byte {
	r := newRequest(opts)
	var b builder
	b.WriteString(`<get-data xmlns="` + message.NamespaceNMDA + `"` + getDataPrefixes.Declarations() + `>`)
	b.elem("datastore", datastore)
	b.WriteString(r.filter)
	if r.configFilter != nil {
		b.elem("config-filter", strconv.FormatBool(*r.configFilter))
	}
	tag := "origin-filter"
	if r.negateOriginFilters {
		tag = "negated-origin-filter"
	}
	for _, origin := range r.originFilters {
		b.elem(tag, origin)
	}
	if r.maxDepth > 0 {
		b.elem("max-depth", strconv.Itoa(r.maxDepth))
	}
	if r.withOrigin {
		b.WriteString("<with-origin/>")
	}
	b.withDefaults(r)
	b.WriteString("</get-data>")
	return r.wrap(b.String())
}

// CopyConfig returns a <copy-config> request. source is either a datastore
// name or an inline <config> element.
func CopyConfig(target, source string, opts ...Option) []byte {
	r := newRequest(opts)
	var b builder
	b.WriteString("<copy-config>")
	b.datastore("target", target)
	if strings.HasPrefix(source, "<config") {
		b.WriteString("<source>" + source + "</source>")
	} else {
		b.datastore("source", source)
	}
	b.withDefaults(r)
	b.WriteString("</copy-config>")
	return r.wrap(b.String())
}

// DeleteConfig returns a <delete-config> request.
func DeleteConfig(target string, opts ...Option) []byte {
	var b builder
	b.WriteString("<delete-config>")
	b.datastore("target", target)
	b.WriteString("</delete-config>")
	return Wrap(b.String(), opts...)
}

// DiscardChanges returns a <discard-changes> request.
func DiscardChanges(opts ...Option) []byte { return Wrap("<discard-changes/>", opts...) }

// Commit returns a <commit> request. Use Confirmed, ConfirmTimeout,
// Persist and PersistID for a confirmed commit.
func Commit(opts ...Option) []byte {
	r := newRequest(opts)
	var b builder
	b.WriteString("<commit>")
	if r.confirmed {
		b.WriteString("<confirmed/>")
	}
	if r.confirmTimeout > 0 {
		b.elem("confirm-timeout", strconv.Itoa(r.confirmTimeout))
	}
	if r.persist != "" {
		b.elem("persist", r.persist)
	}
	if r.persistID != "" {
		b.elem("persist-id", r.persistID)
	}
	b.WriteString("</commit>")
	return r.wrap(b.String())
}

// CancelCommit returns a <cancel-commit> request.
func CancelCommit(opts ...Option) []byte {
	r := newRequest(opts)
	var b builder
	b.WriteString("<cancel-commit>")
	if r.persistID != "" {
		b.elem("persist-id", r.persistID)
	}
	b.WriteString("</cancel-commit>")
	return r.wrap(b.String())
}

// Lock returns a <lock> request.
func Lock(target string, opts ...Option) []byte {
	var b builder
	b.WriteString("<lock>")
	b.datastore("target", target)
	b.WriteString("</lock>")
	return Wrap(b.String(), opts...)
}

// Unlock returns an <unlock> request.
func Unlock(target string, opts ...Option) []byte {
	var b builder
	b.WriteString("<unlock>")
	b.datastore("target", target)
	b.WriteString("</unlock>")
	return Wrap(b.String(), opts...)
}

// KillSession returns a <kill-session> request.
func KillSession(sessionID uint64, opts ...Option) []byte {
	var b builder
	b.WriteString("<kill-session>")
	b.elem("session-id", strconv.FormatUint(sessionID, 10))
	b.WriteString("</kill-session>")
	return Wrap(b.String(), opts...)
}

// CloseSession returns a <close-session> request.
func CloseSession(opts ...Option) []byte { return Wrap("<close-session/>", opts...) }

// CreateSubscription returns an RFC5277 <create-subscription> request.
// Use Stream, WithFilter, StartTime and StopTime to qualify it.
func CreateSubscription(opts ...Option) []byte {
	r := newRequest(opts)
	var b builder
	b.WriteString(`<create-subscription xmlns="` + message.NamespaceNotification + `">`)
	if r.stream != "" {
		b.elem("stream", r.stream)
	}
	b.WriteString(r.filter)
	if r.startTime != "" {
		b.elem("startTime", r.startTime)
	}
	if r.stopTime != "" {
		b.elem("stopTime", r.stopTime)
	}
	b.WriteString("</create-subscription>")
	return r.wrap(b.String())
}

// Validate returns a <validate> request. source is either a datastore
// name or an inline <config> element.
func Validate(source string, opts ...Option) []byte {
	var b builder
	b.WriteString("<validate>")
	if strings.HasPrefix(source, "<") {
		b.WriteString("<source>" + source + "</source>")
	} else {
		b.datastore("source", source)
	}
	b.WriteString("</validate>")
	return Wrap(b.String(), opts...)
}
