package ncerr

import (
	"strings"

	"github.com/ADTRAN/netconf-client/message"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// RPCError is the failure result of an RPC whose <rpc-reply> carried one
// or more <rpc-error> elements.
type RPCError struct {
	// Raw is the <rpc-reply> as received.
	Raw []byte
	// Doc is the parsed <rpc-reply> document.
	Doc *xmlquery.Node
	// Errors holds each <rpc-error>, in document order.
	Errors []Error
}

// FromReply returns the *RPCError for reply, or nil if reply carries no
// <rpc-error>.
func FromReply(reply *message.Message) *RPCError {
	nodes := reply.RPCErrors()
	if len(nodes) == 0 {
		return nil
	}
	e := &RPCError{Raw: reply.Raw, Doc: reply.Doc}
	for _, n := range nodes {
		e.Errors = append(e.Errors, FromNode(n))
	}
	return e
}

func (e *RPCError) Error() string { return e.Message() }

// Message returns the first <error-message>, or "RPC Error".
func (e *RPCError) Message() string {
	for _, err := range e.Errors {
		if err.Message != "" {
			return err.Message
		}
	}
	return "RPC Error"
}

// Tag returns the first <error-tag>.
func (e *RPCError) Tag() string {
	if len(e.Errors) == 0 {
		return ""
	}
	return e.Errors[0].Tag
}

// Severity returns the first <error-severity>.
func (e *RPCError) Severity() Severity {
	if len(e.Errors) == 0 {
		return SeverityError
	}
	return e.Errors[0].Severity
}

// Info returns the first <error-info> element, verbatim.
func (e *RPCError) Info() string {
	for _, err := range e.Errors {
		if err.InfoXML != "" {
			return err.InfoXML
		}
	}
	return ""
}

// HasTag reports whether any <rpc-error> has the given error-tag.
func (e *RPCError) HasTag(tag string) bool {
	for _, err := range e.Errors {
		if err.Tag == tag {
			return true
		}
	}
	return false
}

// FromNode decodes an <rpc-error> element. Unknown error-type and
// error-severity values leave the defaults in place.
func FromNode(n *xmlquery.Node) Error {
	e := Error{}
	e.XMLName.Space, e.XMLName.Local = n.NamespaceURI, n.Data
	if c := xmlquery.QuerySelector(n, xpErrorType); c != nil {
		_ = e.Type.UnmarshalText([]byte(c.InnerText()))
	}
	if c := xmlquery.QuerySelector(n, xpErrorSeverity); c != nil {
		_ = e.Severity.UnmarshalText([]byte(c.InnerText()))
	}
	e.Tag = childText(n, xpErrorTag)
	e.AppTag = childText(n, xpErrorAppTag)
	e.Path = childText(n, xpErrorPath)
	e.Message = childText(n, xpErrorMessage)
	if info := xmlquery.QuerySelector(n, xpErrorInfo); info != nil {
		e.InfoXML = info.OutputXML(true)
		e.Info = &ErrorInfo{
			BadAttribute: childText(info, xpBadAttribute),
			BadElement:   childText(info, xpBadElement),
			BadNamespace: childText(info, xpBadNamespace),
			SessionID:    childText(info, xpSessionID),
		}
	}
	return e
}

func childText(n *xmlquery.Node, expr *xpath.Expr) string {
	if c := xmlquery.QuerySelector(n, expr); c != nil {
		return strings.TrimSpace(c.InnerText())
	}
	return ""
}

func child(local string) *xpath.Expr {
	return xpath.MustCompile(message.Q(local, message.NamespaceBase))
}

var (
	xpErrorType     = child("error-type")
	xpErrorTag      = child("error-tag")
	xpErrorSeverity = child("error-severity")
	xpErrorAppTag   = child("error-app-tag")
	xpErrorPath     = child("error-path")
	xpErrorMessage  = child("error-message")
	xpErrorInfo     = child("error-info")
	xpBadAttribute  = child("bad-attribute")
	xpBadElement    = child("bad-element")
	xpBadNamespace  = child("bad-namespace")
	xpSessionID     = child("session-id")
)
