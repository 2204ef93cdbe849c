// Package message parses and classifies NETCONF messages.
package message

import (
	"bytes"
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/pkg/errors"
)

const (
	// NamespaceBase is the NETCONF base XML namespace.
	NamespaceBase = "urn:ietf:params:xml:ns:netconf:base:1.0"
	// NamespaceNotification is the RFC5277 notification XML namespace.
	NamespaceNotification = "urn:ietf:params:xml:ns:netconf:notification:1.0"
	// NamespaceNMDA is the RFC8526 NMDA operations XML namespace.
	NamespaceNMDA = "urn:ietf:params:xml:ns:yang:ietf-netconf-nmda"

	// CapabilityBase10 is the :base:1.0 capability URI.
	CapabilityBase10 = "urn:ietf:params:netconf:base:1.0"
	// CapabilityBase11 is the :base:1.1 capability URI.
	CapabilityBase11 = "urn:ietf:params:netconf:base:1.1"
)

// Kind classifies a message by its document element.
type Kind int

const (
	// KindUnknown is any message not otherwise classified.
	KindUnknown Kind = iota
	// KindHello is a <hello> message.
	KindHello
	// KindRPCReply is an <rpc-reply> message.
	KindRPCReply
	// KindNotification is an RFC5277 <notification> message.
	KindNotification
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindHello:
		return "hello"
	case KindRPCReply:
		return "rpc-reply"
	case KindNotification:
		return "notification"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Message is a received NETCONF message and its parsed document.
type Message struct {
	// Raw is the message as received, without framing.
	Raw []byte
	// Doc is the document node.
	Doc *xmlquery.Node
	// Root is the document element.
	Root *xmlquery.Node
	// Kind is the message classification.
	Kind Kind
}

// ErrNoDocumentElement is returned by Parse for input without any element.
var ErrNoDocumentElement = errors.New("message has no document element")

// Parse parses raw into a Message.
func Parse(raw []byte) (*Message, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "parse message")
	}
	root := documentElement(doc)
	if root == nil {
		return nil, errors.WithStack(ErrNoDocumentElement)
	}
	return &Message{Raw: raw, Doc: doc, Root: root, Kind: kindOf(root)}, nil
}

func documentElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

func kindOf(root *xmlquery.Node) Kind {
	switch {
	case root.NamespaceURI == NamespaceBase && root.Data == "rpc-reply":
		return KindRPCReply
	case root.NamespaceURI == NamespaceBase && root.Data == "hello":
		return KindHello
	case root.NamespaceURI == NamespaceNotification && root.Data == "notification":
		return KindNotification
	}
	return KindUnknown
}

// Find returns the first node matching expr, or nil.
func (m *Message) Find(expr *xpath.Expr) *xmlquery.Node { return xmlquery.QuerySelector(m.Doc, expr) }

// FindAll returns all nodes matching expr.
func (m *Message) FindAll(expr *xpath.Expr) []*xmlquery.Node {
	return xmlquery.QuerySelectorAll(m.Doc, expr)
}

// MessageID returns the message-id attribute of the document element.
func (m *Message) MessageID() string { return m.Root.SelectAttr("message-id") }

// OK reports whether m is an <rpc-reply> containing <ok/>.
func (m *Message) OK() bool { return m.Find(xpReplyOK) != nil }

// RPCErrors returns the <rpc-error> children of an <rpc-reply>.
func (m *Message) RPCErrors() []*xmlquery.Node { return m.FindAll(xpReplyRPCError) }

// Data returns the <data> element of an <rpc-reply>, in either the base or
// the NMDA namespace, or nil.
func (m *Message) Data() *xmlquery.Node {
	if n := m.Find(xpReplyData); n != nil {
		return n
	}
	return m.Find(xpReplyDataNMDA)
}

// EventTime returns the eventTime of a notification.
func (m *Message) EventTime() string {
	if n := m.Find(xpEventTime); n != nil {
		return trimText(n)
	}
	return ""
}

func (m *Message) String() string { return string(m.Raw) }

// Q returns an expression matching an element by local name and namespace.
func Q(local, space string) string {
	return fmt.Sprintf("*[local-name()='%s' and namespace-uri()='%s']", local, space)
}

var (
	xpReplyOK       = xpath.MustCompile("/" + Q("rpc-reply", NamespaceBase) + "/" + Q("ok", NamespaceBase))
	xpReplyRPCError = xpath.MustCompile("/" + Q("rpc-reply", NamespaceBase) + "/" + Q("rpc-error", NamespaceBase))
	xpReplyData     = xpath.MustCompile("/" + Q("rpc-reply", NamespaceBase) + "/" + Q("data", NamespaceBase))
	xpReplyDataNMDA = xpath.MustCompile("/" + Q("rpc-reply", NamespaceBase) + "/" + Q("data", NamespaceNMDA))
	xpEventTime     = xpath.MustCompile("/" + Q("notification", NamespaceNotification) + "/" + Q("eventTime", NamespaceNotification))
)
