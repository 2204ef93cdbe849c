package message

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/ADTRAN/netconf-client/xmlutil"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/pkg/errors"
)

// Hello is the content of a <hello> message.
type Hello struct {
	// SessionID is the session-id assigned by the server. It is zero in
	// hellos sent by clients.
	SessionID uint64
	// Capabilities lists the advertised capability URIs in document order.
	Capabilities []string
}

// DefaultCapabilities are the capabilities advertised by client sessions.
var DefaultCapabilities = []string{CapabilityBase11}

// ParseHello extracts the session-id and capabilities from a <hello>
// message. requireSessionID is true for hellos received from a server.
func ParseHello(m *Message, requireSessionID bool) (*Hello, error) {
	if m.Find(xpHello) == nil {
		return nil, errors.New("missing <hello> element")
	}
	h := &Hello{}
	for _, capability := range m.FindAll(xpHelloCapability) {
		if x := trimText(capability); x != "" {
			h.Capabilities = append(h.Capabilities, x)
		}
	}
	// we must have seen at least :base:1.0 or :base:1.1
	if len(h.Capabilities) == 0 {
		return nil, errors.New("missing non-empty <capability> element(s)")
	}

	sid := m.Find(xpHelloSessionID)
	switch {
	case sid == nil && requireSessionID:
		return nil, errors.New("no session-id received for client session")
	case sid == nil:
	default:
		idVal := trimText(sid)
		if idVal == "" {
			return nil, errors.New("missing session-id value")
		}
		v, err := strconv.ParseUint(idVal, 10, 32)
		if err != nil || v == 0 {
			return nil, errors.Errorf("invalid session-id value %q", idVal)
		}
		h.SessionID = v
	}
	return h, nil
}

// MarshalHello returns a <hello> document advertising capabilities, with
// a <session-id> element if sessionID is non-zero.
func MarshalHello(capabilities []string, sessionID uint64) ([]byte, error) {
	buf := new(bytes.Buffer)
	xe := xml.NewEncoder(buf)
	err := xe.EncodeToken(seHello)
	if err == nil {
		err = xe.EncodeToken(seCapabilities)
	}
	for _, capability := range capabilities {
		if err != nil {
			break
		}
		if err = xe.EncodeToken(seCapability); err == nil {
			if err = xe.EncodeToken(xml.CharData(capability)); err == nil {
				err = xe.EncodeToken(seCapability.End())
			}
		}
	}
	if err == nil {
		err = xe.EncodeToken(seCapabilities.End())
	}
	if err == nil && sessionID != 0 {
		if err = xe.EncodeToken(seSessionID); err == nil {
			if err = xe.EncodeToken(xml.CharData(strconv.FormatUint(sessionID, 10))); err == nil {
				err = xe.EncodeToken(seSessionID.End())
			}
		}
	}
	if err == nil {
		err = xe.EncodeToken(seHello.End())
	}
	if err == nil {
		err = xe.Flush()
	}
	if err != nil {
		return nil, errors.Wrap(err, "marshal hello")
	}
	return buf.Bytes(), nil
}

func trimText(n *xmlquery.Node) string { return strings.TrimSpace(n.InnerText()) }

var (
	xpHello           = xpath.MustCompile("/" + Q("hello", NamespaceBase))
	xpHelloCapability = xpath.MustCompile("/" + Q("hello", NamespaceBase) + "/" + Q("capabilities", NamespaceBase) + "/" + Q("capability", NamespaceBase))
	xpHelloSessionID  = xpath.MustCompile("/" + Q("hello", NamespaceBase) + "/" + Q("session-id", NamespaceBase))

	seHello        = xml.StartElement{Name: xmlutil.XMLName("hello", NamespaceBase)}
	seCapabilities = xml.StartElement{Name: xmlutil.XMLName("capabilities")}
	seCapability   = xml.StartElement{Name: xmlutil.XMLName("capability")}
	seSessionID    = xml.StartElement{Name: xmlutil.XMLName("session-id")}
)
