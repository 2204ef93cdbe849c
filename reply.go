package netconf

import (
	"github.com/ADTRAN/netconf-client/message"
	"github.com/antchfx/xmlquery"
	"github.com/pkg/errors"
)

// ErrNoData is returned for a data retrieval reply without <data>.
var ErrNoData = errors.New("reply has no <data> element")

// RPCReply is a non-error reply to an <rpc>.
type RPCReply struct {
	*message.Message
}

// DataReply is a reply containing a <data> element, in either the base
// or the NMDA namespace.
type DataReply struct {
	*message.Message
	// Data is the <data> element.
	Data *xmlquery.Node
}

func newDataReply(m *message.Message) (*DataReply, error) {
	data := m.Data()
	if data == nil {
		return nil, errors.WithStack(ErrNoData)
	}
	return &DataReply{Message: m, Data: data}, nil
}

// DataXML returns the <data> element as XML.
func (r *DataReply) DataXML() string { return r.Data.OutputXML(true) }

// Notification is a received <notification>.
type Notification struct {
	*message.Message
}

// NotificationXML returns the notification as received.
func (n *Notification) NotificationXML() string { return string(n.Raw) }
