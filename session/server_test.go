package session

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/ADTRAN/netconf-client/framing"
	"github.com/ADTRAN/netconf-client/message"
	"github.com/ADTRAN/netconf-client/rfc6242"
	"github.com/ADTRAN/netconf-client/transport"
	"github.com/stretchr/testify/require"
)

const (
	serverHello11 = `
  <hello xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">
    <capabilities>
      <capability>urn:ietf:params:netconf:base:1.1</capability>
      <capability>http://example.com/foo</capability>
    </capabilities>
    <session-id>4</session-id>
  </hello>
`

	serverHello10 = `
  <hello xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">
    <capabilities>
      <capability>http://example.com/foo</capability>
    </capabilities>
    <session-id>4</session-id>
  </hello>
`

	testRPC = `
  <rpc message-id="101" xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">
    <some-method/>
  </rpc>
`

	testRPCReply = `
<rpc-reply message-id="101"
     xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"
     xmlns:ex="http://example.net/content/1.0"
     ex:user-id="fred">
  <data />
</rpc-reply>
`

	testNotification = `
<notification
   xmlns="urn:ietf:params:xml:ns:netconf:notification:1.0">
   <eventTime>2007-07-08T00:01:00Z</eventTime>
   <event xmlns="http://example.com/event/1.0">
      <eventClass>fault</eventClass>
      <reportingEntity>
          <card>Ethernet0</card>
      </reportingEntity>
      <severity>major</severity>
    </event>
</notification>
`

	testRPCErrorReply = `
<rpc-reply message-id="101"
  xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"
  xmlns:xc="urn:ietf:params:xml:ns:netconf:base:1.0">
  <rpc-error>
    <error-type>application</error-type>
    <error-tag>invalid-value</error-tag>
    <error-severity>error</error-severity>
    <error-path xmlns:t="http://example.com/schema/1.2/config">
      /t:top/t:interface[t:name="Ethernet0/0"]/t:mtu
    </error-path>
  </rpc-error>
</rpc-reply>
`
)

func rpcWithID(id int) string {
	return fmt.Sprintf(`<rpc message-id="%d" xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"><get/></rpc>`, id)
}

func replyWithID(id string) string {
	return fmt.Sprintf(`<rpc-reply message-id="%s" xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"><ok/></rpc-reply>`, id)
}

// testServer is the peer of a client Session under test, connected by an
// in-memory pipe.
type testServer struct {
	t           *testing.T
	conn        *transport.Stream
	dec         *rfc6242.Decoder
	enc         *rfc6242.Encoder
	clientHello []byte
	received    chan []byte
}

// establish returns a client Session whose peer sent hello.
func establish(t *testing.T, hello string, opts ...Option) (*Session, *testServer) {
	client, server := transport.Pipe()
	srv := &testServer{
		t:        t,
		conn:     server,
		dec:      rfc6242.NewDecoder(server),
		enc:      rfc6242.NewEncoder(server),
		received: make(chan []byte, 100),
	}
	errc := make(chan error, 1)
	go func() {
		var err error
		if srv.clientHello, err = srv.dec.Next(); err == nil {
			err = srv.enc.Encode([]byte(hello))
		}
		errc <- err
	}()
	s, err := New(client, opts...)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	if s.FramingMode() == framing.Chunked {
		rfc6242.SetChunkedFraming(srv.dec, srv.enc)
	}
	t.Cleanup(func() {
		s.Close()
		server.Close()
	})
	return s, srv
}

// serve reads client messages into srv.received until the client closes.
func (srv *testServer) serve() {
	go func() {
		defer close(srv.received)
		for {
			msg, err := srv.dec.Next()
			if err != nil {
				return
			}
			srv.received <- msg
		}
	}()
}

// next returns the next message sent by the client.
func (srv *testServer) next() string {
	msg, ok := <-srv.received
	require.True(srv.t, ok, "client closed")
	return string(msg)
}

func (srv *testServer) send(msgs ...string) {
	for _, msg := range msgs {
		require.NoError(srv.t, srv.enc.Encode([]byte(msg)))
	}
}

// sendBurst sends msgs in a single transport write.
func (srv *testServer) sendBurst(msgs ...string) {
	var b bytes.Buffer
	for _, msg := range msgs {
		frame, err := srv.enc.Frame([]byte(msg))
		require.NoError(srv.t, err)
		b.Write(frame)
	}
	require.NoError(srv.t, srv.conn.SendAll(b.Bytes()))
}

// replyToEach answers every client RPC with an <ok/> reply carrying the
// RPC's message-id.
func (srv *testServer) replyToEach() {
	go func() {
		for msg := range srv.received {
			m, err := message.Parse(msg)
			if err != nil {
				return
			}
			if err := srv.enc.Encode([]byte(replyWithID(m.MessageID()))); err != nil {
				return
			}
		}
	}()
}
