package session

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/ADTRAN/netconf-client/framing"
	"github.com/ADTRAN/netconf-client/message"
	"github.com/ADTRAN/netconf-client/ncerr"
	"github.com/ADTRAN/netconf-client/rfc6242"
	"github.com/ADTRAN/netconf-client/transport"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ErrClosed is the error of every RPC pending when its session closes, of
// every RPC sent afterwards, and of Queue.Get on a closed, empty queue.
var ErrClosed = errors.New("netconf session closed")

// Status is a Session's (present) state.
type Status int32

const (
	// StatusInactive is the initial session state, indicating that
	// I/O has not yet been started.
	StatusInactive Status = iota
	// StatusCapabilitiesExchange is set while the <hello> messages are
	// exchanged.
	StatusCapabilitiesExchange
	// StatusEstablished is set after capabilities exchange finishes
	// successfully. RPCs may be sent.
	StatusEstablished
	// StatusClosed indicates the session is closed.
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusCapabilitiesExchange:
		return "capabilities-exchange"
	case StatusEstablished:
		return "established"
	case StatusClosed:
		return "closed"
	}
	return "unknown"
}

// Stats holds session message counters.
type Stats struct {
	// RxMsgs is the number of NETCONF messages received on the session
	RxMsgs uint64
	// TxMsgs is the number of NETCONF messages sent on the session
	TxMsgs uint64
}

// Session is a client NETCONF session.
type Session struct {
	conn transport.Conn
	dec  *rfc6242.Decoder
	enc  *rfc6242.Encoder

	// sendMu serializes correlation table pushes with encoder writes
	sendMu  sync.Mutex
	pending table

	notifications *Queue
	unknown       *Queue

	id          uint64
	clientHello []byte
	serverHello []byte
	clientCaps  Capabilities
	serverCaps  Capabilities
	mode        framing.Mode

	status  atomic.Int32
	closing atomic.Bool
	rx, tx  atomic.Uint64

	closeOnce sync.Once
	done      chan struct{}
	errMu     sync.Mutex
	err       error
}

// New establishes a client session on conn. It sends the client <hello>,
// waits for the server's and negotiates the framing mode, then starts the
// receive loop. If the handshake fails, conn is closed and the error
// returned.
func New(conn transport.Conn, opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Session{
		conn:          conn,
		dec:           rfc6242.NewDecoder(conn, rfc6242.WithReadSize(cfg.readSize)),
		enc:           rfc6242.NewEncoder(conn, rfc6242.WithMaximumChunkSize(cfg.maxChunkSize)),
		notifications: NewQueue(),
		unknown:       NewQueue(),
		done:          make(chan struct{}),
	}
	s.setStatus(StatusCapabilitiesExchange)
	if err := s.handshake(cfg.capabilities); err != nil {
		if cerr := conn.Close(); cerr != nil {
			glog.V(2).Infof("netconf: close after failed handshake: %v", cerr)
		}
		s.setStatus(StatusClosed)
		s.pending.close()
		s.notifications.Close()
		s.unknown.Close()
		close(s.done)
		return nil, err
	}
	s.setStatus(StatusEstablished)
	go s.recvLoop()
	return s, nil
}

func (s *Session) handshake(capabilities []string) error {
	hello, err := message.MarshalHello(capabilities, 0)
	if err != nil {
		return err
	}
	s.clientHello = hello
	if err := s.enc.Encode(hello); err != nil {
		return errors.Wrap(err, "send <hello>")
	}
	s.tx.Add(1)

	raw, err := s.dec.Next()
	if err != nil {
		return errors.Wrap(err, "receive <hello>")
	}
	s.rx.Add(1)
	s.serverHello = raw
	m, err := message.Parse(raw)
	if err != nil {
		return err
	}
	server, err := message.ParseHello(m, true)
	if err != nil {
		return err
	}
	s.id = server.SessionID
	s.serverCaps = server.Capabilities

	// client capabilities are those of the <hello> actually sent
	cm, err := message.Parse(hello)
	if err != nil {
		return err
	}
	client, err := message.ParseHello(cm, false)
	if err != nil {
		return err
	}
	s.clientCaps = client.Capabilities

	if s.clientCaps.Has(message.CapabilityBase11) && s.serverCaps.Has(message.CapabilityBase11) {
		rfc6242.SetChunkedFraming(s.dec, s.enc)
		s.mode = framing.Chunked
	}
	glog.V(1).Infof("netconf: session %d established, %v framing, %d server capabilities",
		s.id, s.mode, len(s.serverCaps))
	return nil
}

// SendRPC sends the <rpc> document raw and returns the Future for its
// reply. SendRPC is safe for concurrent use; futures are queued in the
// order their RPCs are written. If the session is closed the Future fails
// with ErrClosed, and if the write fails it fails with the write error.
func (s *Session) SendRPC(raw []byte) *Future {
	f := newFuture()
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	// queue first so a fast reply always finds its future
	if !s.pending.push(f) {
		f.fail(ErrClosed)
		return f
	}
	if err := s.enc.Encode(raw); err != nil {
		s.pending.remove(f)
		f.fail(err)
		return f
	}
	s.tx.Add(1)
	if glog.V(3) {
		glog.Infof("netconf: session %d sent:\n%s", s.id, raw)
	}
	return f
}

func (s *Session) recvLoop() {
	for {
		raw, err := s.dec.Next()
		if err != nil {
			s.stop(err)
			return
		}
		s.rx.Add(1)
		if glog.V(3) {
			glog.Infof("netconf: session %d received:\n%s", s.id, raw)
		}
		m, err := message.Parse(raw)
		if err != nil {
			s.stop(err)
			return
		}
		s.dispatch(m)
	}
}

func (s *Session) dispatch(m *message.Message) {
	switch m.Kind {
	case message.KindRPCReply:
		f := s.pending.pop()
		if f == nil {
			glog.Warningf("netconf: session %d: an <rpc-reply> was received with no corresponding request: %s", s.id, m.Raw)
			s.unknown.Put(m)
			return
		}
		var settled bool
		if rerr := ncerr.FromReply(m); rerr != nil {
			settled = f.fail(rerr)
		} else {
			settled = f.resolve(m)
		}
		if !settled {
			glog.Warningf("netconf: session %d: dropped <rpc-reply> to canceled request: %s", s.id, m.Raw)
			s.unknown.Put(m)
		}
	case message.KindNotification:
		s.notifications.Put(m)
	default:
		glog.V(1).Infof("netconf: session %d: queued unexpected <%s> message", s.id, m.Root.Data)
		s.unknown.Put(m)
	}
}

// stop ends the session after the receive loop fails with err.
func (s *Session) stop(err error) {
	switch {
	case s.closing.Load():
		glog.V(1).Infof("netconf: session %d: receive loop stopped after close: %v", s.id, err)
	case err == io.EOF:
		glog.V(1).Infof("netconf: session %d: closed by peer", s.id)
	default:
		glog.Errorf("netconf: session %d: receive loop stopped: %v", s.id, err)
		s.errMu.Lock()
		s.err = err
		s.errMu.Unlock()
	}
	s.Close()
}

// Close closes the session's transport and fails every pending RPC with
// ErrClosed. It is safe to call Close concurrently and more than once.
// Transport close errors are logged, not returned.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closing.Store(true)
		if err := s.conn.Close(); err != nil {
			glog.V(2).Infof("netconf: session %d: transport close: %v", s.id, err)
		}
		s.setStatus(StatusClosed)
		pending := s.pending.close()
		for _, f := range pending {
			f.fail(ErrClosed)
		}
		if len(pending) > 0 {
			glog.V(1).Infof("netconf: session %d: failed %d pending requests", s.id, len(pending))
		}
		s.notifications.Close()
		s.unknown.Close()
		close(s.done)
	})
	return nil
}

// Notifications returns the queue of received <notification> messages.
func (s *Session) Notifications() *Queue { return s.notifications }

// Unknown returns the queue of received messages that are neither
// notifications nor replies to a pending RPC.
func (s *Session) Unknown() *Queue { return s.unknown }

// Transport returns the session's transport connection.
func (s *Session) Transport() transport.Conn { return s.conn }

// ID returns the session-id assigned by the server.
func (s *Session) ID() uint64 { return s.id }

// ServerCapabilities returns the capabilities of the server's <hello>.
func (s *Session) ServerCapabilities() Capabilities { return s.serverCaps }

// ClientCapabilities returns the capabilities of our <hello>.
func (s *Session) ClientCapabilities() Capabilities { return s.clientCaps }

// ServerHello returns the server's <hello> message as received.
func (s *Session) ServerHello() []byte { return s.serverHello }

// ClientHello returns the <hello> message sent to the server.
func (s *Session) ClientHello() []byte { return s.clientHello }

// FramingMode returns the negotiated framing mode.
func (s *Session) FramingMode() framing.Mode { return s.mode }

// Status returns the session status.
func (s *Session) Status() Status { return Status(s.status.Load()) }

func (s *Session) setStatus(st Status) { s.status.Store(int32(st)) }

// Done returns a channel closed once the session is closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the error that stopped the receive loop, or nil if the
// session is open or was closed normally.
func (s *Session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Pending returns the number of RPCs awaiting a reply.
func (s *Session) Pending() int { return s.pending.len() }

// Stats returns the session message counters.
func (s *Session) Stats() Stats {
	return Stats{RxMsgs: s.rx.Load(), TxMsgs: s.tx.Load()}
}
