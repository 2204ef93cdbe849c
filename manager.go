package netconf

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/ADTRAN/netconf-client/message"
	"github.com/ADTRAN/netconf-client/rpc"
	"github.com/ADTRAN/netconf-client/session"
	"github.com/ADTRAN/netconf-client/transport"
	"github.com/ADTRAN/netconf-client/xmlutil"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// DefaultTimeout is the default time a Manager waits for each reply.
const DefaultTimeout = 120 * time.Second

// Manager performs NETCONF operations on a Session, waiting at most its
// timeout for each reply and tracing requests and replies.
//
// Traces are logged at glog verbosity 2 unless replaced with WithTrace.
// Each trace shows the connection endpoints (and the log id, if set) and,
// for replies and failures, the round-trip time.
type Manager struct {
	session *session.Session
	timeout time.Duration
	logID   string
	trace   func(format string, args ...interface{})
	tracing func() bool
}

// NewManager returns a Manager for s.
func NewManager(s *session.Session, opts ...ManagerOption) *Manager {
	m := &Manager{session: s, timeout: DefaultTimeout, trace: glogTrace, tracing: glogTracing}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect establishes a session on conn and returns its Manager.
func Connect(conn transport.Conn, sessionOpts []session.Option, opts ...ManagerOption) (*Manager, error) {
	s, err := session.New(conn, sessionOpts...)
	if err != nil {
		return nil, err
	}
	return NewManager(s, opts...), nil
}

func glogTracing() bool { return bool(glog.V(2)) }

func glogTrace(format string, args ...interface{}) {
	glog.InfoDepth(2, fmt.Sprintf(format, args...))
}

// Session returns the underlying session.
func (m *Manager) Session() *session.Session { return m.session }

// Timeout returns the reply timeout.
func (m *Manager) Timeout() time.Duration { return m.timeout }

// LogID returns the log id given with WithLogID.
func (m *Manager) LogID() string { return m.logID }

// SessionID returns the session-id assigned by the server.
func (m *Manager) SessionID() uint64 { return m.session.ID() }

// Close closes the session. Pending requests fail with session.ErrClosed.
func (m *Manager) Close() error { return m.session.Close() }

// connInfo describes the connection for traces; direction is "=>" for
// requests and "<=" for replies.
func (m *Manager) connInfo(direction string) string {
	var local, peer net.Addr
	if a, ok := m.session.Transport().(transport.Addresser); ok {
		local, peer = a.LocalAddr(), a.RemoteAddr()
	}
	haveAddrs := local != nil && peer != nil
	switch {
	case m.logID != "" && haveAddrs:
		return fmt.Sprintf(" (%s) %s %s (%s)", hostOf(local), direction, m.logID, hostOf(peer))
	case m.logID != "":
		return fmt.Sprintf(" %s %s", direction, m.logID)
	case haveAddrs:
		return fmt.Sprintf(" %s %s %s", hostOf(local), direction, hostOf(peer))
	}
	return ""
}

func hostOf(a net.Addr) string {
	if host, _, err := net.SplitHostPort(a.String()); err == nil {
		return host
	}
	return a.String()
}

// elapsed formats d as seconds with millisecond precision.
func elapsed(d time.Duration) string {
	ms := d.Milliseconds()
	return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
}

// Do sends the complete <rpc> document req and waits for its reply. The
// wait ends at the Manager's timeout or when ctx is done, whichever is
// first; the request is then canceled, so its reply, if it arrives later,
// is queued as unknown.
//
// A reply containing <rpc-error> elements is returned as an
// *ncerr.RPCError.
func (m *Manager) Do(ctx context.Context, op string, req []byte) (*message.Message, error) {
	// documents are only formatted when traced
	tracing := m.tracing()
	if tracing {
		m.trace("NC Request%s [%s]:\n%s", m.connInfo("=>"), op, xmlutil.Pretty(req))
	}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	f := m.session.SendRPC(req)
	reply, err := f.Result(ctx)
	taken := elapsed(time.Since(start))

	switch {
	case err == nil:
		if tracing {
			m.trace("NC Response%s [%s] (%s sec):\n%s", m.connInfo("<="), op, taken, xmlutil.Pretty(reply.Raw))
		}
		return reply, nil
	case errors.Is(err, context.DeadlineExceeded):
		f.Cancel()
		if tracing {
			m.trace("NC Failure%s [%s] (%s sec)\nCause: RPC timeout (max. %v)\n", m.connInfo("<="), op, taken, m.timeout)
		}
		return nil, errors.Wrapf(err, "%s: no reply within %v", op, m.timeout)
	case errors.Is(err, context.Canceled):
		f.Cancel()
		if tracing {
			m.trace("NC Failure%s [%s] (%s sec)\nCause: RPC cancelled\n", m.connInfo("<="), op, taken)
		}
		return nil, err
	}
	if tracing {
		m.trace("NC Failure%s [%s] (%s sec)\nCause: RPC exception: %v\n", m.connInfo("<="), op, taken, err)
	}
	return nil, err
}

func (m *Manager) do(ctx context.Context, op string, req []byte) error {
	_, err := m.Do(ctx, op, req)
	return err
}

func (m *Manager) data(ctx context.Context, op string, req []byte) (*DataReply, error) {
	reply, err := m.Do(ctx, op, req)
	if err != nil {
		return nil, err
	}
	return newDataReply(reply)
}

// Dispatch wraps operation, an XML element, in an <rpc> and sends it.
func (m *Manager) Dispatch(ctx context.Context, operation string) (*RPCReply, error) {
	reply, err := m.Do(ctx, "dispatch", rpc.Wrap(operation))
	if err != nil {
		return nil, err
	}
	return &RPCReply{Message: reply}, nil
}

// EditConfig sends an <edit-config> of config to the target datastore.
func (m *Manager) EditConfig(ctx context.Context, target, config string, opts ...rpc.Option) error {
	return m.do(ctx, "edit-config", rpc.EditConfig(target, config, opts...))
}

// Get sends a <get> request. Filters given with rpc.WithFilter may be
// built with Subtree or XPath.
func (m *Manager) Get(ctx context.Context, opts ...rpc.Option) (*DataReply, error) {
	return m.data(ctx, "get", rpc.Get(opts...))
}

// GetConfig sends a <get-config> request for the source datastore.
func (m *Manager) GetConfig(ctx context.Context, source string, opts ...rpc.Option) (*DataReply, error) {
	return m.data(ctx, "get-config", rpc.GetConfig(source, opts...))
}

// GetData sends an NMDA <get-data> request for datastore, such as
// "ds:operational".
func (m *Manager) GetData(ctx context.Context, datastore string, opts ...rpc.Option) (*DataReply, error) {
	return m.data(ctx, "get-data", rpc.GetData(datastore, opts...))
}

// CopyConfig sends a <copy-config> request. source is a datastore name or
// a complete <config> element.
func (m *Manager) CopyConfig(ctx context.Context, target, source string, opts ...rpc.Option) error {
	return m.do(ctx, "copy-config", rpc.CopyConfig(target, source, opts...))
}

// DeleteConfig sends a <delete-config> request.
func (m *Manager) DeleteConfig(ctx context.Context, target string) error {
	return m.do(ctx, "delete-config", rpc.DeleteConfig(target))
}

// DiscardChanges sends a <discard-changes> request.
func (m *Manager) DiscardChanges(ctx context.Context) error {
	return m.do(ctx, "discard-changes", rpc.DiscardChanges())
}

// Commit sends a <commit> request.
func (m *Manager) Commit(ctx context.Context, opts ...rpc.Option) error {
	return m.do(ctx, "commit", rpc.Commit(opts...))
}

// CancelCommit sends a <cancel-commit> request.
func (m *Manager) CancelCommit(ctx context.Context, opts ...rpc.Option) error {
	return m.do(ctx, "cancel-commit", rpc.CancelCommit(opts...))
}

// Lock sends a <lock> request for target.
func (m *Manager) Lock(ctx context.Context, target string) error {
	return m.do(ctx, "lock", rpc.Lock(target))
}

// Unlock sends an <unlock> request for target.
func (m *Manager) Unlock(ctx context.Context, target string) error {
	return m.do(ctx, "unlock", rpc.Unlock(target))
}

// KillSession sends a <kill-session> request.
func (m *Manager) KillSession(ctx context.Context, sessionID uint64) error {
	return m.do(ctx, "kill-session", rpc.KillSession(sessionID))
}

// CloseSession sends a <close-session> request. The server closes the
// session after replying.
func (m *Manager) CloseSession(ctx context.Context) error {
	return m.do(ctx, "close-session", rpc.CloseSession())
}

// CreateSubscription sends a <create-subscription> request. Notifications
// are then returned by TakeNotification.
func (m *Manager) CreateSubscription(ctx context.Context, opts ...rpc.Option) error {
	return m.do(ctx, "create-subscription", rpc.CreateSubscription(opts...))
}

// Validate sends a <validate> request.
func (m *Manager) Validate(ctx context.Context, source string) error {
	return m.do(ctx, "validate", rpc.Validate(source))
}

// TakeNotification returns the next received notification, waiting until
// one arrives, ctx is done or the session is closed and no notifications
// remain (session.ErrClosed).
func (m *Manager) TakeNotification(ctx context.Context) (*Notification, error) {
	msg, err := m.session.Notifications().Get(ctx)
	if err != nil {
		return nil, err
	}
	return &Notification{Message: msg}, nil
}

// TryTakeNotification returns the next received notification without
// waiting, or nil.
func (m *Manager) TryTakeNotification() *Notification {
	if msg, ok := m.session.Notifications().TryGet(); ok {
		return &Notification{Message: msg}
	}
	return nil
}
