package session

import (
	"context"
	"sync"

	"github.com/ADTRAN/netconf-client/message"
)

// Future is the pending result of an RPC sent with Session.SendRPC. It is
// settled exactly once: with the <rpc-reply>, or with an error.
type Future struct {
	done  chan struct{}
	once  sync.Once
	reply *message.Message
	err   error
}

func newFuture() *Future { return &Future{done: make(chan struct{})} }

// settle sets the result, returning false if f was already settled.
func (f *Future) settle(reply *message.Message, err error) (ok bool) {
	f.once.Do(func() {
		f.reply, f.err = reply, err
		close(f.done)
		ok = true
	})
	return ok
}

func (f *Future) resolve(reply *message.Message) bool { return f.settle(reply, nil) }
func (f *Future) fail(err error) bool                 { return f.settle(nil, err) }

// Done returns a channel closed once f is settled.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result waits for f to be settled and returns the reply, or the error the
// RPC failed with: an *ncerr.RPCError, ErrClosed or a transport error. If
// ctx is done first, Result returns ctx.Err() and f remains pending.
func (f *Future) Result(ctx context.Context) (*message.Message, error) {
	select {
	case <-f.done:
		return f.reply, f.err
	default:
	}
	select {
	case <-f.done:
		return f.reply, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel settles f with context.Canceled, returning false if f was already
// settled. The reply to a canceled RPC is treated as orphaned.
func (f *Future) Cancel() bool { return f.fail(context.Canceled) }

// table is the FIFO of futures awaiting an <rpc-reply>. Replies are
// correlated by wire order alone.
type table struct {
	mu     sync.Mutex
	q      []*Future
	closed bool
}

// push appends f, returning false once the table is closed.
func (t *table) push(f *Future) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.q = append(t.q, f)
	return true
}

// pop removes and returns the oldest future, or nil.
func (t *table) pop() *Future {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.q) == 0 {
		return nil
	}
	f := t.q[0]
	t.q[0] = nil
	t.q = t.q[1:]
	return f
}

// remove removes f, returning false if it is no longer present.
func (t *table) remove(f *Future) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, g := range t.q {
		if g == f {
			t.q = append(t.q[:i], t.q[i+1:]...)
			return true
		}
	}
	return false
}

// close marks the table closed and returns the futures still pending.
func (t *table) close() []*Future {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	q := t.q
	t.q = nil
	return q
}

func (t *table) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.q)
}
