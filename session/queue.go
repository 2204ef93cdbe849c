package session

import (
	"context"
	"sync"

	"github.com/ADTRAN/netconf-client/message"
)

// Queue is an unbounded FIFO of received messages, safe for concurrent
// use. After Close, messages already queued remain available to Get.
type Queue struct {
	mu     sync.Mutex
	items  []*message.Message
	closed bool
	ready  chan struct{}
	done   chan struct{}
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1), done: make(chan struct{})}
}

// Put appends m, returning false if q is closed.
func (q *Queue) Put(m *message.Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, m)
	q.signal()
	return true
}

// signal must be called with q.mu held.
func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// TryGet returns the oldest message without blocking.
func (q *Queue) TryGet() (*message.Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	m := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) > 0 {
		q.signal()
	}
	return m, true
}

// Get blocks until a message is available, q is closed and empty
// (ErrClosed) or ctx is done (ctx.Err()).
func (q *Queue) Get(ctx context.Context) (*message.Message, error) {
	for {
		if m, ok := q.TryGet(); ok {
			return m, nil
		}
		select {
		case <-q.done:
			if m, ok := q.TryGet(); ok {
				return m, nil
			}
			return nil, ErrClosed
		default:
		}
		select {
		case <-q.ready:
		case <-q.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops q accepting messages and wakes blocked Get calls.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
}
