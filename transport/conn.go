package transport

import (
	"io"
	"net"
	"sync"

	"github.com/pkg/errors"
)

// Conn is a NETCONF transport connection.
type Conn interface {
	// Recv blocks until at least one and at most max bytes are available.
	// Zero bytes with a nil error or io.EOF indicates an orderly close.
	// Other errors are returned as the underlying stream reported them.
	Recv(max int) ([]byte, error)
	// SendAll writes all of b, or returns the underlying stream's error.
	SendAll(b []byte) error
	// Close closes the connection. Calling Close more than once is
	// permitted and returns the result of the first call.
	Close() error
}

// Addresser is implemented by Conns with network endpoints.
type Addresser interface {
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// Stream is a Conn built from an input stream, an output stream and any
// number of closers called, in order, on Close.
type Stream struct {
	r       io.Reader
	w       io.Writer
	closers []io.Closer
	addrs   Addresser

	once     sync.Once
	closeErr error
}

// NewStream returns a Stream reading from r and writing to w.
func NewStream(r io.Reader, w io.Writer, closers ...io.Closer) *Stream {
	return &Stream{r: r, w: w, closers: closers}
}

// NewNetConn returns a Stream over an established net.Conn.
func NewNetConn(c net.Conn) *Stream {
	s := NewStream(c, c, c)
	s.addrs = c
	return s
}

// WithAddrs returns s reporting the endpoints of a.
func (s *Stream) WithAddrs(a Addresser) *Stream {
	s.addrs = a
	return s
}

// LocalAddr returns the local network address, if known.
func (s *Stream) LocalAddr() net.Addr {
	if s.addrs == nil {
		return nil
	}
	return s.addrs.LocalAddr()
}

// RemoteAddr returns the remote network address, if known.
func (s *Stream) RemoteAddr() net.Addr {
	if s.addrs == nil {
		return nil
	}
	return s.addrs.RemoteAddr()
}

// Recv implements Conn.
func (s *Stream) Recv(max int) ([]byte, error) {
	if max < 1 {
		max = 1
	}
	b := make([]byte, max)
	for {
		n, err := s.r.Read(b)
		switch {
		case n > 0:
			return b[:n], nil
		case err == io.EOF:
			return nil, io.EOF
		case err != nil:
			return nil, err
		}
	}
}

// SendAll implements Conn.
func (s *Stream) SendAll(b []byte) error {
	for len(b) > 0 {
		n, err := s.w.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.WithStack(io.ErrShortWrite)
		}
		b = b[n:]
	}
	return nil
}

// Close implements Conn.
func (s *Stream) Close() error {
	s.once.Do(func() {
		for _, c := range s.closers {
			if err := c.Close(); err != nil && s.closeErr == nil {
				s.closeErr = errors.WithStack(err)
			}
		}
	})
	return s.closeErr
}

// Pipe returns two connected in-memory Conns.
func Pipe() (*Stream, *Stream) {
	a, b := net.Pipe()
	return NewNetConn(a), NewNetConn(b)
}
