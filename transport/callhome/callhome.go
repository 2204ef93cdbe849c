// Package callhome accepts NETCONF Call Home connections (RFC8071), where
// the server opens the TCP connection to the client and the client then
// runs the SSH or TLS client handshake over it.
package callhome

import (
	"context"
	stdtls "crypto/tls"
	"net"
	"time"

	"github.com/ADTRAN/netconf-client/transport/ssh"
	"github.com/ADTRAN/netconf-client/transport/tls"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	xssh "golang.org/x/crypto/ssh"
)

const (
	// DefaultSSHPort is the IANA assigned port for NETCONF Call Home over SSH.
	DefaultSSHPort = 4334
	// DefaultTLSPort is the IANA assigned port for NETCONF Call Home over TLS.
	DefaultTLSPort = 4335
)

// Listener accepts Call Home connections.
type Listener struct {
	ln net.Listener
}

// Listen listens on addr, such as ":4334".
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Listener{ln: ln}, nil
}

// NewListener returns a Listener accepting from ln.
func NewListener(ln net.Listener) *Listener { return &Listener{ln: ln} }

// Addr returns the listening address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Close stops listening. Connections already accepted stay open.
func (l *Listener) Close() error { return l.ln.Close() }

type deadliner interface {
	SetDeadline(time.Time) error
}

// Accept waits for the next connection or for ctx to be done.
func (l *Listener) Accept(ctx context.Context) (net.Conn, error) {
	if dl, ok := l.ln.(deadliner); ok {
		done := make(chan struct{})
		stopped := make(chan struct{})
		defer func() {
			close(done)
			<-stopped
			dl.SetDeadline(time.Time{})
		}()
		go func() {
			defer close(stopped)
			select {
			case <-ctx.Done():
				dl.SetDeadline(time.Now())
			case <-done:
			}
		}()
	}
	nc, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WithStack(err)
	}
	if glog.V(1) {
		glog.Infof("call home connection from %s", nc.RemoteAddr())
	}
	return nc, nil
}

// AcceptSSH accepts the next connection and starts the netconf subsystem
// over it.
func (l *Listener) AcceptSSH(ctx context.Context, config *xssh.ClientConfig) (*ssh.Conn, error) {
	nc, err := l.Accept(ctx)
	if err != nil {
		return nil, err
	}
	return ssh.NewClientConn(ctx, nc, nc.RemoteAddr().String(), config)
}

// AcceptTLS accepts the next connection and completes the TLS client
// handshake over it.
func (l *Listener) AcceptTLS(ctx context.Context, config *stdtls.Config) (*tls.Conn, error) {
	nc, err := l.Accept(ctx)
	if err != nil {
		return nil, err
	}
	return tls.Handshake(ctx, tls.Client(nc, config))
}
