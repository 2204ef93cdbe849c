// Package ssh runs NETCONF over SSH (RFC6242) using the "netconf" SSH
// subsystem.
package ssh

import (
	"context"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/ADTRAN/netconf-client/transport"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultPort is the IANA assigned NETCONF over SSH port.
const DefaultPort = 830

const subsystem = "netconf"

// Conn is a NETCONF subsystem channel.
type Conn struct {
	*transport.Stream
	client  *ssh.Client
	session *ssh.Session
}

// Dial connects to addr, a "host" or "host:port" (port 830 if omitted),
// and starts the netconf subsystem. Closing the Conn also closes the SSH
// connection.
func Dial(ctx context.Context, addr string, config *ssh.ClientConfig) (*Conn, error) {
	addr = WithDefaultPort(addr, DefaultPort)
	d := net.Dialer{Timeout: config.Timeout}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return NewClientConn(ctx, nc, addr, config)
}

// NewClientConn runs the SSH client handshake on an established
// connection nc and starts the netconf subsystem. nc is closed if this
// fails, and when the returned Conn is closed.
func NewClientConn(ctx context.Context, nc net.Conn, addr string, config *ssh.ClientConfig) (*Conn, error) {
	// ssh.NewClientConn has no context, so unblock it by closing nc
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			nc.Close()
		case <-done:
		}
	}()

	sc, chans, reqs, err := ssh.NewClientConn(nc, addr, config)
	if err != nil {
		nc.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(err, "ssh handshake")
	}
	return newConn(ssh.NewClient(sc, chans, reqs), true)
}

// NewConn starts the netconf subsystem on a new session of client. The
// client is left open when the Conn is closed.
func NewConn(client *ssh.Client) (*Conn, error) { return newConn(client, false) }

func newConn(client *ssh.Client, managed bool) (*Conn, error) {
	fail := func(err error, msg string) (*Conn, error) {
		if managed {
			client.Close()
		}
		return nil, errors.Wrap(err, msg)
	}
	sess, err := client.NewSession()
	if err != nil {
		return fail(err, "ssh session")
	}
	w, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		return fail(err, "ssh stdin")
	}
	r, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		return fail(err, "ssh stdout")
	}
	if err := sess.RequestSubsystem(subsystem); err != nil {
		sess.Close()
		return fail(err, "start netconf subsystem")
	}

	closers := []io.Closer{w, closerFunc(func() error { return ignoreEOF(sess.Close()) })}
	if managed {
		closers = append(closers, client)
	}
	c := &Conn{client: client, session: sess}
	c.Stream = transport.NewStream(r, w, closers...).WithAddrs(client)
	return c, nil
}

// Client returns the SSH client.
func (c *Conn) Client() *ssh.Client { return c.client }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// ignoreEOF drops the io.EOF a session returns when the server closed the
// channel first.
func ignoreEOF(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}

// WithDefaultPort returns addr with port appended if it has none.
func WithDefaultPort(addr string, port int) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, strconv.Itoa(port))
}

// HostKeys returns a host key callback checking known_hosts files. With
// no files, host keys are not checked.
func HostKeys(files ...string) (ssh.HostKeyCallback, error) {
	if len(files) == 0 {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(files...)
	if err != nil {
		return nil, errors.Wrap(err, "known hosts")
	}
	return cb, nil
}

// PasswordConfig returns a client config authenticating user with
// password. A nil hostKey accepts any host key.
func PasswordConfig(user, password string, hostKey ssh.HostKeyCallback) *ssh.ClientConfig {
	return &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(password)},
		HostKeyCallback: orInsecure(hostKey),
	}
}

// KeyConfig returns a client config authenticating user with a PEM
// encoded private key, decrypted with passphrase if it is not empty. A nil
// hostKey accepts any host key.
func KeyConfig(user string, pemBytes, passphrase []byte, hostKey ssh.HostKeyCallback) (*ssh.ClientConfig, error) {
	var signer ssh.Signer
	var err error
	if len(passphrase) > 0 {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(pemBytes, passphrase)
	} else {
		signer, err = ssh.ParsePrivateKey(pemBytes)
	}
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}
	return &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: orInsecure(hostKey),
	}, nil
}

// KeyFileConfig is KeyConfig with the key read from path.
func KeyFileConfig(user, path string, passphrase []byte, hostKey ssh.HostKeyCallback) (*ssh.ClientConfig, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return KeyConfig(user, pemBytes, passphrase, hostKey)
}

func orInsecure(cb ssh.HostKeyCallback) ssh.HostKeyCallback {
	if cb == nil {
		return ssh.InsecureIgnoreHostKey()
	}
	return cb
}
