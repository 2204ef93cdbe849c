// Package tls runs NETCONF over TLS (RFC7589).
package tls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"strconv"

	"github.com/ADTRAN/netconf-client/transport"
	"github.com/pkg/errors"
)

// DefaultPort is the IANA assigned NETCONF over TLS port.
const DefaultPort = 6513

// Conn is a NETCONF over TLS connection.
type Conn struct {
	*transport.Stream
	conn *tls.Conn
}

// Dial connects to addr, a "host" or "host:port" (port 6513 if omitted),
// and completes the TLS handshake.
func Dial(ctx context.Context, addr string, config *tls.Config) (*Conn, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(DefaultPort))
	}
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return Handshake(ctx, Client(nc, config))
}

// Client returns a client side TLS connection over nc. If config names no
// server and verification is enabled, the server certificate chain is
// verified against config.RootCAs without checking a host name.
func Client(nc net.Conn, config *tls.Config) *tls.Conn {
	if config.ServerName == "" && !config.InsecureSkipVerify {
		roots := config.RootCAs
		config = config.Clone()
		config.InsecureSkipVerify = true
		config.VerifyConnection = func(cs tls.ConnectionState) error {
			return verifyChain(cs.PeerCertificates, roots)
		}
	}
	return tls.Client(nc, config)
}

func verifyChain(certs []*x509.Certificate, roots *x509.CertPool) error {
	if len(certs) == 0 {
		return errors.New("no server certificate")
	}
	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: x509.NewCertPool(),
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, c := range certs[1:] {
		opts.Intermediates.AddCert(c)
	}
	_, err := certs[0].Verify(opts)
	return err
}

// Handshake completes the TLS handshake on tc and returns it as a Conn. tc
// is closed if the handshake fails.
func Handshake(ctx context.Context, tc *tls.Conn) (*Conn, error) {
	if err := tc.HandshakeContext(ctx); err != nil {
		tc.Close()
		return nil, errors.Wrap(err, "tls handshake")
	}
	return NewConn(tc), nil
}

// NewConn returns a Conn over tc. The handshake runs on first use if it
// has not completed.
func NewConn(tc *tls.Conn) *Conn {
	return &Conn{Stream: transport.NewNetConn(tc), conn: tc}
}

// ConnectionState returns the TLS connection state.
func (c *Conn) ConnectionState() tls.ConnectionState { return c.conn.ConnectionState() }

// LoadConfig returns a client config presenting the certificate in
// certFile and keyFile. If caFile is set the server certificate must be
// signed by one of its certificates; otherwise it is not verified. An
// empty serverName skips the host name check.
func LoadConfig(certFile, keyFile, caFile, serverName string) (*tls.Config, error) {
	config := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: serverName,
	}
	if certFile != "" || keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, errors.Wrap(err, "load client certificate")
		}
		config.Certificates = []tls.Certificate{cert}
	}
	if caFile == "" {
		config.InsecureSkipVerify = true
		return config, nil
	}
	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.Errorf("no certificates in %s", caFile)
	}
	config.RootCAs = pool
	return config, nil
}
