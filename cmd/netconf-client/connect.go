package main

import (
	"context"

	netconf "github.com/ADTRAN/netconf-client"
	"github.com/ADTRAN/netconf-client/config"
	"github.com/ADTRAN/netconf-client/session"
	"github.com/ADTRAN/netconf-client/transport"
	"github.com/ADTRAN/netconf-client/transport/callhome"
	"github.com/ADTRAN/netconf-client/transport/ssh"
	"github.com/ADTRAN/netconf-client/transport/tls"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	xssh "golang.org/x/crypto/ssh"
)

// connect opens the transport described by c. Tests replace it.
var connect = func(ctx context.Context, c *config.Config) (transport.Conn, error) {
	switch c.Transport {
	case config.SSH:
		sc, err := sshConfig(c)
		if err != nil {
			return nil, err
		}
		if c.CallHome != "" {
			l, err := callhome.Listen(c.CallHome)
			if err != nil {
				return nil, err
			}
			defer l.Close()
			glog.Infof("waiting for call home on %s", l.Addr())
			return l.AcceptSSH(ctx, sc)
		}
		return ssh.Dial(ctx, c.Address, sc)
	case config.TLS:
		tc, err := tls.LoadConfig(c.TLS.CertFile, c.TLS.KeyFile, c.TLS.CAFile, c.TLS.ServerName)
		if err != nil {
			return nil, err
		}
		if c.CallHome != "" {
			l, err := callhome.Listen(c.CallHome)
			if err != nil {
				return nil, err
			}
			defer l.Close()
			glog.Infof("waiting for call home on %s", l.Addr())
			return l.AcceptTLS(ctx, tc)
		}
		return tls.Dial(ctx, c.Address, tc)
	}
	return nil, errors.Errorf("unknown transport %q", c.Transport)
}

func sshConfig(c *config.Config) (*xssh.ClientConfig, error) {
	hostKeys, err := ssh.HostKeys(c.SSH.KnownHosts...)
	if err != nil {
		return nil, err
	}
	var sc *xssh.ClientConfig
	if c.SSH.KeyFile != "" {
		if sc, err = ssh.KeyFileConfig(c.SSH.User, c.SSH.KeyFile, []byte(c.SSH.Passphrase), hostKeys); err != nil {
			return nil, err
		}
		if c.SSH.Password != "" {
			sc.Auth = append(sc.Auth, xssh.Password(c.SSH.Password))
		}
	} else {
		sc = ssh.PasswordConfig(c.SSH.User, c.SSH.Password, hostKeys)
	}
	sc.Timeout = c.Timeout
	return sc, nil
}

// newManager connects and establishes a session as configured.
func newManager(ctx context.Context, c *config.Config) (*netconf.Manager, error) {
	conn, err := connect(ctx, c)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	var opts []session.Option
	if len(c.Capabilities) > 0 {
		opts = append(opts, session.WithCapabilities(c.Capabilities...))
	}
	if c.MaxChunkSize > 0 {
		opts = append(opts, session.WithMaximumChunkSize(c.MaxChunkSize))
	}
	m, err := netconf.Connect(conn, opts, netconf.WithTimeout(c.Timeout), netconf.WithLogID(c.LogID))
	if err != nil {
		return nil, errors.Wrap(err, "session")
	}
	return m, nil
}

// withManager runs fn on a new session, then closes it with
// <close-session>.
func withManager(ctx context.Context, fn func(context.Context, *netconf.Manager) error) error {
	m, err := newManager(ctx, cfg)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := fn(ctx, m); err != nil {
		return err
	}
	if err := m.CloseSession(ctx); err != nil {
		glog.Warningf("close-session: %v", err)
	}
	return nil
}
