package ssh

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

type testServer struct {
	addr     string
	hostKey  ssh.PublicKey
	received chan []byte
}

func newSigner(t *testing.T) ssh.Signer {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)
	return signer
}

// newTestServer accepts one connection authenticating admin/secret or any
// public key. A session requesting subsystem is sent greeting and
// everything it sends is delivered on received once it closes.
func newTestServer(t *testing.T, subsystem, greeting string) *testServer {
	config := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == "admin" && string(pass) == "secret" {
				return nil, nil
			}
			return nil, io.ErrUnexpectedEOF
		},
		PublicKeyCallback: func(ssh.ConnMetadata, ssh.PublicKey) (*ssh.Permissions, error) {
			return nil, nil
		},
	}
	signer := newSigner(t)
	config.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	srv := &testServer{addr: ln.Addr().String(), hostKey: signer.PublicKey(), received: make(chan []byte, 1)}
	go func() {
		nc, err := ln.Accept()
		if err != nil {
			return
		}
		defer nc.Close()
		_, chans, reqs, err := ssh.NewServerConn(nc, config)
		if err != nil {
			return
		}
		go ssh.DiscardRequests(reqs)
		for nch := range chans {
			if nch.ChannelType() != "session" {
				nch.Reject(ssh.UnknownChannelType, "unknown channel type")
				continue
			}
			ch, reqs, err := nch.Accept()
			if err != nil {
				return
			}
			go srv.handle(ch, reqs, subsystem, greeting)
		}
	}()
	return srv
}

func (srv *testServer) handle(ch ssh.Channel, reqs <-chan *ssh.Request, subsystem, greeting string) {
	started := make(chan struct{})
	go func() {
		for req := range reqs {
			ok := req.Type == "subsystem" && len(req.Payload) > 4 && string(req.Payload[4:]) == subsystem
			req.Reply(ok, nil)
			if ok {
				close(started)
			}
		}
	}()
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		ch.Close()
		return
	}
	io.WriteString(ch, greeting)
	var in bytes.Buffer
	io.Copy(&in, ch)
	ch.Close()
	srv.received <- in.Bytes()
}

func TestDial(t *testing.T) {
	ck := assert.New(t)
	srv := newTestServer(t, "netconf", "hello]]>]]>")

	c, err := Dial(context.Background(), srv.addr, PasswordConfig("admin", "secret", nil))
	require.NoError(t, err)
	ck.NotNil(c.Client())
	ck.Equal(srv.addr, c.RemoteAddr().String())

	var got []byte
	for len(got) < len("hello]]>]]>") {
		b, err := c.Recv(4)
		require.NoError(t, err)
		ck.True(len(b) <= 4)
		got = append(got, b...)
	}
	ck.Equal("hello]]>]]>", string(got))

	require.NoError(t, c.SendAll([]byte("<hello/>]]>]]>")))
	ck.NoError(c.Close())
	select {
	case in := <-srv.received:
		ck.Equal("<hello/>]]>]]>", string(in))
	case <-time.After(5 * time.Second):
		t.Fatal("server did not see the channel close")
	}
}

func TestDialBadPassword(t *testing.T) {
	srv := newTestServer(t, "netconf", "")
	_, err := Dial(context.Background(), srv.addr, PasswordConfig("admin", "wrong", nil))
	assert.ErrorContains(t, err, "ssh handshake")
}

func TestDialSubsystemRejected(t *testing.T) {
	srv := newTestServer(t, "other", "")
	_, err := Dial(context.Background(), srv.addr, PasswordConfig("admin", "secret", nil))
	assert.ErrorContains(t, err, "start netconf subsystem")
}

func TestDialContextCanceled(t *testing.T) {
	// a listener that never completes the SSH handshake
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		nc, err := ln.Accept()
		if err == nil {
			defer nc.Close()
			io.Copy(io.Discard, nc)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = Dial(ctx, ln.Addr().String(), PasswordConfig("admin", "secret", nil))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewConnLeavesClientOpen(t *testing.T) {
	srv := newTestServer(t, "netconf", "]]>]]>")
	client, err := ssh.Dial("tcp", srv.addr, PasswordConfig("admin", "secret", nil))
	require.NoError(t, err)
	defer client.Close()

	c, err := NewConn(client)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// the client can still open sessions
	sess, err := client.NewSession()
	require.NoError(t, err)
	sess.Close()
}

func TestKeyConfig(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	keyFile := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0o600))

	config, err := KeyFileConfig("admin", keyFile, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "admin", config.User)

	srv := newTestServer(t, "netconf", "]]>]]>")
	c, err := Dial(context.Background(), srv.addr, config)
	require.NoError(t, err)
	assert.NoError(t, c.Close())

	_, err = KeyConfig("admin", []byte("not a key"), nil, nil)
	assert.ErrorContains(t, err, "parse private key")
	_, err = KeyFileConfig("admin", filepath.Join(t.TempDir(), "missing"), nil, nil)
	assert.Error(t, err)
}

func TestHostKeys(t *testing.T) {
	srv := newTestServer(t, "netconf", "]]>]]>")
	known := filepath.Join(t.TempDir(), "known_hosts")
	line := knownhosts.Line([]string{knownhosts.Normalize(srv.addr)}, srv.hostKey)
	require.NoError(t, os.WriteFile(known, []byte(line+"\n"), 0o600))

	cb, err := HostKeys(known)
	require.NoError(t, err)
	c, err := Dial(context.Background(), srv.addr, PasswordConfig("admin", "secret", cb))
	require.NoError(t, err)
	c.Close()

	other := newTestServer(t, "netconf", "]]>]]>")
	line = knownhosts.Line([]string{knownhosts.Normalize(other.addr)}, srv.hostKey)
	require.NoError(t, os.WriteFile(known, []byte(line+"\n"), 0o600))
	cb, err = HostKeys(known)
	require.NoError(t, err)
	_, err = Dial(context.Background(), other.addr, PasswordConfig("admin", "secret", cb))
	assert.ErrorContains(t, err, "ssh handshake")

	_, err = HostKeys(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "known hosts")
	cb, err = HostKeys()
	require.NoError(t, err)
	assert.NotNil(t, cb)
}

func TestWithDefaultPort(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"router", "router:830"},
		{"router:22", "router:22"},
		{"10.0.0.1", "10.0.0.1:830"},
		{"::1", "[::1]:830"},
		{"[::1]:2022", "[::1]:2022"},
	} {
		assert.Equal(t, tc.want, WithDefaultPort(tc.in, DefaultPort), tc.in)
	}
}
