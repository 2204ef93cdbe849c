/*
Package netconf is a NETCONF (RFC6241) client.

A session.Session runs the protocol over any transport.Conn: it exchanges
<hello> messages, switches to chunked framing (RFC6242) when both peers
support :base:1.1, and demultiplexes replies and notifications received
on the connection. Each RPC sent returns a session.Future settled by its
reply; replies are correlated to requests by order.

Manager adds request builders, per-request timeouts and request and reply
tracing on top of a session:

	conn, err := ssh.Dial(ctx, "router:830", ssh.PasswordConfig("admin", "secret", nil))
	if err != nil {
		return err
	}
	m, err := netconf.Connect(conn, nil)
	if err != nil {
		return err
	}
	defer m.Close()
	reply, err := m.GetConfig(ctx, "running", netconf.Subtree("<interfaces/>"))

Transports for SSH (transport/ssh), TLS (transport/tls) and call home
(transport/callhome) are provided in sub-packages.
*/
package netconf
