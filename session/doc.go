/*
Package session offers a client NETCONF Session implementation.

Sessions are created using the New function, providing an established
transport.Conn. New performs the <hello> exchange: the client <hello> is
always sent with end-of-message framing, and the session switches to
chunked framing when both peers advertise :base:1.1.

Session execution

Each Session runs one receive goroutine. It decodes every incoming
message and dispatches it by document element:

	<rpc-reply>     settles the oldest pending Future
	<notification>  is appended to the Notifications queue
	anything else   is appended to the Unknown queue

Replies are matched to requests by order alone, as the NETCONF base
protocol requires servers to reply in request order; message-id values
are not inspected. A reply arriving when no request is pending, or whose
Future was canceled, is logged and appended to the Unknown queue.

Session close

Any receive error (transport failure, framing error, unparseable XML or
end of stream) closes the session. Close fails every pending Future with
ErrClosed, as it does any RPC sent afterwards.
*/
package session
