/*
Package transport provides the NETCONF transport layer.

A transport Conn is a duplex byte stream: Recv blocks for input, SendAll
writes a whole framed message and Close tears down the connection. The
message framing itself lives in package rfc6242; the SSH, TLS and call
home sub-packages establish Conns.
*/
package transport
