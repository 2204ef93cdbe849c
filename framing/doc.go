/*
Package framing offers pure RFC6242 end-of-message and chunked framing decoders.

Decoding is incremental: the caller owns the input buffer and a State, and
passes both to Next or Feed each time more input arrives. Next extracts at
most one message, allowing the framing mode to be changed (with
State.WithMode) exactly on a message boundary, as happens once the NETCONF
hello exchange has negotiated :base:1.1.

Framing errors are returned as *ProtocolError and are not recoverable.
*/
package framing
