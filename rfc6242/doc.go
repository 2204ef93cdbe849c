// Copyright (c) 2018 Andrew Fort
//

// Package rfc6242 provides the NETCONF message framing layer shared by
// the NETCONF-over-SSH (RFC6242) and NETCONF-over-TLS (RFC7589)
// transports.
//
// This package supports both "end of message delimited" (:base:1.0) and
// "chunked framing" (:base:1.1) modes. NETCONF sessions upgrade a Decoder
// and Encoder's framing mode depending on session capability negotiation,
// see SetChunkedFraming.
//
// For writing to NETCONF peers, the Encoder frames each whole message and
// hands it to a Sender in a single call.
//
// To decode a NETCONF message stream from a peer, the Decoder reads from a
// Receiver and returns one complete message at a time, so the framing mode
// may be switched exactly between two messages.
package rfc6242
