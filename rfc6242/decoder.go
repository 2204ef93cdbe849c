package rfc6242

import (
	"io"

	"github.com/ADTRAN/netconf-client/framing"
	"github.com/golang/glog"
)

// Receiver is the input source of a Decoder.
type Receiver interface {
	// Recv blocks until at least one byte and at most max bytes are
	// available. Returning zero bytes, with a nil error or io.EOF,
	// indicates the peer closed the stream in an orderly way.
	Recv(max int) ([]byte, error)
}

// Decoder is an RFC6242 transport framing decoder. It reads framed input
// from a Receiver and returns one complete NETCONF message per call to
// Next.
//
// Decoder is not safe for concurrent use.
type Decoder struct {
	// Input is the input source for the Decoder. The input stream
	// must consist of RFC6242 encoded data according to the current
	// framing mode.
	Input Receiver

	buf      []byte
	state    framing.State
	readSize int
	atEOF    bool
	err      error
}

// NewDecoder creates a new RFC6242 transport framing decoder. The decoder
// starts in end-of-message framing mode unless WithFramingMode is given.
func NewDecoder(input Receiver, options ...DecoderOption) *Decoder {
	d := &Decoder{
		Input:    input,
		state:    framing.NewState(framing.EndOfMessage),
		readSize: defaultReadSize,
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// Next returns the next complete message. It returns io.EOF once the
// input has been closed, a *framing.ProtocolError for malformed input and
// any Receiver error unchanged. Errors are sticky.
func (d *Decoder) Next() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	for {
		msg, rest, next, ok, err := framing.Next(d.buf, d.state)
		d.buf, d.state = rest, next
		switch {
		case err != nil:
			d.err = err
			return nil, err
		case ok:
			return msg, nil
		case d.atEOF:
			if len(d.buf) > 0 || d.state.Pending() {
				glog.V(1).Infof("rfc6242: discarding %d bytes of incomplete message at end of input", len(d.buf))
			}
			d.err = io.EOF
			return nil, d.err
		}

		b, err := d.Input.Recv(d.readSize)
		d.buf = append(d.buf, b...)
		switch {
		case err == io.EOF, err == nil && len(b) == 0:
			d.atEOF = true
		case err != nil:
			d.err = err
			return nil, err
		}
	}
}

// SetFramingMode changes the framing mode used to decode all input not
// yet returned by Next, including input already buffered. It must only be
// called between messages.
func (d *Decoder) SetFramingMode(mode framing.Mode) {
	d.state = d.state.WithMode(mode)
}

// FramingMode returns the decoder's current framing mode.
func (d *Decoder) FramingMode() framing.Mode { return d.state.Mode }

// Offset returns the number of input bytes consumed so far.
func (d *Decoder) Offset() int64 { return d.state.Offset() }

const (
	// defaultReadSize is the default maximum read size passed to Recv.
	defaultReadSize = 1024
)
