package rfc6242

import (
	"strconv"

	"github.com/ADTRAN/netconf-client/framing"
	"github.com/pkg/errors"
)

// Sender is the output of an Encoder.
type Sender interface {
	// SendAll writes all of b or returns an error.
	SendAll(b []byte) error
}

// ErrEmptyChunkedMessage is returned when encoding an empty message in
// chunked framing mode, which has no valid encoding.
var ErrEmptyChunkedMessage = errors.New("cannot encode empty message with chunked framing")

// NewEncoder returns a new RFC6242 transport encoder with underlying
// output, configured with any options provided.
func NewEncoder(output Sender, opts ...EncoderOption) *Encoder {
	e := &Encoder{Output: output, MaxChunkSize: framing.MaxChunkSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encoder frames whole NETCONF messages. Each call to Encode results in a
// single call to the underlying Sender.
//
// Encoder is not safe for concurrent use.
type Encoder struct {
	// Output is the underlying Sender to receive encoded output
	Output Sender
	// ChunkedFraming sets whether the next call to Encode should use
	// chunked-message framing (true) or end-of-message framing (false)
	ChunkedFraming bool
	// MaxChunkSize is the maximum size of chunks the encoder will Encode. If
	// zero, the Encoder places no artificial ceiling on the chunk size.
	MaxChunkSize uint32
}

// SetFramingMode sets the framing of subsequent messages.
func (e *Encoder) SetFramingMode(mode framing.Mode) { e.ChunkedFraming = mode == framing.Chunked }

// FramingMode returns the framing of subsequent messages.
func (e *Encoder) FramingMode() framing.Mode {
	if e.ChunkedFraming {
		return framing.Chunked
	}
	return framing.EndOfMessage
}

// Encode writes msg with the current framing to the underlying Sender.
func (e *Encoder) Encode(msg []byte) error {
	frame, err := e.Frame(msg)
	if err != nil {
		return err
	}
	return e.Output.SendAll(frame)
}

// Frame returns msg encoded with the current framing.
func (e *Encoder) Frame(msg []byte) ([]byte, error) {
	if !e.ChunkedFraming {
		out := make([]byte, 0, len(msg)+len(tokenEOM))
		return append(append(out, msg...), tokenEOM...), nil
	}
	if len(msg) == 0 {
		return nil, errors.WithStack(ErrEmptyChunkedMessage)
	}
	limit := e.MaxChunkSize
	if limit == 0 {
		limit = framing.MaxChunkSize
	}

	// chunk encoding:
	// \n#<x>\n<x bytes data...>
	out := make([]byte, 0, len(msg)+32)
	for n := 0; n < len(msg); {
		chunksize := len(msg) - n
		if uint64(chunksize) > uint64(limit) {
			chunksize = int(limit)
		}
		out = append(out, '\n', '#')
		out = strconv.AppendInt(out, int64(chunksize), 10)
		out = append(out, '\n')
		out = append(out, msg[n:n+chunksize]...)
		n += chunksize
	}
	return append(out, tokenEndOfChunks...), nil
}

var (
	tokenEOM         = []byte("]]>]]>")
	tokenEndOfChunks = []byte("\n##\n")
)
