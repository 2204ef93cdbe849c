package rfc6242

import "github.com/ADTRAN/netconf-client/framing"

const (
	// DecoderMinReadSize is the read size floor.
	DecoderMinReadSize = 16
)

// DecoderOption is a constructor option function for the Decoder type.
type DecoderOption func(*Decoder)

// WithReadSize configures the maximum number of bytes the decoder asks
// its Receiver for on each read. If bytes is smaller than the constant
// DecoderMinReadSize, the read size will be set to DecoderMinReadSize.
func WithReadSize(bytes int) DecoderOption {
	return func(d *Decoder) {
		if bytes < DecoderMinReadSize {
			bytes = DecoderMinReadSize
		}
		d.readSize = bytes
	}
}

// WithFramingMode sets the Decoder's initial framing mode.
func WithFramingMode(mode framing.Mode) DecoderOption {
	return func(d *Decoder) { d.state = framing.NewState(mode) }
}

// EncoderOption is a constructor option function for the Encoder type.
type EncoderOption func(*Encoder)

// WithMaximumChunkSize limits the size of chunks written in chunked
// framing mode. A size of zero selects the RFC6242 maximum.
func WithMaximumChunkSize(size uint32) EncoderOption {
	return func(e *Encoder) {
		if size == 0 {
			size = framing.MaxChunkSize
		}
		e.MaxChunkSize = size
	}
}

// WithChunkedFraming sets the Encoder's initial framing mode to chunked.
func WithChunkedFraming() EncoderOption {
	return func(e *Encoder) { e.ChunkedFraming = true }
}
