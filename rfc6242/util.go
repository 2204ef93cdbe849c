package rfc6242

import "github.com/ADTRAN/netconf-client/framing"

// ModeSetter is implemented by Decoder and Encoder.
type ModeSetter interface {
	SetFramingMode(mode framing.Mode)
}

// SetChunkedFraming switches each codec to chunked framing, as both
// peers do once their <hello> messages advertise :base:1.1.
func SetChunkedFraming(codecs ...ModeSetter) {
	for _, c := range codecs {
		c.SetFramingMode(framing.Chunked)
	}
}
