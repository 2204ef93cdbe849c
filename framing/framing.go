package framing

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Mode is a NETCONF transport framing mode.
type Mode int

const (
	// EndOfMessage is the :base:1.0 "]]>]]>" delimited framing mode.
	EndOfMessage Mode = iota
	// Chunked is the :base:1.1 chunked framing mode (RFC6242 section 4.2).
	Chunked
)

func (m Mode) String() string {
	switch m {
	case EndOfMessage:
		return "end-of-message"
	case Chunked:
		return "chunked"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

const (
	// MaxChunkSize is the largest chunk-size permitted by RFC6242.
	MaxChunkSize = 4294967295
	// maxChunkHeaderLength is the length of "\n#4294967295\n".
	maxChunkHeaderLength = 13
)

var (
	// tokenEOM is the message termination token found in end-of-message encoding streams
	tokenEOM = []byte("]]>]]>")
	// tokenEndOfChunks terminates a message in chunked encoding streams
	tokenEndOfChunks = []byte("\n##\n")
)

var (
	// ErrChunkSizeInvalid is returned for a chunk-size outside 1..4294967295.
	ErrChunkSizeInvalid = errors.New("chunk size out of range 1..4294967295")
	// ErrChunkHeaderTooLong is returned when a chunk header exceeds 13 bytes.
	ErrChunkHeaderTooLong = errors.New("chunk header too long")
	// ErrUnexpectedEndOfChunks is returned when an end-of-chunks marker
	// arrives before any chunk of the message.
	ErrUnexpectedEndOfChunks = errors.New("unexpected end-of-chunks")
	// ErrChunkHeaderNotFound is returned when neither a chunk header nor an
	// end-of-chunks marker could be found where one was required.
	ErrChunkHeaderNotFound = errors.New("expected chunk-header or end-of-chunks pattern not found")
)

// ProtocolError is a fatal framing error. Offset is the stream byte
// offset at which the offending input starts.
type ProtocolError struct {
	Err    error
	Offset int64
}

func (e *ProtocolError) Error() string {
	msg := "netconf framing error"
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Offset < 1 {
		return msg
	}
	return fmt.Sprintf("%s at input offset %d", msg, e.Offset)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// State is the decoder state carried between calls to Next or Feed.
// The zero value decodes end-of-message framed input from offset 0.
type State struct {
	Mode Mode

	// end-of-message: resume cursor into the unconsumed buffer
	pos int

	// chunked: accumulated message body and bytes left in the current chunk
	chunk     []byte
	remaining uint64

	// stream offset of the first unconsumed byte
	offset int64
}

// NewState returns a State decoding input framed in mode m.
func NewState(m Mode) State { return State{Mode: m} }

// WithMode returns a State decoding subsequent input in mode m. All partial
// message state is discarded, so it must only be called on a message
// boundary.
func (s State) WithMode(m Mode) State { return State{Mode: m, offset: s.offset} }

// Pending reports whether s holds part of a chunked message.
func (s State) Pending() bool { return len(s.chunk) > 0 || s.remaining > 0 }

// Offset returns the stream offset of the first byte not yet consumed.
func (s State) Offset() int64 { return s.offset }

// Next extracts at most one message from buf. When ok is true, msg holds the
// complete message; msg never aliases buf. rest is the unconsumed input
// which must be passed, with any newly received bytes appended, to the
// following call together with next.
func Next(buf []byte, st State) (msg, rest []byte, next State, ok bool, err error) {
	switch st.Mode {
	case EndOfMessage:
		return nextEOM(buf, st)
	case Chunked:
		return nextChunked(buf, st)
	}
	return nil, buf, st, false, errors.Errorf("unsupported framing mode %v", st.Mode)
}

// Feed extracts every complete message in buf.
func Feed(buf []byte, st State) (msgs [][]byte, rest []byte, next State, err error) {
	for {
		var msg []byte
		var ok bool
		msg, buf, st, ok, err = Next(buf, st)
		if err != nil || !ok {
			return msgs, buf, st, err
		}
		msgs = append(msgs, msg)
	}
}

func nextEOM(buf []byte, st State) ([]byte, []byte, State, bool, error) {
	if st.pos > len(buf) {
		st.pos = 0
	}
	idx := bytes.Index(buf[st.pos:], tokenEOM)
	if idx == -1 {
		// the delimiter may straddle the end of buf
		if resume := len(buf) - (len(tokenEOM) - 1); resume > 0 {
			st.pos = resume
		} else {
			st.pos = 0
		}
		return nil, buf, st, false, nil
	}
	end := st.pos + idx
	msg := make([]byte, end)
	copy(msg, buf[:end])
	advance := end + len(tokenEOM)
	st.pos = 0
	st.offset += int64(advance)
	return msg, buf[advance:], st, true, nil
}

func nextChunked(buf []byte, st State) ([]byte, []byte, State, bool, error) {
	for {
		if st.remaining > 0 {
			if len(buf) == 0 {
				return nil, buf, st, false, nil
			}
			n := uint64(len(buf))
			if n > st.remaining {
				n = st.remaining
			}
			st.chunk = append(st.chunk, buf[:n]...)
			buf = buf[n:]
			st.remaining -= n
			st.offset += int64(n)
			continue
		}

		if bytes.HasPrefix(buf, tokenEndOfChunks) {
			if len(st.chunk) == 0 {
				return nil, buf, st, false, &ProtocolError{Err: ErrUnexpectedEndOfChunks, Offset: st.offset}
			}
			msg := st.chunk
			st.chunk = nil
			st.offset += int64(len(tokenEndOfChunks))
			return msg, buf[len(tokenEndOfChunks):], st, true, nil
		}

		size, hlen, found := chunkHeader(buf)
		switch {
		case found && hlen > maxChunkHeaderLength:
			return nil, buf, st, false, &ProtocolError{Err: ErrChunkHeaderTooLong, Offset: st.offset}
		case found:
			if size == 0 || size > MaxChunkSize {
				return nil, buf, st, false, &ProtocolError{
					Err:    errors.Wrapf(ErrChunkSizeInvalid, "chunk size %s", buf[2:hlen-1]),
					Offset: st.offset,
				}
			}
			st.remaining = size
			st.offset += int64(hlen)
			buf = buf[hlen:]
		case len(buf) >= maxChunkHeaderLength:
			if partialHeader(buf[:maxChunkHeaderLength]) {
				return nil, buf, st, false, &ProtocolError{Err: ErrChunkHeaderTooLong, Offset: st.offset}
			}
			return nil, buf, st, false, &ProtocolError{Err: ErrChunkHeaderNotFound, Offset: st.offset}
		default:
			// partial header, wait for more input
			return nil, buf, st, false, nil
		}
	}
}

// chunkHeader matches "\n#<digits>\n" at the start of b, returning the
// chunk size and header length. Sizes too large for uint64 are reported as
// MaxChunkSize+1.
func chunkHeader(b []byte) (size uint64, hlen int, found bool) {
	if len(b) < 4 || b[0] != '\n' || b[1] != '#' {
		return 0, 0, false
	}
	i := 2
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	if i == 2 || i == len(b) || b[i] != '\n' {
		return 0, 0, false
	}
	hlen = i + 1
	if hlen > maxChunkHeaderLength {
		return 0, hlen, true
	}
	size, err := strconv.ParseUint(string(b[2:i]), 10, 64)
	if err != nil {
		size = MaxChunkSize + 1
	}
	return size, hlen, true
}

// partialHeader reports whether b is "\n#" followed only by digits.
func partialHeader(b []byte) bool {
	if len(b) < 3 || b[0] != '\n' || b[1] != '#' {
		return false
	}
	for _, c := range b[2:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
