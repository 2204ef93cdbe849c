package rfc6242

import (
	"fmt"
	"testing"

	"github.com/ADTRAN/netconf-client/framing"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type testSender struct {
	sent [][]byte
	err  error
}

func (s *testSender) SendAll(b []byte) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, append([]byte(nil), b...))
	return nil
}

func TestDecodeEncode(t *testing.T) {
	for _, tc := range decoderCases {
		if tc.wantError != nil || len(tc.output) == 0 {
			continue
		}
		t.Run(tc.name, func(t *testing.T) {
			ck := assert.New(t)
			out := &testSender{}
			e := NewEncoder(out, WithMaximumChunkSize(7))
			e.ChunkedFraming = tc.chunked
			var want []string
			for _, msg := range tc.output {
				if msg == "" && tc.chunked {
					continue
				}
				ck.NoError(e.Encode([]byte(msg)))
				want = append(want, msg)
			}
			var input string
			for _, b := range out.sent {
				input += string(b)
			}
			d := testDecoderGetDecoder(tc.chunked, newTestReceiver(input, 5))
			got, err := decodeAll(d)
			ck.Error(err)
			ck.Equal(want, got)
			ck.Len(out.sent, len(want))
		})
	}
}

func TestEncoderEndOfMessage(t *testing.T) {
	ck := assert.New(t)
	out := &testSender{}
	e := NewEncoder(out)
	ck.NoError(e.Encode([]byte("Foo")))
	ck.NoError(e.Encode(nil))
	ck.Equal(framing.EndOfMessage, e.FramingMode())
	SetChunkedFraming(e)
	ck.Equal(framing.Chunked, e.FramingMode())
	ck.NoError(e.Encode([]byte("FooBars")))
	if ck.Len(out.sent, 3) {
		ck.Equal("Foo]]>]]>", string(out.sent[0]))
		ck.Equal("]]>]]>", string(out.sent[1]))
		ck.Equal("\n#7\nFooBars\n##\n", string(out.sent[2]))
	}
}

func TestEncoderErrors(t *testing.T) {
	ck := assert.New(t)
	boom := errors.New("broken pipe")
	out := &testSender{err: boom}
	e := NewEncoder(out, WithChunkedFraming())
	ck.True(errors.Is(e.Encode(nil), ErrEmptyChunkedMessage))
	ck.Equal(boom, e.Encode([]byte("x")))
}

func TestEncoderWithMaximumChunkSize(t *testing.T) {
	for _, tc := range []struct {
		size     uint32
		wantSize uint32
		input    string
		output   string
	}{
		{
			size:     0,
			wantSize: framing.MaxChunkSize,
			input:    "01234",
			output:   "\n#5\n01234\n##\n",
		},
		{
			size:   4,
			input:  "012345678",
			output: "\n#4\n0123\n#4\n4567\n#1\n8\n##\n",
		},
		{
			size:   1,
			input:  "012",
			output: "\n#1\n0\n#1\n1\n#1\n2\n##\n",
		},
	} {
		t.Run(fmt.Sprintf("size=%d/input=%q", tc.size, tc.input), func(t *testing.T) {
			ck := assert.New(t)
			e := NewEncoder(&testSender{}, WithMaximumChunkSize(tc.size), WithChunkedFraming())
			out, err := e.Frame([]byte(tc.input))
			ck.NoError(err)
			if tc.wantSize != 0 {
				ck.Equal(tc.wantSize, e.MaxChunkSize)
			} else {
				ck.Equal(tc.size, e.MaxChunkSize)
			}
			ck.Equal(tc.output, string(out))
		})
	}
}
