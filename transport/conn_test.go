package transport

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type closeBuffer struct {
	*bytes.Buffer
	closed int
	err    error
}

func (cb *closeBuffer) Close() error {
	cb.closed++
	return cb.err
}

func TestStreamRecv(t *testing.T) {
	ck := assert.New(t)
	s := NewStream(strings.NewReader("foo]]>]]>"), io.Discard)

	b, err := s.Recv(4)
	ck.NoError(err)
	ck.Equal("foo]", string(b))

	b, err = s.Recv(100)
	ck.NoError(err)
	ck.Equal("]>]]>", string(b))

	b, err = s.Recv(100)
	ck.Equal(io.EOF, err)
	ck.Empty(b)
}

func TestStreamSendAll(t *testing.T) {
	ck := assert.New(t)
	out := &closeBuffer{Buffer: &bytes.Buffer{}}
	s := NewStream(strings.NewReader(""), out, out)
	ck.NoError(s.SendAll([]byte("\n#3\nfoo\n##\n")))
	ck.Equal("\n#3\nfoo\n##\n", out.String())
}

type failingStream struct{ err error }

func (f failingStream) Read([]byte) (int, error)  { return 0, f.err }
func (f failingStream) Write([]byte) (int, error) { return 0, f.err }

func TestStreamErrorsUnchanged(t *testing.T) {
	ck := assert.New(t)
	boom := errors.New("connection reset")
	s := NewStream(failingStream{boom}, failingStream{boom})

	b, err := s.Recv(10)
	ck.Empty(b)
	ck.Same(boom, err)
	ck.Same(boom, s.SendAll([]byte("x")))
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	ck := assert.New(t)
	boom := errors.New("close failed")
	first := &closeBuffer{Buffer: &bytes.Buffer{}, err: boom}
	second := &closeBuffer{Buffer: &bytes.Buffer{}}
	s := NewStream(first, second, first, second)

	err := s.Close()
	ck.True(errors.Is(err, boom))
	ck.Equal(err, s.Close())
	ck.Equal(1, first.closed)
	ck.Equal(1, second.closed)
}

func TestPipe(t *testing.T) {
	ck := assert.New(t)
	client, server := Pipe()
	defer client.Close()

	go func() {
		_ = server.SendAll([]byte("<hello/>]]>]]>"))
		server.Close()
	}()

	var got []byte
	for {
		b, err := client.Recv(5)
		if err != nil {
			ck.Equal(io.EOF, err)
			break
		}
		got = append(got, b...)
	}
	ck.Equal("<hello/>]]>]]>", string(got))
}
