package session

import "github.com/ADTRAN/netconf-client/message"

// Option is a New option function.
type Option func(*config)

type config struct {
	capabilities []string
	readSize     int
	maxChunkSize uint32
}

func defaultConfig() config {
	return config{
		capabilities: message.DefaultCapabilities,
		readSize:     1024,
	}
}

// WithCapabilities replaces the capabilities advertised in the client
// <hello>. The default advertises :base:1.1 only.
func WithCapabilities(capabilities ...string) Option {
	return func(c *config) { c.capabilities = capabilities }
}

// WithReadSize sets the maximum number of bytes read from the transport
// at once.
func WithReadSize(bytes int) Option { return func(c *config) { c.readSize = bytes } }

// WithMaximumChunkSize limits the size of chunks sent once chunked framing
// is in use. The default sends each message as a single chunk.
func WithMaximumChunkSize(size uint32) Option { return func(c *config) { c.maxChunkSize = size } }
