package xmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPretty(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "reply",
			input: `<?xml version="1.0" encoding="UTF-8"?><rpc-reply xmlns="urn:ietf:params:xml:ns:netconf:base:1.0" message-id="1"><data><a>1</a></data></rpc-reply>`,
			want: `<rpc-reply xmlns="urn:ietf:params:xml:ns:netconf:base:1.0" message-id="1">
  <data>
    <a>1</a>
  </data>
</rpc-reply>`,
		},
		{
			name: "prefixes kept",
			input: `<nc:rpc xmlns:nc="urn:ietf:params:xml:ns:netconf:base:1.0" nc:message-id="2">
    <nc:get/>
</nc:rpc>`,
			want: `<nc:rpc xmlns:nc="urn:ietf:params:xml:ns:netconf:base:1.0" nc:message-id="2">
  <nc:get></nc:get>
</nc:rpc>`,
		},
		{
			name:  "text escaped",
			input: `<a>x &amp; y</a>`,
			want:  `<a>x &amp; y</a>`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Pretty([]byte(tc.input)))
		})
	}
}

func TestPrettyMalformed(t *testing.T) {
	for _, input := range []string{
		`<a><b></a>`,
		`<a>`,
		`not xml`,
		``,
	} {
		t.Run(input, func(t *testing.T) {
			ck := assert.New(t)
			got := Pretty([]byte(input))
			ck.True(strings.HasPrefix(got, "Error: Cannot format XML message: "), got)
			ck.True(strings.HasSuffix(got, "\nPlain message is:\n"+input), got)
		})
	}
}
