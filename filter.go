package netconf

import (
	"bytes"
	"encoding/xml"

	"github.com/ADTRAN/netconf-client/rpc"
	"github.com/pkg/errors"
)

// Filter types.
const (
	FilterSubtree = "subtree"
	FilterXPath   = "xpath"
)

// ConvertFilter returns the <filter> element of the given type. A subtree
// filter encloses value; an xpath filter selects it.
func ConvertFilter(kind, value string) (string, error) {
	switch kind {
	case FilterSubtree:
		return "<filter>" + value + "</filter>", nil
	case FilterXPath:
		var b bytes.Buffer
		b.WriteString(`<filter type="xpath" select="`)
		if err := xml.EscapeText(&b, []byte(value)); err != nil {
			return "", errors.WithStack(err)
		}
		b.WriteString(`"/>`)
		return b.String(), nil
	}
	return "", errors.Errorf("unimplemented filter type %q", kind)
}

// Subtree returns an rpc.WithFilter option with a subtree filter of
// content.
func Subtree(content string) rpc.Option {
	f, _ := ConvertFilter(FilterSubtree, content)
	return rpc.WithFilter(f)
}

// XPath returns an rpc.WithFilter option with an xpath filter selecting
// expr. The server must advertise the :xpath capability.
func XPath(expr string) rpc.Option {
	f, _ := ConvertFilter(FilterXPath, expr)
	return rpc.WithFilter(f)
}
