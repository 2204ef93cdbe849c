package xmlutil

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Pretty returns doc indented for human readers. Namespace prefixes and
// declarations are kept as written. If doc is not well formed, the error
// and the plain document are returned instead.
func Pretty(doc []byte) string {
	out, err := Indent(doc, "  ")
	if err != nil {
		return fmt.Sprintf("Error: Cannot format XML message: %v\nPlain message is:\n%s", err, doc)
	}
	return string(out)
}

// Indent re-encodes doc with one element per line, nested by indent.
// Whitespace-only text and the XML declaration are dropped.
func Indent(doc []byte, indent string) ([]byte, error) {
	var buf bytes.Buffer
	dec := xml.NewDecoder(bytes.NewReader(doc))
	enc := xml.NewEncoder(&buf)
	enc.Indent("", indent)
	var depth, roots int
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
			}
			depth++
			t.Name = RawName(t.Name)
			attrs := make([]xml.Attr, len(t.Attr))
			for i, a := range t.Attr {
				attrs[i] = xml.Attr{Name: RawName(a.Name), Value: a.Value}
			}
			t.Attr = attrs
			tok = t
		case xml.EndElement:
			depth--
			t.Name = RawName(t.Name)
			tok = t
		case xml.CharData:
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			if depth == 0 {
				return nil, errors.New("text outside document element")
			}
		case xml.ProcInst:
			if t.Target == "xml" {
				continue
			}
		}
		if err := enc.EncodeToken(tok); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, errors.WithStack(err)
	}
	if roots != 1 {
		return nil, errors.Errorf("%d document elements", roots)
	}
	return buf.Bytes(), nil
}
