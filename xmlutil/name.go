package xmlutil

import "encoding/xml"

// XMLName returns an xml.Name for local in namespace space, if given.
func XMLName(local string, space ...string) xml.Name {
	if len(space) == 0 {
		return xml.Name{Local: local}
	}
	return xml.Name{Space: space[0], Local: local}
}

// RawName folds the prefix of a name read with xml.Decoder.RawToken into
// its local part, so an xml.Encoder writes it back unchanged.
func RawName(n xml.Name) xml.Name {
	if n.Space == "" {
		return n
	}
	return xml.Name{Local: n.Space + ":" + n.Local}
}
