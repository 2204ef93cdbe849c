package xmlutil

import (
	"bytes"
	"encoding/xml"
	"sort"
)

// PrefixMap maps namespace prefixes to namespace URIs.
type PrefixMap map[string]string

// NewPrefixMap returns the PrefixMap declared by the xmlns:<prefix>
// attributes in attrs.
func NewPrefixMap(attrs ...xml.Attr) PrefixMap {
	pmap := PrefixMap{}
	for _, attr := range attrs {
		if attr.Name.Space == "xmlns" {
			pmap[attr.Name.Local] = attr.Value
		}
	}
	return pmap
}

// Attr returns the map as xmlns:<prefix>="<uri>" attributes, sorted by
// prefix.
func (m PrefixMap) Attr() (a []xml.Attr) {
	for k, v := range m {
		a = append(a, xml.Attr{Name: XMLName(k, "xmlns"), Value: v})
	}
	sort.Slice(a, func(i, j int) bool { return a[i].Name.Local < a[j].Name.Local })
	return a
}

// Declarations returns the map as namespace declarations for an element
// start tag, each preceded by a space and sorted by prefix.
func (m PrefixMap) Declarations() string {
	var b bytes.Buffer
	for _, a := range m.Attr() {
		b.WriteString(" xmlns:" + a.Name.Local + `="`)
		xml.EscapeText(&b, []byte(a.Value))
		b.WriteByte('"')
	}
	return b.String()
}

// Namespace returns the namespace URI bound to prefix.
func (m PrefixMap) Namespace(prefix string) string { return m[prefix] }

// Prefix returns the prefixes bound to nsURI, sorted.
func (m PrefixMap) Prefix(nsURI string) (pfxes []string) {
	for k, v := range m {
		if nsURI == v {
			pfxes = append(pfxes, k)
		}
	}
	sort.Strings(pfxes)
	return pfxes
}
