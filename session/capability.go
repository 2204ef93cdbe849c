package session

import "strings"

// Capabilities is a slice of strings denoting NETCONF capability URIs
type Capabilities []string

// Has returns true if uri is in the capabilities set. Any query
// parameters (e.g. "?module=...") are ignored on both sides.
func (c Capabilities) Has(uri string) bool {
	uri = capabilityBase(uri)
	for _, cap := range c {
		if uri == capabilityBase(cap) {
			return true
		}
	}
	return false
}

func capabilityBase(uri string) string {
	if i := strings.IndexByte(uri, '?'); i > -1 {
		return uri[:i]
	}
	return uri
}
