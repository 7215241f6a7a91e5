package resolver

import (
	"net/http"
	"strings"
)

// HeaderRule attaches Header to links starting with any of Prefixes. A rule
// without prefixes applies to every link.
type HeaderRule struct {
	Prefixes []string
	Header   http.Header
}

// Headers is an ordered list of header rules. Later rules override earlier
// ones for the same header name.
type Headers []HeaderRule

// For returns the merged headers that apply to link.
func (h Headers) For(link string) http.Header {
	out := http.Header{}
	for _, rule := range h {
		if !rule.matches(link) {
			continue
		}
		for name, values := range rule.Header {
			out[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
		}
	}
	return out
}

func (r HeaderRule) matches(link string) bool {
	if len(r.Prefixes) == 0 {
		return true
	}
	for _, p := range r.Prefixes {
		if strings.HasPrefix(link, p) {
			return true
		}
	}
	return false
}
