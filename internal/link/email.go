package link

import (
	"net/mail"
	"strings"
)

const (
	mailtoScheme   = "mailto:"
	maxAddressLen  = 254
	maxLocalPartLn = 64
)

// ValidMailto strips the mailto scheme and any header fields, then validates
// the remaining address.
func ValidMailto(link string) bool {
	addr := link
	if len(addr) >= len(mailtoScheme) && strings.EqualFold(addr[:len(mailtoScheme)], mailtoScheme) {
		addr = addr[len(mailtoScheme):]
	}
	addr, _, _ = strings.Cut(addr, "?")
	return ValidEmail(addr)
}

// ValidEmail reports whether addr is a bare RFC 5322 addr-spec.
func ValidEmail(addr string) bool {
	if addr == "" || len(addr) > maxAddressLen {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Name != "" || parsed.Address != addr {
		return false
	}
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 || at > maxLocalPartLn || at == len(addr)-1 {
		return false
	}
	domain := addr[at+1:]
	return !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".") && !strings.Contains(domain, "..")
}
