package core

import (
	"net/netip"
	"regexp"
	"strings"
	"unicode"
)

// ImageFragment is the markdown appended to a draft for one embedded image.
func ImageFragment(url string) string {
	return "\n![](" + url + ")"
}

// scheme://[user[:pass]@]host[:port][/path?query#fragment]
//
// Parentheses and angle brackets are refused anywhere: the URL is embedded
// verbatim in markdown image syntax and must not be able to close it.
var absoluteURL = regexp.MustCompile(`(?i)^(?:https?|ftp)://(?:[^\s/@()<>]+(?::[^\s/@()<>]*)?@)?([^\s/?#:@()<>]+)(?::\d{2,5})?(?:[/?#][^\s()<>]*)?$`)

// ValidImageURL reports whether raw is an absolute URL that may be embedded
// as an external image. Loopback, private and link-local IPv4 hosts are refused.
func ValidImageURL(raw string) bool {
	m := absoluteURL.FindStringSubmatch(raw)
	if m == nil {
		return false
	}
	host := m[1]
	if addr, err := netip.ParseAddr(host); err == nil {
		return publicIPv4(addr)
	}
	return validHostname(host)
}

func publicIPv4(addr netip.Addr) bool {
	if !addr.Is4() {
		return false
	}
	b := addr.As4()
	switch {
	case b[0] == 10, b[0] == 127:
		return false
	case b[0] == 169 && b[1] == 254:
		return false
	case b[0] == 192 && b[1] == 168:
		return false
	case b[0] == 172 && b[1] >= 16 && b[1] <= 31:
		return false
	}
	// Class A-C unicast only; no network or broadcast address in the last octet.
	return b[0] >= 1 && b[0] <= 223 && b[3] >= 1 && b[3] <= 254
}

func validHostname(host string) bool {
	host = strings.TrimSuffix(host, ".")
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels[:len(labels)-1] {
		if !validLabel(label) {
			return false
		}
	}
	tld := []rune(labels[len(labels)-1])
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func validLabel(label string) bool {
	if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
		return false
	}
	for _, r := range label {
		if r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
