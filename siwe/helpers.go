package siwe

import (
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	addressPattern  = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	hostnamePattern = regexp.MustCompile(`^(localhost|(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,})$`)
	schemePattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*$`)
	nonceAlphabet   = regexp.MustCompile(`^[a-zA-Z0-9]*$`)
)

const minNonceLength = 8

func IsValidAddress(address string) bool {
	return addressPattern.MatchString(address)
}

// IsValidDomain accepts an RFC 3986 authority without userinfo: a DNS name,
// localhost or an IP literal, optionally followed by a port.
func IsValidDomain(domain string) bool {
	host := domain
	if h, port, err := net.SplitHostPort(domain); err == nil {
		p, err := strconv.Atoi(port)
		if err != nil || p < 1 || p > 65535 {
			return false
		}
		host = h
	} else if strings.HasPrefix(domain, "[") {
		host = strings.TrimSuffix(strings.TrimPrefix(domain, "["), "]")
	} else if strings.Contains(domain, ":") {
		// IPv6 literals must be bracketed
		return false
	}

	if host == "" {
		return false
	}
	if hostnamePattern.MatchString(host) {
		return true
	}
	return net.ParseIP(host) != nil
}

func IsValidScheme(scheme string) bool {
	return schemePattern.MatchString(scheme)
}

// IsValidURI accepts absolute URIs only.
func IsValidURI(uri string) bool {
	if uri == "" || strings.ContainsAny(uri, " \t\r\n") {
		return false
	}
	u, err := url.Parse(uri)
	if err != nil {
		return false
	}
	return u.Scheme != "" && IsValidScheme(u.Scheme)
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}
