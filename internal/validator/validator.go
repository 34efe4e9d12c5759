// Package validator performs purely syntactic acceptance of candidate URLs.
// It knows nothing about DNS or private address space; that separation is
// deliberate ("localhost" is syntactically valid here and rejected later by
// the security checker).
package validator

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// hostPattern accepts a dotted DNS name whose final label looks like a public
// suffix, the literal token "localhost", or a dotted-quad IPv4 literal.
var hostPattern = regexp.MustCompile(
	`^(?i:(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,6}\.?|localhost|\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})$`)

// Validate reports whether raw is an acceptable URL: parseable, scheme http
// or https, and a host matching hostPattern. Optional port, path, query and
// fragment are permitted. Malformed input yields false, never an error.
func Validate(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if strings.ContainsAny(raw, " \t\r\n") {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	// Internationalized hostnames are matched in their punycode form.
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}

	return hostPattern.MatchString(host)
}

// ExtractHost returns the hostname (without port) of raw, and true, only if
// raw passes Validate. Callers that need a host for resolution must obtain it
// here so the host is guaranteed to come from a syntactically valid URL.
func ExtractHost(raw string) (string, bool) {
	if !Validate(raw) {
		return "", false
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return strings.ToLower(u.Hostname()), true
}
