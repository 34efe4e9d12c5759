package validator_test

import (
	"testing"

	"github.com/pagelens/pagelens/internal/validator"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"plain http", "http://example.com", true},
		{"https with port and path", "https://example.com:8080/path", true},
		{"query and fragment", "https://example.com/search?q=go#top", true},
		{"localhost", "http://localhost", true},
		{"localhost with port", "http://localhost:3000/admin", true},
		{"ipv4 literal", "http://8.8.8.8/", true},
		{"trailing dot fqdn", "http://example.com./", true},
		{"subdomains", "https://a.b.example.co.uk/x", true},
		{"surrounding whitespace trimmed", "  https://example.com  ", true},
		{"internationalized host", "http://bücher.de", true},

		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"no scheme", "example.com", false},
		{"no authority", "http://", false},
		{"ftp scheme", "ftp://example.com", false},
		{"file scheme", "file:///etc/passwd", false},
		{"javascript scheme", "javascript:alert(1)", false},
		{"embedded space", "http://exa mple.com", false},
		{"embedded newline", "http://example.com/\npath", false},
		{"bare word", "not a url", false},
		{"missing tld", "http://example", false},
		{"numeric tld", "http://example.12345", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := validator.Validate(tc.raw); got != tc.want {
				t.Errorf("Validate(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestExtractHost(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		raw      string
		wantHost string
		wantOK   bool
	}{
		{"strips port", "https://Example.COM:8080/path", "example.com", true},
		{"plain host", "http://example.com", "example.com", true},
		{"ipv4 literal", "http://127.0.0.1/x", "127.0.0.1", true},
		{"invalid input", "not a url", "", false},
		{"wrong scheme", "ftp://example.com", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			host, ok := validator.ExtractHost(tc.raw)
			if ok != tc.wantOK || host != tc.wantHost {
				t.Errorf("ExtractHost(%q) = (%q, %v), want (%q, %v)",
					tc.raw, host, ok, tc.wantHost, tc.wantOK)
			}
		})
	}
}
