package security_test

import (
	"context"
	"net"
	"testing"

	"github.com/pagelens/pagelens/internal/security"
	"github.com/pagelens/pagelens/internal/testutil"
)

func newTestChecker(t *testing.T) *security.Checker {
	t.Helper()
	resolver := &testutil.StaticResolver{Hosts: map[string][]net.IP{
		"example.com":          {net.ParseIP("93.184.216.34")},
		"internal.example.com": {net.ParseIP("10.1.2.3")},
		"router.example.com":   {net.ParseIP("192.168.0.5")},
		"localhost":            {net.ParseIP("127.0.0.1")},
		"metadata.example.com": {net.ParseIP("169.254.169.254")},
		"ula.example.com":      {net.ParseIP("fc00::1")},
		"multi.example.com":    {net.ParseIP("8.8.8.8"), net.ParseIP("10.0.0.1")},
	}}
	return security.NewChecker(resolver, testutil.NoopLogger{})
}

// ─── Verdict ────────────────────────────────────────────────────────────

func TestChecker_AllowsPublicHost(t *testing.T) {
	t.Parallel()
	c := newTestChecker(t)

	v := c.Verdict(context.Background(), "https://example.com/page")
	if !v.Allowed {
		t.Errorf("expected allowed, got rejected: %s", v.Reason)
	}
}

func TestChecker_BlocksPrivateRanges(t *testing.T) {
	t.Parallel()
	c := newTestChecker(t)

	urls := []string{
		"http://internal.example.com/",
		"http://router.example.com/",
		"http://localhost/admin",
		"http://metadata.example.com/latest",
		"http://ula.example.com/",
	}
	for _, u := range urls {
		if v := c.Verdict(context.Background(), u); v.Allowed {
			t.Errorf("expected %s to be blocked", u)
		}
	}
}

func TestChecker_BlocksIPLiterals(t *testing.T) {
	t.Parallel()
	c := newTestChecker(t)

	blocked := []string{
		"http://127.0.0.1/",
		"http://10.1.2.3/",
		"http://172.16.0.1/",
		"http://192.168.1.1/",
		"http://169.254.169.254/latest/meta-data",
	}
	for _, u := range blocked {
		if v := c.Verdict(context.Background(), u); v.Allowed {
			t.Errorf("expected %s to be blocked", u)
		}
	}

	if v := c.Verdict(context.Background(), "http://8.8.8.8/"); !v.Allowed {
		t.Errorf("expected public IP literal to be allowed, got: %s", v.Reason)
	}
}

func TestChecker_ResolutionFailureFailsClosed(t *testing.T) {
	t.Parallel()
	c := newTestChecker(t)

	v := c.Verdict(context.Background(), "http://missing.example.com/")
	if v.Allowed {
		t.Error("expected NXDOMAIN host to be rejected")
	}
	if v.Reason == "" {
		t.Error("expected a rejection reason")
	}
}

func TestChecker_FirstAnswerIsAuthoritative(t *testing.T) {
	t.Parallel()
	c := newTestChecker(t)

	// First answer is public; the private second answer is not examined.
	v := c.Verdict(context.Background(), "http://multi.example.com/")
	if !v.Allowed {
		t.Errorf("expected first-answer classification to allow, got: %s", v.Reason)
	}
}

func TestChecker_InvalidURLRejected(t *testing.T) {
	t.Parallel()
	c := newTestChecker(t)

	for _, u := range []string{"not a url", "ftp://example.com", ""} {
		if v := c.Verdict(context.Background(), u); v.Allowed {
			t.Errorf("expected %q to be rejected", u)
		}
	}
}

// ─── CheckIP ────────────────────────────────────────────────────────────

func TestChecker_CheckIP(t *testing.T) {
	t.Parallel()
	c := newTestChecker(t)

	blocked := []string{"127.0.0.1", "10.0.0.1", "172.31.255.255", "192.168.0.1",
		"169.254.0.1", "fc00::1", "fe80::1", "::1"}
	for _, raw := range blocked {
		if c.CheckIP(net.ParseIP(raw)) {
			t.Errorf("expected %s to be blocked", raw)
		}
	}

	allowed := []string{"8.8.8.8", "93.184.216.34", "2001:4860:4860::8888", "172.32.0.1"}
	for _, raw := range allowed {
		if !c.CheckIP(net.ParseIP(raw)) {
			t.Errorf("expected %s to be allowed", raw)
		}
	}
}

func TestChecker_IsSafe(t *testing.T) {
	t.Parallel()
	c := newTestChecker(t)

	if !c.IsSafe(context.Background(), "https://example.com/") {
		t.Error("expected example.com to be safe")
	}
	if c.IsSafe(context.Background(), "http://localhost/") {
		t.Error("expected localhost to be unsafe")
	}
}
