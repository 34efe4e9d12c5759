// Package security classifies URLs as safe or unsafe to fetch, blocking
// hosts that resolve into private, loopback or link-local address space
// (SSRF defense).
//
// Verdicts are computed fresh on every call and never cached: DNS answers
// are not stable, and a cached verdict would reopen a time-of-check/
// time-of-use gap. Only the first resolved address is examined, and the
// classifier runs again immediately before the fetch is issued; a narrow
// DNS-rebinding window between that check and the TCP connect remains. Treat
// the classifier as best-effort mitigation, not a hard guarantee.
package security

import (
	"context"
	"fmt"
	"net"

	"github.com/pagelens/pagelens/internal/interfaces"
	"github.com/pagelens/pagelens/internal/validator"
)

// Resolver is the forward-DNS lookup used for classification.
// *net.Resolver satisfies it.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// Verdict is the outcome of classifying one URL. Reason is set only when
// Allowed is false.
type Verdict struct {
	Allowed bool
	Reason  string
}

// blockedRanges is fixed. Changing it is a code change, not runtime
// configuration.
var blockedRanges = []string{
	"10.0.0.0/8",     // RFC1918
	"172.16.0.0/12",  // RFC1918
	"192.168.0.0/16", // RFC1918
	"127.0.0.0/8",    // loopback
	"169.254.0.0/16", // link-local
	"fc00::/7",       // unique local
	"fe80::/10",      // link-local
	"::1/128",        // loopback
}

// Checker classifies URLs against the fixed blocklist. It is stateless and
// safe for concurrent use; construct one at startup and share it.
type Checker struct {
	blocked  []*net.IPNet
	resolver Resolver
	logger   interfaces.Logger
}

// NewChecker builds a Checker. A nil resolver falls back to
// net.DefaultResolver.
func NewChecker(resolver Resolver, logger interfaces.Logger) *Checker {
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	blocked := make([]*net.IPNet, 0, len(blockedRanges))
	for _, cidr := range blockedRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// blockedRanges are constants; a parse failure is a programming error
			panic(fmt.Sprintf("security: bad blocked range %q: %v", cidr, err))
		}
		blocked = append(blocked, network)
	}

	return &Checker{
		blocked:  blocked,
		resolver: resolver,
		logger:   logger.With(interfaces.Field{Key: "component", Value: "security"}),
	}
}

// Verdict classifies rawURL. The host must come from a syntactically valid
// URL; hosts that fail validation, fail to resolve, or resolve into a
// blocked range are all unsafe. Resolution failure is unsafe by policy:
// fail closed, never open.
func (c *Checker) Verdict(ctx context.Context, rawURL string) Verdict {
	host, ok := validator.ExtractHost(rawURL)
	if !ok {
		return Verdict{Reason: "invalid URL"}
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := c.resolver.LookupIP(ctx, "ip", host)
		if err != nil || len(ips) == 0 {
			c.logger.Debug("resolution failed, rejecting",
				interfaces.Field{Key: "host", Value: host})
			return Verdict{Reason: fmt.Sprintf("cannot resolve host %q", host)}
		}
		// First answer is authoritative for this design; see package doc.
		ip = ips[0]
	}

	if c.isBlocked(ip) {
		c.logger.Warn("blocked address",
			interfaces.Field{Key: "host", Value: host},
			interfaces.Field{Key: "ip", Value: ip.String()})
		return Verdict{Reason: fmt.Sprintf("host %q resolves to blocked address %s", host, ip)}
	}

	return Verdict{Allowed: true}
}

// IsSafe is the boolean form of Verdict.
func (c *Checker) IsSafe(ctx context.Context, rawURL string) bool {
	return c.Verdict(ctx, rawURL).Allowed
}

// CheckIP tests a bare address against the blocklist, for callers that
// already hold a resolved or literal IP (e.g. redirect hops).
func (c *Checker) CheckIP(ip net.IP) bool {
	return !c.isBlocked(ip)
}

func (c *Checker) isBlocked(ip net.IP) bool {
	for _, network := range c.blocked {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
