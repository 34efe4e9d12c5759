// Package testutil holds shared test doubles. Keep these dumb: no assertions,
// no synchronization beyond what the double itself needs.
package testutil

import (
	"context"
	"net"

	"github.com/pagelens/pagelens/internal/interfaces"
)

// NoopLogger discards everything. Implements interfaces.Logger.
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...interfaces.Field) {}
func (NoopLogger) Info(string, ...interfaces.Field)  {}
func (NoopLogger) Warn(string, ...interfaces.Field)  {}
func (NoopLogger) Error(string, ...interfaces.Field) {}
func (n NoopLogger) With(...interfaces.Field) interfaces.Logger {
	return n
}

// StaticResolver maps hostnames to fixed IPs. Unknown hosts return a DNS
// error, which callers should treat as a resolution failure.
type StaticResolver struct {
	Hosts map[string][]net.IP
}

func (r *StaticResolver) LookupIP(_ context.Context, _ string, host string) ([]net.IP, error) {
	if ips, ok := r.Hosts[host]; ok {
		return ips, nil
	}
	return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
}
