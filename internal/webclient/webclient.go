// Package webclient is the HTTP transport boundary. It executes requests and
// returns normalized responses; it performs no validation or security
// classification of its own. Callers gate what reaches it.
package webclient

import (
	"context"
	"net/http"
	"time"
)

// WebClient executes HTTP requests.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests.
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}

// Request is a transport-agnostic HTTP request.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// Response is a fully-read HTTP response. Body is always drained and closed
// by the client before Response is returned.
type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}
