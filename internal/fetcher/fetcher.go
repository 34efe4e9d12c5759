// Package fetcher performs bounded, SSRF-guarded HTTP retrieval. Every fetch
// re-validates the URL and re-classifies its resolved address immediately
// before the request is issued; verdicts are never reused, and every
// redirect hop is classified again before it is followed.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pagelens/pagelens/internal/interfaces"
	"github.com/pagelens/pagelens/internal/security"
	"github.com/pagelens/pagelens/internal/validator"
	"github.com/pagelens/pagelens/internal/webclient"
)

// SecurityChecker gates what the fetcher may touch.
type SecurityChecker interface {
	Verdict(ctx context.Context, rawURL string) security.Verdict
}

// Result is a successful retrieval: a terminal 2xx-3xx response with the
// body fully read.
type Result struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	FetchedAt  time.Time
}

// Fetcher issues single GET requests for URLs that pass validation and
// security classification. It never retries; retry policy belongs to the
// caller.
type Fetcher struct {
	cfg     Config
	checker SecurityChecker
	wc      webclient.WebClient
	logger  interfaces.Logger
}

// New builds a Fetcher with its own webclient. The underlying http.Client
// re-classifies every redirect hop and refuses hops into blocked address
// space.
func New(cfg Config, checker SecurityChecker, logger interfaces.Logger) (*Fetcher, error) {
	if checker == nil {
		return nil, fmt.Errorf("fetcher: checker is nil")
	}
	cfg = cfg.withDefaults()

	f := &Fetcher{
		cfg:     cfg,
		checker: checker,
		logger:  logger.With(interfaces.Field{Key: "component", Value: "fetcher"}),
	}

	httpClient := &http.Client{
		Timeout:       cfg.Timeout,
		CheckRedirect: f.checkRedirect,
	}

	wc, err := webclient.NewNetHTTPClient(webclient.Config{
		Timeout:      cfg.Timeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
		UserAgent:    cfg.UserAgent,
	}, logger, httpClient)
	if err != nil {
		return nil, fmt.Errorf("fetcher: create webclient: %w", err)
	}
	f.wc = wc

	return f, nil
}

// Fetch retrieves rawURL. On any failure it returns a *fetcher.Error whose
// Kind classifies what went wrong; no socket is opened if validation or
// classification fails.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if !validator.Validate(rawURL) {
		return nil, &Error{Kind: KindInvalidURL, Message: "Invalid URL format"}
	}

	// Fresh classification right before the network call; see package doc.
	if verdict := f.checker.Verdict(ctx, rawURL); !verdict.Allowed {
		return nil, &Error{
			Kind:    KindSecurityRejected,
			Message: "URL failed security check: " + verdict.Reason,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := f.wc.Get(ctx, rawURL)
	if err != nil {
		ferr := f.classify(err)
		f.logger.Warn("fetch failed",
			interfaces.Field{Key: "url", Value: rawURL},
			interfaces.Field{Key: "kind", Value: string(ferr.Kind)},
			interfaces.Field{Key: "error", Value: ferr.Message})
		return nil, ferr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &Error{
			Kind:    KindHTTPError,
			Message: fmt.Sprintf("HTTP error %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	f.logger.Debug("fetched page",
		interfaces.Field{Key: "url", Value: rawURL},
		interfaces.Field{Key: "status", Value: resp.StatusCode},
		interfaces.Field{Key: "bytes", Value: len(resp.Body)},
		interfaces.Field{Key: "duration", Value: time.Since(start).String()})

	return &Result{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
		FetchedAt:  resp.FetchedAt,
	}, nil
}

// Close releases the underlying transport.
func (f *Fetcher) Close() error {
	return f.wc.Close()
}

// checkRedirect runs the full classification against each redirect target
// before the hop is followed. Targets that fail validation or resolve into
// blocked space abort the request.
func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= f.cfg.MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", f.cfg.MaxRedirects)
	}
	if verdict := f.checker.Verdict(req.Context(), req.URL.String()); !verdict.Allowed {
		return &redirectBlockedError{
			target: req.URL.String(),
			reason: verdict.Reason,
		}
	}
	return nil
}

func (f *Fetcher) classify(err error) *Error {
	var rb *redirectBlockedError
	if errors.As(err, &rb) {
		return &Error{
			Kind:    KindSecurityRejected,
			Message: "URL failed security check: redirect to " + rb.target + ": " + rb.reason,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "Request timed out"}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "Request timed out"}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Message: "Request cancelled"}
	}
	return &Error{Kind: KindTransport, Message: err.Error()}
}

type redirectBlockedError struct {
	target string
	reason string
}

func (e *redirectBlockedError) Error() string {
	return fmt.Sprintf("redirect to %s blocked: %s", e.target, e.reason)
}
