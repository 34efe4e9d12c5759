package fetcher

import (
	"time"

	"github.com/pagelens/pagelens/internal/webclient"
)

const defaultMaxRedirects = 10

// Config controls a Fetcher.
type Config struct {
	// Timeout bounds one whole fetch, DNS resolution included.
	Timeout time.Duration

	// MaxRedirects caps redirect following; each hop is re-classified.
	MaxRedirects int

	// MaxBodyBytes caps the response body read.
	MaxBodyBytes int64

	// UserAgent is the fixed identifying client header.
	UserAgent string
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = webclient.DefaultTimeout
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = defaultMaxRedirects
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = webclient.DefaultMaxBodyBytes
	}
	if c.UserAgent == "" {
		c.UserAgent = webclient.DefaultUserAgent
	}
	return c
}
