package webclient

import "time"

const (
	// DefaultTimeout bounds a whole request including body read.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodyBytes caps how much of a response body is read into
	// memory. Pages larger than this are rejected rather than truncated.
	DefaultMaxBodyBytes = 10 << 20 // 10 MiB

	// DefaultUserAgent is the fixed identifying client header sent when the
	// caller supplies none.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Config controls the net/http backed client.
type Config struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}
