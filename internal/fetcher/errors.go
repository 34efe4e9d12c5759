package fetcher

// Kind classifies a fetch failure.
type Kind string

const (
	KindInvalidURL       Kind = "invalid_url"
	KindSecurityRejected Kind = "security_rejected"
	KindTimeout          Kind = "timeout"
	KindTransport        Kind = "transport_error"
	KindHTTPError        Kind = "http_error"
)

// Error is the typed failure returned by Fetch. Message is safe to surface
// to callers; it never carries stack traces or resolver internals.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
