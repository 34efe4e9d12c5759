package summarizer

import (
	"context"

	"github.com/pagelens/pagelens/internal/extractor"
)

// NoOp returns an empty record. Useful in tests and when analysis is
// deliberately disabled.
type NoOp struct{}

func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) Summarize(_ context.Context, _ *extractor.Content) (Record, error) {
	return Record{}, nil
}
