// Package summarizer is the analysis collaborator boundary. The orchestrator
// treats implementations as opaque: they receive extracted content and return
// an arbitrary serializable record. A failing summarizer never takes the
// pipeline down; the orchestrator folds the failure into its error envelope.
package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/pagelens/pagelens/internal/extractor"
	"github.com/pagelens/pagelens/internal/interfaces"
)

// Record is an opaque analysis result. No schema is enforced beyond being
// JSON-serializable.
type Record map[string]any

// Summarizer produces an analysis record for extracted content.
type Summarizer interface {
	Summarize(ctx context.Context, content *extractor.Content) (Record, error)
}

// Provider names a summarizer implementation.
type Provider string

const (
	ProviderHeuristic Provider = "heuristic"
	ProviderClaude    Provider = "claude"
	ProviderNoop      Provider = "noop"
)

// New constructs the configured summarizer. The claude provider requires a
// non-empty API key.
func New(provider Provider, apiKey string, logger interfaces.Logger) (Summarizer, error) {
	switch Provider(strings.ToLower(string(provider))) {
	case ProviderHeuristic, "":
		return NewHeuristic(), nil
	case ProviderClaude:
		if apiKey == "" {
			return nil, fmt.Errorf("summarizer: claude provider requires an API key")
		}
		return NewClaude(apiKey, logger), nil
	case ProviderNoop:
		return NewNoOp(), nil
	default:
		return nil, fmt.Errorf("summarizer: unknown provider %q", provider)
	}
}
