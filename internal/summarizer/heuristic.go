package summarizer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pagelens/pagelens/internal/extractor"
)

// Heuristic is the deterministic, model-free summarizer: word and character
// counts plus canned observations. It is the default when no AI backend is
// configured, and its output shape matches what the API serializes for the
// AI-backed providers.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Summarize(_ context.Context, content *extractor.Content) (Record, error) {
	title := content.Title
	if title == "" {
		title = "No title"
	}

	wordCount := len(strings.Fields(content.MainContent))
	charCount := utf8.RuneCountInString(content.MainContent)

	return Record{
		"title":     title,
		"summary":   fmt.Sprintf("Analyzed %s. Found %d words and %d characters of content.", title, wordCount, charCount),
		"sentiment": "neutral",
		"key_points": []string{
			fmt.Sprintf("Page title: %s", title),
			fmt.Sprintf("Content length: %d words", wordCount),
			fmt.Sprintf("Outbound links: %d", len(content.Links)),
		},
		"suggestions": []string{
			"Content was successfully analyzed",
			"Consider adding more metadata analysis",
		},
		"confidence_score": 0.8,
	}, nil
}
