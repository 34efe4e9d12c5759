package summarizer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagelens/pagelens/internal/extractor"
	"github.com/pagelens/pagelens/internal/summarizer"
	"github.com/pagelens/pagelens/internal/testutil"
)

func TestHeuristic_Summarize(t *testing.T) {
	t.Parallel()
	h := summarizer.NewHeuristic()

	rec, err := h.Summarize(context.Background(), &extractor.Content{
		Title:       "My Page",
		MainContent: "one two three",
	})
	require.NoError(t, err)

	assert.Equal(t, "My Page", rec["title"])
	assert.Equal(t, "neutral", rec["sentiment"])
	assert.Contains(t, rec["summary"], "3 words")
	assert.Contains(t, rec, "key_points")
	assert.Contains(t, rec, "suggestions")
	assert.Contains(t, rec, "confidence_score")
}

func TestHeuristic_Summarize_EmptyContent(t *testing.T) {
	t.Parallel()
	h := summarizer.NewHeuristic()

	rec, err := h.Summarize(context.Background(), &extractor.Content{})
	require.NoError(t, err)

	assert.Equal(t, "No title", rec["title"])
	assert.Contains(t, rec["summary"], "0 words")
}

func TestNoOp_Summarize(t *testing.T) {
	t.Parallel()
	n := summarizer.NewNoOp()

	rec, err := n.Summarize(context.Background(), &extractor.Content{Title: "x"})
	require.NoError(t, err)
	assert.Empty(t, rec)
}

func TestNew_ProviderSelection(t *testing.T) {
	t.Parallel()
	logger := testutil.NoopLogger{}

	s, err := summarizer.New(summarizer.ProviderHeuristic, "", logger)
	require.NoError(t, err)
	assert.IsType(t, &summarizer.Heuristic{}, s)

	s, err = summarizer.New("", "", logger)
	require.NoError(t, err)
	assert.IsType(t, &summarizer.Heuristic{}, s, "empty provider defaults to heuristic")

	_, err = summarizer.New(summarizer.ProviderClaude, "", logger)
	assert.Error(t, err, "claude without an API key must fail")

	s, err = summarizer.New(summarizer.ProviderClaude, "test-key", logger)
	require.NoError(t, err)
	assert.IsType(t, &summarizer.Claude{}, s)

	_, err = summarizer.New("bogus", "", logger)
	assert.Error(t, err)
}
