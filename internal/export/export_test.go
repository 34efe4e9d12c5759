package export_test

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagelens/pagelens/internal/app"
	"github.com/pagelens/pagelens/internal/export"
	"github.com/pagelens/pagelens/internal/extractor"
	"github.com/pagelens/pagelens/internal/summarizer"
)

func sampleResults() []*app.AnalysisResult {
	return []*app.AnalysisResult{
		{
			Status: app.StatusSuccess,
			URL:    "https://example.com/",
			Content: &extractor.Content{
				Title:       "Example",
				MainContent: "some text here",
				Links:       []extractor.Link{},
			},
			Analysis: summarizer.Record{
				"topics":     []string{"web", "testing"},
				"key_points": []any{"point one", "point two"},
			},
			Metadata: &app.Metadata{StatusCode: 200, Headers: map[string]string{}},
		},
		{
			Status: app.StatusError,
			URL:    "http://localhost/",
			Error:  "URL failed security check: host resolves to blocked address",
		},
	}
}

func TestJSON(t *testing.T) {
	t.Parallel()
	out, err := export.JSON(sampleResults())
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "success", decoded[0]["status"])
	assert.Equal(t, "error", decoded[1]["status"])
	assert.NotContains(t, decoded[1], "content", "error envelopes omit content")
}

func TestCSV(t *testing.T) {
	t.Parallel()
	out, err := export.CSV(sampleResults())
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"URL", "Title", "Status", "Content Length", "Topics", "Key Points"}, rows[0])
	assert.Equal(t, []string{"https://example.com/", "Example", "success", "14", "web; testing", "point one; point two"}, rows[1])
	assert.Equal(t, "error", rows[2][2])
	assert.Contains(t, rows[2][5], "security check")
}

func TestCSV_Empty(t *testing.T) {
	t.Parallel()
	out, err := export.CSV(nil)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
