// Package export renders already-produced analysis results as JSON or CSV.
// It never re-runs any part of the pipeline.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pagelens/pagelens/internal/app"
)

// JSON renders results with stable indentation.
func JSON(results []*app.AnalysisResult) ([]byte, error) {
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export json: %w", err)
	}
	return out, nil
}

// csvHeader mirrors the columns of the original report format.
var csvHeader = []string{"URL", "Title", "Status", "Content Length", "Topics", "Key Points"}

// CSV renders one row per result. Error envelopes produce a row with the
// error message in place of content columns, so the export stays one-to-one
// with the input.
func CSV(results []*app.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}

	for _, r := range results {
		if err := w.Write(csvRow(r)); err != nil {
			return nil, fmt.Errorf("export csv: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}
	return buf.Bytes(), nil
}

func csvRow(r *app.AnalysisResult) []string {
	if r.Status != app.StatusSuccess {
		return []string{r.URL, "", r.Status, "0", "", r.Error}
	}

	title := ""
	contentLen := 0
	if r.Content != nil {
		title = r.Content.Title
		contentLen = len(r.Content.MainContent)
	}

	return []string{
		r.URL,
		title,
		r.Status,
		fmt.Sprintf("%d", contentLen),
		joinRecordList(r.Analysis["topics"]),
		joinRecordList(r.Analysis["key_points"]),
	}
}

// joinRecordList flattens a list-valued analysis field. Analysis records are
// opaque, so both []string and JSON-decoded []any shapes occur.
func joinRecordList(v any) string {
	switch list := v.(type) {
	case []string:
		return strings.Join(list, "; ")
	case []any:
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, "; ")
	case string:
		return list
	default:
		return ""
	}
}
