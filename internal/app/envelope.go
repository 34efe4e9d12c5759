package app

import (
	"github.com/pagelens/pagelens/internal/extractor"
	"github.com/pagelens/pagelens/internal/fetcher"
	"github.com/pagelens/pagelens/internal/summarizer"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metadata carries the response details of a successful fetch.
type Metadata struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
}

// AnalysisResult is the uniform envelope returned for every analyzed URL.
// Status is "success" or "error"; Error is set only on error, the remaining
// optional fields only on success.
type AnalysisResult struct {
	Status   string             `json:"status"`
	URL      string             `json:"url"`
	Content  *extractor.Content `json:"content,omitempty"`
	Analysis summarizer.Record  `json:"analysis,omitempty"`
	Metadata *Metadata          `json:"metadata,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func errorResult(url, message string) *AnalysisResult {
	return &AnalysisResult{
		Status: StatusError,
		URL:    url,
		Error:  message,
	}
}

func metadataFrom(res *fetcher.Result) *Metadata {
	headers := make(map[string]string, len(res.Headers))
	for key := range res.Headers {
		headers[key] = res.Headers.Get(key)
	}
	return &Metadata{
		StatusCode: res.StatusCode,
		Headers:    headers,
	}
}
