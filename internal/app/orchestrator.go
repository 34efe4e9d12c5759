// Package app composes the safe-fetch pipeline: validate, classify, fetch,
// extract, summarize. The Orchestrator is the single place pipeline faults
// are normalized; callers always receive an AnalysisResult envelope, never
// a raw error or panic.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pagelens/pagelens/internal/extractor"
	"github.com/pagelens/pagelens/internal/fetcher"
	"github.com/pagelens/pagelens/internal/interfaces"
	"github.com/pagelens/pagelens/internal/metrics"
	"github.com/pagelens/pagelens/internal/summarizer"
)

// Fetcher is what the orchestrator needs from the fetch stage.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Result, error)
}

// Orchestrator runs the analysis pipeline for single URLs, synchronous
// batches and asynchronous batch jobs.
type Orchestrator struct {
	cfg        Config
	fetcher    Fetcher
	summarizer summarizer.Summarizer
	logger     interfaces.Logger

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(cfg Config, f Fetcher, s summarizer.Summarizer, logger interfaces.Logger) *Orchestrator {
	if s == nil {
		s = summarizer.NewNoOp()
	}
	return &Orchestrator{
		cfg:        cfg,
		fetcher:    f,
		summarizer: s,
		logger:     logger.With(interfaces.Field{Key: "component", Value: "orchestrator"}),
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
	}
}

// AnalyzeURL runs the full pipeline for one URL and always returns an
// envelope. Any panic from any stage, the summarizer included, is caught
// here and folded into an error envelope.
func (o *Orchestrator) AnalyzeURL(ctx context.Context, rawURL string) (result *AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("recovered pipeline panic",
				interfaces.Field{Key: "url", Value: rawURL},
				interfaces.Field{Key: "panic", Value: fmt.Sprint(r)})
			metrics.AnalysesTotal.WithLabelValues(StatusError).Inc()
			result = errorResult(rawURL, fmt.Sprintf("Unexpected error: %v", r))
		}
	}()

	start := time.Now()
	res, err := o.fetcher.Fetch(ctx, rawURL)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		kind := "unknown"
		var ferr *fetcher.Error
		if errors.As(err, &ferr) {
			kind = string(ferr.Kind)
		}
		metrics.FetchFailuresTotal.WithLabelValues(kind).Inc()
		metrics.AnalysesTotal.WithLabelValues(StatusError).Inc()
		return errorResult(rawURL, err.Error())
	}

	content := extractor.Extract(res.Body)

	summarizeStart := time.Now()
	analysis, err := o.summarizer.Summarize(ctx, content)
	metrics.SummarizeDuration.Observe(time.Since(summarizeStart).Seconds())
	if err != nil {
		o.logger.Warn("summarizer failed",
			interfaces.Field{Key: "url", Value: rawURL},
			interfaces.Field{Key: "error", Value: err.Error()})
		metrics.AnalysesTotal.WithLabelValues(StatusError).Inc()
		return errorResult(rawURL, "Analysis failed: "+err.Error())
	}

	metrics.AnalysesTotal.WithLabelValues(StatusSuccess).Inc()
	return &AnalysisResult{
		Status:   StatusSuccess,
		URL:      rawURL,
		Content:  content,
		Analysis: analysis,
		Metadata: metadataFrom(res),
	}
}

// AnalyzeBatch analyzes every URL and returns exactly one result per input,
// in input order. One URL failing never skips or aborts the rest. With
// BatchWorkers > 1 the batch fans out over a bounded worker pool; results
// stay index-ordered either way.
func (o *Orchestrator) AnalyzeBatch(ctx context.Context, urls []string) []*AnalysisResult {
	results := make([]*AnalysisResult, len(urls))

	if o.cfg.BatchWorkers <= 1 || len(urls) <= 1 {
		for i, u := range urls {
			if ctx.Err() != nil {
				results[i] = errorResult(u, "Request cancelled")
				continue
			}
			results[i] = o.AnalyzeURL(ctx, u)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(o.cfg.BatchWorkers)
	for i, u := range urls {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = errorResult(u, "Request cancelled")
				return nil
			}
			results[i] = o.AnalyzeURL(ctx, u)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()
	return results
}

// Close cancels all running jobs.
func (o *Orchestrator) Close() {
	o.jobsMu.Lock()
	cancels := make([]context.CancelFunc, 0, len(o.jobCancels))
	for _, cancel := range o.jobCancels {
		cancels = append(cancels, cancel)
	}
	o.jobsMu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
