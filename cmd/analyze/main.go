// Command analyze runs the analysis pipeline once from the command line.
// Usage: go run ./cmd/analyze -url https://example.com
//
//	go run ./cmd/analyze -urls https://a.com,https://b.com -format csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pagelens/pagelens/internal/app"
	"github.com/pagelens/pagelens/internal/export"
	"github.com/pagelens/pagelens/internal/fetcher"
	"github.com/pagelens/pagelens/internal/logging"
	"github.com/pagelens/pagelens/internal/security"
	"github.com/pagelens/pagelens/internal/summarizer"
)

func main() {
	singleURL := flag.String("url", "", "single URL to analyze")
	urlList := flag.String("urls", "", "comma-separated URLs to analyze")
	timeout := flag.Duration("timeout", 30*time.Second, "per-URL fetch timeout")
	workers := flag.Int("workers", 1, "concurrent analyses for batch input")
	format := flag.String("format", "json", "output format: json or csv")
	provider := flag.String("provider", "heuristic", "analysis provider: heuristic, claude or noop")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Parse()

	urls := collectURLs(*singleURL, *urlList)
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: analyze -url <url> | -urls <url,url,...>")
		os.Exit(2)
	}
	if *format != "json" && *format != "csv" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(2)
	}

	logger := logging.NewSlogLogger("analyze", *logLevel)

	checker := security.NewChecker(nil, logger)

	f, err := fetcher.New(fetcher.Config{Timeout: *timeout}, checker, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating fetcher: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	summ, err := summarizer.New(summarizer.Provider(*provider), os.Getenv("ANTHROPIC_API_KEY"), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating summarizer: %v\n", err)
		os.Exit(1)
	}

	orch := app.NewOrchestrator(app.Config{BatchWorkers: *workers}, f, summ, logger)
	defer orch.Close()

	results := orch.AnalyzeBatch(context.Background(), urls)

	var out []byte
	switch *format {
	case "csv":
		out, err = export.CSV(results)
	default:
		out, err = export.JSON(results)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "rendering output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(out))

	for _, r := range results {
		if r.Status != app.StatusSuccess {
			os.Exit(1)
		}
	}
}

func collectURLs(single, list string) []string {
	var urls []string
	if single != "" {
		urls = append(urls, single)
	}
	for _, u := range strings.Split(list, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
