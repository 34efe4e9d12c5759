// Command api starts the pagelens HTTP API server.
// Usage: go run ./cmd/api [-config config.yaml] [-addr :8080]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pagelens/pagelens/internal/app"
	"github.com/pagelens/pagelens/internal/config"
	"github.com/pagelens/pagelens/internal/fetcher"
	"github.com/pagelens/pagelens/internal/interfaces"
	"github.com/pagelens/pagelens/internal/logging"
	"github.com/pagelens/pagelens/internal/security"
	"github.com/pagelens/pagelens/internal/server"
	"github.com/pagelens/pagelens/internal/summarizer"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	addr := flag.String("addr", "", "listen address, overrides the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.ListenAddr = *addr
	}

	logger := logging.NewSlogLogger("api", cfg.Logging.Level)

	checker := security.NewChecker(nil, logger)

	f, err := fetcher.New(fetcher.Config{
		Timeout:      cfg.Fetch.Timeout.Std(),
		MaxRedirects: cfg.Fetch.MaxRedirects,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		UserAgent:    cfg.Fetch.UserAgent,
	}, checker, logger)
	if err != nil {
		logger.Error("creating fetcher", interfaces.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	defer f.Close()

	summ, err := buildSummarizer(cfg.Summarizer, logger)
	if err != nil {
		logger.Error("creating summarizer", interfaces.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	orch := app.NewOrchestrator(app.Config{BatchWorkers: cfg.Batch.Workers}, f, summ, logger)

	srv := server.NewServer(server.Config{ListenAddr: cfg.Server.ListenAddr}, orch, logger)
	defer srv.Close()

	httpServer := srv.HTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", interfaces.Field{Key: "addr", Value: cfg.Server.ListenAddr})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", interfaces.Field{Key: "error", Value: err.Error()})
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", interfaces.Field{Key: "error", Value: err.Error()})
	}
}

func buildSummarizer(cfg config.SummarizerConfig, logger interfaces.Logger) (summarizer.Summarizer, error) {
	provider := summarizer.Provider(cfg.Provider)
	if provider == summarizer.ProviderClaude {
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("claude provider requires ANTHROPIC_API_KEY")
		}
		claudeCfg := summarizer.DefaultClaudeConfig()
		if cfg.Model != "" {
			claudeCfg.Model = cfg.Model
		}
		return summarizer.NewClaudeWithConfig(apiKey, claudeCfg, logger), nil
	}
	return summarizer.New(provider, "", logger)
}
