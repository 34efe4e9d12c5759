package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"github.com/pagelens/pagelens/internal/extractor"
	"github.com/pagelens/pagelens/internal/interfaces"
)

// maxInputChars caps how much page text is sent to the model.
const maxInputChars = 10000

const analysisPrompt = `You are an expert content analyzer. Analyze the given text and provide insights in a structured way.
Return your analysis in ONLY valid JSON format with the following structure:
{
  "title": "Brief title or subject of the content",
  "summary": "A concise summary of the main points",
  "key_points": ["Point 1", "Point 2", "etc"],
  "sentiment": "Overall sentiment (positive/negative/neutral)",
  "topics": ["Topic 1", "Topic 2", "etc"],
  "readability": "Assessment of readability (easy/moderate/difficult)",
  "suggestions": ["Suggestion 1", "Suggestion 2", "etc"]
}
Important: Return ONLY the JSON object, no other text or explanation.

Text to analyze:
`

// ClaudeConfig holds the model parameters for the Claude summarizer.
type ClaudeConfig struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// DefaultClaudeConfig returns the production defaults.
func DefaultClaudeConfig() ClaudeConfig {
	return ClaudeConfig{
		Model:     string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens: 1024,
		Timeout:   60 * time.Second,
	}
}

// Claude implements Summarizer against Anthropic's API. Calls run through a
// circuit breaker so a failing upstream sheds load fast instead of stacking
// timeouts.
type Claude struct {
	client  anthropic.Client
	breaker *gobreaker.CircuitBreaker
	cfg     ClaudeConfig
	logger  interfaces.Logger
}

// NewClaude creates a Claude summarizer with default configuration.
func NewClaude(apiKey string, logger interfaces.Logger) *Claude {
	return NewClaudeWithConfig(apiKey, DefaultClaudeConfig(), logger)
}

// NewClaudeWithConfig creates a Claude summarizer with explicit configuration.
func NewClaudeWithConfig(apiKey string, cfg ClaudeConfig, logger interfaces.Logger) *Claude {
	componentLogger := logger.With(interfaces.Field{Key: "component", Value: "summarizer.claude"})

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "claude-api",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			componentLogger.Warn("circuit breaker state changed",
				interfaces.Field{Key: "circuit", Value: name},
				interfaces.Field{Key: "from", Value: from.String()},
				interfaces.Field{Key: "to", Value: to.String()})
		},
	})

	return &Claude{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		breaker: breaker,
		cfg:     cfg,
		logger:  componentLogger,
	}
}

// Summarize sends the extracted main content to Claude and parses the
// JSON-structured analysis. Unparseable model output degrades to a default
// record rather than failing the pipeline.
func (c *Claude) Summarize(ctx context.Context, content *extractor.Content) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doSummarize(ctx, content)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return nil, fmt.Errorf("claude api unavailable: circuit breaker open")
		}
		return nil, err
	}

	return result.(Record), nil
}

func (c *Claude) doSummarize(ctx context.Context, content *extractor.Content) (Record, error) {
	input := content.MainContent
	if len(input) > maxInputChars {
		input = input[:maxInputChars] + "..."
		c.logger.Warn("input truncated for claude api",
			interfaces.Field{Key: "original_length", Value: len(content.MainContent)})
	}

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(analysisPrompt + input),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return nil, fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return nil, fmt.Errorf("claude api returned unexpected response type")
	}

	record := parseAnalysisJSON(textBlock.Text)

	c.logger.Debug("summarization completed",
		interfaces.Field{Key: "duration", Value: time.Since(start).String()},
		interfaces.Field{Key: "output_length", Value: len(textBlock.Text)})

	return record, nil
}

// parseAnalysisJSON decodes the model output, tolerating markdown code
// fences. Output that is not valid JSON falls back to the default record
// shape with every expected key present but empty.
func parseAnalysisJSON(raw string) Record {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	record := Record{}
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return defaultRecord()
	}

	// Backfill any keys the model left out.
	for key, value := range defaultRecord() {
		if _, ok := record[key]; !ok {
			record[key] = value
		}
	}
	return record
}

func defaultRecord() Record {
	return Record{
		"title":       "",
		"summary":     "",
		"key_points":  []string{},
		"sentiment":   "",
		"topics":      []string{},
		"readability": "",
		"suggestions": []string{},
	}
}
