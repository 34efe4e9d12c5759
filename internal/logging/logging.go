package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pagelens/pagelens/internal/interfaces"
)

// SlogLogger implements interfaces.Logger on top of log/slog with a JSON
// handler. Child loggers created with With share the underlying handler and
// carry persistent fields.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger creates a JSON logger writing to stdout. level accepts
// "debug", "info", "warn" or "error"; anything else falls back to info.
// component, if non-empty, is attached as a persistent field.
func NewSlogLogger(component, level string) *SlogLogger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})

	l := slog.New(handler)
	if component != "" {
		l = l.With(slog.String("component", component))
	}
	return &SlogLogger{l: l}
}

// ParseLevel maps a config string to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s *SlogLogger) log(fn func(string, ...any), msg string, fields []interfaces.Field) {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	fn(msg, args...)
}

func (s *SlogLogger) Debug(msg string, fields ...interfaces.Field) {
	s.log(s.l.Debug, msg, fields)
}

func (s *SlogLogger) Info(msg string, fields ...interfaces.Field) {
	s.log(s.l.Info, msg, fields)
}

func (s *SlogLogger) Warn(msg string, fields ...interfaces.Field) {
	s.log(s.l.Warn, msg, fields)
}

func (s *SlogLogger) Error(msg string, fields ...interfaces.Field) {
	s.log(s.l.Error, msg, fields)
}

func (s *SlogLogger) With(fields ...interfaces.Field) interfaces.Logger {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return &SlogLogger{l: s.l.With(args...)}
}
