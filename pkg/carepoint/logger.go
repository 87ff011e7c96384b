package carepoint

import (
	"context"
	"log/slog"
	"sort"
)

// SlogLogger adapts a *slog.Logger to Logger.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l. A nil logger falls back to slog.Default().
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}

	return &SlogLogger{l: l}
}

// Debug implements Logger.
func (s *SlogLogger) Debug(msg string, fields map[string]interface{}) {
	s.l.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs(fields)...)
}

// Info implements Logger.
func (s *SlogLogger) Info(msg string, fields map[string]interface{}) {
	s.l.LogAttrs(context.Background(), slog.LevelInfo, msg, attrs(fields)...)
}

// Warn implements Logger.
func (s *SlogLogger) Warn(msg string, fields map[string]interface{}) {
	s.l.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs(fields)...)
}

// Error implements Logger.
func (s *SlogLogger) Error(msg string, fields map[string]interface{}) {
	s.l.LogAttrs(context.Background(), slog.LevelError, msg, attrs(fields)...)
}

// attrs converts fields to attributes in key order so output is stable.
func attrs(fields map[string]interface{}) []slog.Attr {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	out := make([]slog.Attr, 0, len(keys))
	for _, key := range keys {
		out = append(out, slog.Any(key, fields[key]))
	}

	return out
}

// NopLogger discards everything.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, map[string]interface{}) {}

// Info implements Logger.
func (NopLogger) Info(string, map[string]interface{}) {}

// Warn implements Logger.
func (NopLogger) Warn(string, map[string]interface{}) {}

// Error implements Logger.
func (NopLogger) Error(string, map[string]interface{}) {}
