// Package logging provides the structured logger used across a pipeline run.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with pipeline-specific field helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// New builds a Logger writing to w. format is "text" or "json".
func New(w io.Writer, level, format string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))
}

// ParseLevel parses debug, info, warn or error. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// WithRun tags every record with the run identifier.
func (l *Logger) WithRun(id string) *Logger {
	return &Logger{Logger: l.Logger.With("run", id)}
}

// WithStrategy tags every record with the embedding strategy.
func (l *Logger) WithStrategy(name string) *Logger {
	return &Logger{Logger: l.Logger.With("strategy", name)}
}

// LogStage logs the outcome of one pipeline stage.
func (l *Logger) LogStage(ctx context.Context, stage string, elapsed time.Duration, err error, attrs ...any) {
	args := append([]any{"stage", stage, "elapsed", elapsed}, attrs...)
	if err != nil {
		l.ErrorContext(ctx, "stage failed", append(args, "error", err)...)
		return
	}
	l.DebugContext(ctx, "stage completed", args...)
}

// LogShape logs the shape of a strategy's embedding matrix.
func (l *Logger) LogShape(ctx context.Context, rows, dims int) {
	l.InfoContext(ctx, "embeddings computed", "rows", rows, "dimension", dims)
}
