package propgraph

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with propgraph-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogAddEdges logs an edge-loading operation.
func (l *Logger) LogAddEdges(ctx context.Context, vertices, edges, collapsed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add edges failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "add edges completed",
			"vertices", vertices,
			"edges", edges,
			"collapsed", collapsed,
		)
	}
}

// LogLoad logs an attribute, label or relationship load.
func (l *Logger) LogLoad(ctx context.Context, op string, result LoadResult, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"op", op,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "load completed",
			"op", op,
			"rows", result.Rows,
			"deduplicated", result.Deduplicated,
			"dropped", result.Dropped,
		)
	}
}

// LogMatch logs a pattern match operation.
func (l *Logger) LogMatch(ctx context.Context, paths int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "match failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "match completed",
			"paths", paths,
		)
	}
}
