package graphgo

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with graphgo-specific context.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to w.
// If w is nil, logs go to stderr. level sets the minimum log level
// (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs to w.
// If w is nil, logs go to stderr.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithName adds a graph name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("graph", name),
	}
}

// WithSeed adds a seed field to the logger (useful for tagging randomized runs).
func (l *Logger) WithSeed(seed uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("seed", seed),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogBuild logs a graph build.
func (l *Logger) LogBuild(ctx context.Context, name string, nodeCount uint32, edgeCount uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "graph build failed",
			"graph", name,
			"nodes", nodeCount,
			"edges", edgeCount,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "graph build completed",
			"graph", name,
			"nodes", nodeCount,
			"edges", edgeCount,
		)
	}
}

// LogWalks logs a random walk batch.
func (l *Logger) LogWalks(ctx context.Context, walks int, length uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "random walks failed",
			"walks", walks,
			"length", length,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "random walks completed",
			"walks", walks,
			"length", length,
		)
	}
}

// LogNegativeSampling logs a negative edge sampling run.
func (l *Logger) LogNegativeSampling(ctx context.Context, requested, produced uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "negative sampling failed",
			"requested", requested,
			"produced", produced,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "negative sampling completed",
			"requested", requested,
			"produced", produced,
		)
	}
}

// LogOperator logs a graph set operation.
func (l *Logger) LogOperator(ctx context.Context, op string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "graph operator failed",
			"operator", op,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "graph operator completed",
			"operator", op,
		)
	}
}

// LogSnapshotSave logs a snapshot save.
func (l *Logger) LogSnapshotSave(ctx context.Context, filename string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"filename", filename,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"filename", filename,
		)
	}
}

// LogSnapshotLoad logs a snapshot load.
func (l *Logger) LogSnapshotLoad(ctx context.Context, filename string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"filename", filename,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"filename", filename,
		)
	}
}
