package pagedb

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pagedb-specific context.
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
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithKey adds a key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogOpen logs opening a database file.
func (l *Logger) LogOpen(ctx context.Context, path string, keys, buckets, skipped int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"path", path,
			"error", err,
		)
		return
	}
	if skipped > 0 {
		l.WarnContext(ctx, "opened with unreadable records",
			"path", path,
			"keys", keys,
			"buckets", buckets,
			"skipped", skipped,
		)
		return
	}
	l.InfoContext(ctx, "opened",
		"path", path,
		"keys", keys,
		"buckets", buckets,
	)
}

// LogPut logs a put operation.
func (l *Logger) LogPut(ctx context.Context, key string, pageID uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "put failed",
			"key", key,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "put completed",
			"key", key,
			"page", pageID,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, key string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"key", key,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"key", key,
		)
	}
}

// LogQuery logs a secondary index query.
func (l *Logger) LogQuery(ctx context.Context, field string, results int, indexed bool) {
	l.DebugContext(ctx, "query completed",
		"field", field,
		"results", results,
		"indexed", indexed,
	)
}

// LogFlush logs a flush.
func (l *Logger) LogFlush(ctx context.Context, keys int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed",
			"keys", keys,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "flush completed",
			"keys", keys,
		)
	}
}

// LogExport logs an export, backup or restore.
func (l *Logger) LogExport(ctx context.Context, target string, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"target", target,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "export completed",
			"target", target,
			"entries", entries,
		)
	}
}

// LogSkipped logs a record that could not be read and was treated as absent.
func (l *Logger) LogSkipped(ctx context.Context, key string, pageID uint32, err error) {
	l.DebugContext(ctx, "record skipped",
		"key", key,
		"page", pageID,
		"error", err,
	)
}
