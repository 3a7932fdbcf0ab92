package sfindex

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/time/rate"
)

// Logger wraps slog.Logger with sfindex-specific context.
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

// WithSegment adds a segment name field to the logger.
func (l *Logger) WithSegment(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("segment", name),
	}
}

// WithTier adds a tier name field to the logger.
func (l *Logger) WithTier(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("tier", name),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogRebuild logs the outcome of a store rebuild.
func (l *Logger) LogRebuild(ctx context.Context, records, skipped, overflowed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rebuild failed",
			"error", err,
		)
		return
	}
	if skipped > 0 || overflowed > 0 {
		l.WarnContext(ctx, "rebuild completed with drops",
			"records", records,
			"skipped", skipped,
			"overflowed", overflowed,
		)
	} else {
		l.InfoContext(ctx, "rebuild completed",
			"records", records,
		)
	}
}

// LogFilter logs a filter scan.
func (l *Logger) LogFilter(ctx context.Context, matches int, wildcard bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "filter failed",
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "filter completed",
		"matches", matches,
		"wildcard", wildcard,
	)
}

// WarnLimiter rate-limits repetitive warnings. A 20k-record reload with a
// broken document would otherwise emit one line per record; the limiter
// passes a trickle through and reports how many were suppressed at the end.
//
// It is not safe for concurrent use; loads are single-writer.
type WarnLimiter struct {
	logger     *Logger
	limiter    *rate.Limiter
	suppressed int
}

// NewWarnLimiter creates a WarnLimiter allowing perSec warnings per second
// with the given burst.
func NewWarnLimiter(logger *Logger, perSec float64, burst int) *WarnLimiter {
	return &WarnLimiter{
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(perSec), burst),
	}
}

// Warn logs the warning if within budget, otherwise counts it as suppressed.
func (w *WarnLimiter) Warn(msg string, args ...any) {
	if w.limiter.Allow() {
		w.logger.Warn(msg, args...)
		return
	}
	w.suppressed++
}

// Flush logs a summary line if any warnings were suppressed and resets the
// counter.
func (w *WarnLimiter) Flush(msg string) {
	if w.suppressed > 0 {
		w.logger.Warn(msg, "suppressed", w.suppressed)
		w.suppressed = 0
	}
}
