// Package xlog provides the leveled, structured logging used by the
// emission pipeline and the procedure-call runtime. It is a thin,
// dependency-free wrapper over log/slog, matching the Logger/Field/Nop
// shape of retrogolib's log package.
package xlog

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Field is a marshaling operation used to add a key-value pair to a log
// record. Construct one with the helpers below.
type Field = slog.Attr

// String constructs a string-valued Field.
func String(key, val string) Field { return slog.String(key, val) }

// Int constructs an int-valued Field.
func Int(key string, val int) Field { return slog.Int(key, val) }

// Any constructs a Field from an arbitrary value via reflection.
func Any(key string, val any) Field { return slog.Any(key, val) }

// Logger is the leveled, structured logger used throughout this module.
// All methods are safe for concurrent use because they delegate to
// *slog.Logger, which is itself concurrency-safe.
type Logger struct {
	inner *slog.Logger
}

// New returns a Logger that writes to w at the given level.
func New(w io.Writer, level slog.Level) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{inner: slog.New(h)}
}

// Nop returns a Logger that discards everything. This is the default used
// by every constructor in this module so library consumers pay nothing
// unless they opt into logging.
func Nop() *Logger {
	return &Logger{inner: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

// With returns a Logger that always includes the given fields.
func (l *Logger) With(fields ...Field) *Logger {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return &Logger{inner: l.inner.With(args...)}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(slog.LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field) { l.log(slog.LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field) { l.log(slog.LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(slog.LevelError, msg, fields) }

func (l *Logger) log(level slog.Level, msg string, fields []Field) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	l.inner.Log(context.Background(), level, msg, args...)
}

// Default returns a Logger writing INFO-and-above to stderr, suitable for
// a standalone CLI embedder (not provided by this module, per its
// CLI/test-harness non-goal).
func Default() *Logger {
	return New(os.Stderr, slog.LevelInfo)
}
