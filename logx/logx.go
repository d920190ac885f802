// Package logx provides structured logging for a Store-driven match host.
// It wraps Go's log/slog with match-specific conveniences, the same shape
// package log uses for per-module child loggers, specialized here to the
// per-match, per-player context a Store operates in.
package logx

import (
	"log/slog"
	"os"

	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
	"github.com/fairhopeweb/arcadeum-state/domain"
)

// Logger wraps slog.Logger with match context.
type Logger struct {
	inner *slog.Logger
}

// defaultLogger is the process-wide logger used by the package-level
// convenience functions.
var defaultLogger *Logger

func init() {
	defaultLogger = New(slog.LevelInfo)
}

// New creates a Logger that writes JSON to stderr at the given level.
func New(level slog.Level) *Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{inner: slog.New(h)}
}

// NewWithHandler creates a Logger backed by the supplied slog.Handler. Tests
// typically supply one backed by a buffer instead of stderr.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger {
	return defaultLogger
}

// Match returns a child logger scoped to one match's ID, the primary way a
// host obtains a contextual logger to pass into its Store plumbing.
func (l *Logger) Match(id domain.ID) *Logger {
	return &Logger{inner: l.inner.With("match", id.String())}
}

// Player returns a child logger additionally scoped to one replica's player
// slot. nil denotes the match owner.
func (l *Logger) Player(player *domain.Player) *Logger {
	if player == nil {
		return &Logger{inner: l.inner.With("player", "owner")}
	}
	return &Logger{inner: l.inner.With("player", player.String())}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, args ...any) { l.inner.Info(msg, args...) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, args ...any) { l.inner.Warn(msg, args...) }

// Error logs at LevelError.
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// Diff logs the outcome of sending or applying a diff: its author, content
// hash, and action count, at Info on success or Error with the failure
// reason otherwise.
func (l *Logger) Diff(author cryptoadapter.Address, hash cryptoadapter.Hash, actionCount int, err error) {
	if err != nil {
		l.inner.Error("diff rejected", "author", author.String(), "hash", hash.String(), "actions", actionCount, "error", err)
		return
	}
	l.inner.Info("diff applied", "author", author.String(), "hash", hash.String(), "actions", actionCount)
}

// ---------------------------------------------------------------------------
// Package-level convenience functions -- delegate to defaultLogger.
// ---------------------------------------------------------------------------

// Debug logs at LevelDebug using the default logger.
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Info logs at LevelInfo using the default logger.
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }

// Warn logs at LevelWarn using the default logger.
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }

// Error logs at LevelError using the default logger.
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }
