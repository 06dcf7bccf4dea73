// Package logger provides the process-wide structured logger.
//
// It wraps log/slog behind a package-level API so every package logs the
// same way without threading a logger through constructors. Output format
// (text or json), level and destination are set once at startup via Init;
// the level may be adjusted later with SetLevel.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	mu      sync.RWMutex
	output  io.Writer = os.Stdout
	level             = new(slog.LevelVar)
	format            = "text"
	slogger           = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
)

// Init initializes the logger from configuration. Output can be "stdout",
// "stderr", or a file path (opened append-only).
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		output = f
	}

	if cfg.Level != "" {
		level.Set(parseLevel(cfg.Level))
	}
	if cfg.Format != "" {
		f := strings.ToLower(cfg.Format)
		if f == "text" || f == "json" {
			format = f
		}
	}

	rebuild()
	return nil
}

// InitWithWriter points the logger at a custom writer. Primarily for tests.
func InitWithWriter(w io.Writer, lvl, fmtName string) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	if lvl != "" {
		level.Set(parseLevel(lvl))
	}
	if fmtName == "text" || fmtName == "json" {
		format = fmtName
	}
	rebuild()
}

// SetLevel sets the minimum log level. Invalid levels are ignored.
func SetLevel(lvl string) {
	switch strings.ToUpper(lvl) {
	case "DEBUG", "INFO", "WARN", "ERROR":
		level.Set(parseLevel(lvl))
	}
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToUpper(lvl) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// rebuild recreates the slog handler. Callers must hold mu.
func rebuild() {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		slogger = slog.New(slog.NewJSONHandler(output, opts))
	} else {
		slogger = slog.New(slog.NewTextHandler(output, opts))
	}
}

func get() *slog.Logger {
	mu.RLock()
	l := slogger
	mu.RUnlock()
	return l
}

// Debug logs at debug level with structured key/value fields.
func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

// Info logs at info level with structured key/value fields.
func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

// Warn logs at warn level with structured key/value fields.
func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

// Error logs at error level with structured key/value fields.
func Error(msg string, args ...any) {
	get().Error(msg, args...)
}

// With returns a slog.Logger carrying pre-bound attributes.
func With(args ...any) *slog.Logger {
	return get().With(args...)
}
