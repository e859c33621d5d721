// Package debug provides the tagged structured loggers of the storage layer
// using log/slog.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// TagKey is the attribute key carrying a logger's tag.
const TagKey = "tag"

var (
	// logger is the global logger instance
	logger *slog.Logger
	// enabled indicates if debug level records are written
	enabled bool
	// output receives every record
	output io.Writer = os.Stderr
	// mu protects the variables above
	mu sync.RWMutex
)

func init() {
	Init(false)
}

// Init initializes the global logger.
// If enable is true, debug records are written; otherwise only warnings
// and errors reach the output.
func Init(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = enable
	rebuild()
}

// SetOutput redirects every logger created after the call to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

func rebuild() {
	level := slog.LevelWarn
	if enabled {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
}

// Enabled returns whether debug logging is enabled
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// For returns a logger whose records carry the given tag. The logger is
// bound to the output configured at the time of the call.
func For(tag string) *slog.Logger {
	return Logger().With(TagKey, tag)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// Logger returns the underlying slog.Logger instance
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
