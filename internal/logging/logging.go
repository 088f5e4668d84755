package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	logFile io.Closer
)

// ParseLevel maps a level name to a slog.Level. Unknown names return an
// error along with slog.LevelInfo.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// Init opens path for appending and routes all log output to it.
// The terminal belongs to the UI, so nothing is ever written to stderr.
func Init(path string, level slog.Level) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	InitWriter(f, level)

	mu.Lock()
	logFile = f
	mu.Unlock()
	return nil
}

// InitWriter routes log output to w.
func InitWriter(w io.Writer, level slog.Level) {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	mu.Lock()
	logger = slog.New(h)
	mu.Unlock()
}

// Close releases the log file opened by Init and discards further output.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// L returns the current logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func log(level slog.Level, subsystem string, err error, msg string, args ...any) {
	l := L()
	if !l.Enabled(context.Background(), level) {
		return
	}
	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.LogAttrs(context.Background(), level, fmt.Sprintf(msg, args...), attrs...)
}

// Debug logs a debug message.
func Debug(subsystem, msg string, args ...any) {
	log(slog.LevelDebug, subsystem, nil, msg, args...)
}

// Info logs an informational message.
func Info(subsystem, msg string, args ...any) {
	log(slog.LevelInfo, subsystem, nil, msg, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, err error, msg string, args ...any) {
	log(slog.LevelWarn, subsystem, err, msg, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, msg string, args ...any) {
	log(slog.LevelError, subsystem, err, msg, args...)
}
