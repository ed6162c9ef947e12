package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// ParseLogLevel maps a level name to a slog level, INFO when empty or unknown
func ParseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("Invalid log level, using INFO", "value", raw)
		return slog.LevelInfo
	}
}

// NewLogHandler returns a JSON handler on stderr and, when logFile is set,
// fans records out to a JSON handler appending to that file as well.
// The returned function closes the file.
func NewLogHandler(logFile string, level slog.Level) (slog.Handler, func() error) {
	stderrHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if logFile == "" {
		return stderrHandler, func() error { return nil }
	}

	file, err := os.OpenFile(filepath.Clean(logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		slog.New(stderrHandler).Error("Failed to open log file, using stderr only", "error", err, "file", logFile)
		return stderrHandler, func() error { return nil }
	}

	return NewLogHandlerWithWriters(os.Stderr, file, level), file.Close
}

// NewLogHandlerWithWriters fans out to JSON handlers on both writers
func NewLogHandlerWithWriters(stderr, file io.Writer, level slog.Level) slog.Handler {
	return slogmulti.Fanout(
		slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}),
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}),
	)
}
