// Package logging initialises a [log/slog] logger for munin plugin
// executables. Logs go to stderr so the plugin protocol on stdout stays
// clean; the default level is warn because plugins usually run silently
// under the node daemon.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Supported log levels.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Supported log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Setup creates a *slog.Logger writing to stderr and installs it as the
// process-wide default via slog.SetDefault.
func Setup(level, format string) *slog.Logger {
	return SetupWithWriter(level, format, os.Stderr)
}

// SetupWithWriter creates a *slog.Logger writing to w and installs it as
// the process-wide default. Use this variant in tests to capture or
// suppress log output.
func SetupWithWriter(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler

	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default: // text
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// ParseLevel converts a string log level to slog.Level. Unknown levels fall
// back to warn.
func ParseLevel(level string) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
