// Package logging builds the structured logger shared by every component.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sweeney/lock-controller/internal/config"
)

// New creates a logger from the logging configuration. Every record carries
// the service name and version.
func New(cfg config.LoggingConfig, version string) *slog.Logger {
	return newWithWriter(cfg, version, output(cfg.Output))
}

func newWithWriter(cfg config.LoggingConfig, version string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler.WithAttrs([]slog.Attr{
		slog.String("service", "lock-controller"),
		slog.String("version", version),
	}))
}

func output(name string) io.Writer {
	if strings.ToLower(name) == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

// ParseLevel converts a level name to slog.Level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Component returns a child logger tagged with the component name.
func Component(log *slog.Logger, name string) *slog.Logger {
	return log.With("component", name)
}
