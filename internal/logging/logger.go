package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler format ("text" or "json") and minimum level.
type Config struct {
	Level  string
	Format string
}

// NewLogger returns a structured logger writing to stderr, leaving stdout to
// command output.
func NewLogger(cfg Config) *slog.Logger {
	return New(os.Stderr, cfg)
}

func New(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps debug, warn and error to their slog levels; anything else
// is info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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
