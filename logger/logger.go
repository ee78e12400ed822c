package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/config"
)

// NewLogger builds the application logger. Output goes to stderr so that
// query results printed on stdout can be piped.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	return New(os.Stderr, cfg)
}

func New(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
