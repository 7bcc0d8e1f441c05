package app

import (
	"io"
	"log/slog"
	"strings"

	"github.com/heartmarshall/catalog-sync/internal/config"
)

// NewLogger creates a *slog.Logger writing to w and installs it as the slog
// default.
//
// Format "json" emits one JSON object per line for CI and log shippers; any
// other value emits logfmt-style text for an operator's terminal. Source
// locations are only added to text output at debug level.
// Level is one of: debug, info, warn, error (case-insensitive); defaults to info.
func NewLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level := parseLevel(cfg.Level)

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: level <= slog.LevelDebug,
		})
	}

	logger := slog.New(handler).With(slog.String("app", "catalogsync"))
	slog.SetDefault(logger)

	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
