// Package telemetry installs the process-wide structured logger.
package telemetry

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Init configures slog as the default logger at the given level. Unknown
// levels fall back to info. When stderr is a terminal and the level is
// debug, log records carry source positions.
func Init(level string) {
	lvl := parseLevel(level)
	opts := &slog.HandlerOptions{Level: lvl}
	if lvl == slog.LevelDebug && isatty.IsTerminal(os.Stderr.Fd()) {
		opts.AddSource = true
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	if parseKnown(level) {
		return
	}
	slog.Warn("unknown log level, using info", "level", level)
}

func parseLevel(level string) slog.Level {
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

func parseKnown(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error", "":
		return true
	}
	return false
}
