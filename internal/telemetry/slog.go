package telemetry

import (
	"log/slog"
	"os"
	"strings"
)

// parseLevel maps a configuration string to a slog.Level. Unknown values
// fall back to info rather than failing startup over a typo.
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

// SetupLogger installs the global slog default logger from the configured
// format and level strings.
//
// format "json" selects a JSONHandler (machine readable, for production);
// any other value selects a TextHandler for local development. Levels are
// "debug", "info", "warn" and "error", case-insensitive, defaulting to info.
//
// Installing the logger as the process default lets every package log through
// plain slog.Info/Warn/Error calls without threading a *slog.Logger around;
// the gateway service still accepts an explicit logger so tests can silence it.
func SetupLogger(format, level string) {
	lvl := parseLevel(level)

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug, // include file:line only when debugging
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialised", "format", format, "level", lvl.String())
}
