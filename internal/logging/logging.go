// Package logging configures the process-wide zerolog root logger. Packages
// derive component-scoped loggers from the root via
// logger.With().Str("component", ...).
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Output     string // "stdout", "stderr", or a file path
	JSONFormat bool   // structured JSON vs human-readable console
}

// New builds the root logger from configuration. Unknown levels fall back to
// info; an unwritable file output falls back to stdout.
func New(cfg Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	switch cfg.Output {
	case "", "stdout":
	case "stderr":
		out = os.Stderr
	default:
		if f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			out = f
		}
	}

	if !cfg.JSONFormat {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
