// Package logger builds the zerolog loggers used by the qpo CLI and
// the qpod daemon.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a structured logger tagged with a component name.
//
// level accepts zerolog level names ("debug", "info", "warn", "error");
// unknown values fall back to info. When console is true, output is
// human-readable instead of JSON.
func New(component, level string, console bool) zerolog.Logger {
	zerolog.DurationFieldUnit = time.Millisecond

	var out io.Writer = os.Stderr
	if console {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(out).With().
		Timestamp().
		Str("component", component).
		Logger().
		Level(lvl)
}

// Nop returns a logger that discards everything. Used by tests and by
// library callers that do not want log output.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
