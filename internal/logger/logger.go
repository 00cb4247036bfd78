// Package logger builds the service's zerolog logger
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger at level. Development gets a human-readable console
// writer on stderr, everything else gets JSON on stdout.
func New(level, environment string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if environment != "production" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(out, level)
}

// NewWithWriter creates a logger at level writing to out
func NewWithWriter(out io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
