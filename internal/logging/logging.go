// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds a logger writing to w. format "json" emits one JSON object
// per line, anything else uses the console writer. An unknown level falls
// back to info.
func New(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(format, "json") {
		return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
}

// Setup installs New(os.Stderr, level, format) as the global logger.
func Setup(level, format string) zerolog.Logger {
	logger := New(os.Stderr, level, format)
	log.Logger = logger
	return logger
}
