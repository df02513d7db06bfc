// Package log provides the zerolog constructor shared by all binaries.
package log

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger so call sites can use both the fluent API
// and the embedded Logger value directly.
type Logger struct {
	zerolog.Logger
}

// New creates a logger with the given level. When pretty is true, output
// is human-readable console format instead of JSON.
func New(level string, pretty bool) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	logger = logger.Level(lvl).With().Timestamp().Logger()
	return Logger{logger}
}
