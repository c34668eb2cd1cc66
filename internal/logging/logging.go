// Package logging builds the zerolog loggers used for diagnostic output.
// User-facing results go through internal/ui; logs go to stderr.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Supported formats.
const (
	FormatText  = "text"
	FormatPlain = "plain"
	FormatJSON  = "json"
)

// NewWriter wraps w for the given format: text and plain produce
// human-readable console lines, json passes records through unchanged.
func NewWriter(w io.Writer, format string) (io.Writer, error) {
	switch strings.ToLower(format) {
	case FormatText, FormatPlain, "":
		return newConsoleWriter(w), nil
	case FormatJSON:
		return w, nil
	}
	return nil, fmt.Errorf("unsupported log format: %s", format)
}

// New returns a logger writing to w in format at level.
func New(w io.Writer, format, level string) (zerolog.Logger, error) {
	out, err := NewWriter(w, format)
	if err != nil {
		return zerolog.Nop(), err
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("failed to parse log level: %v", err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

func newConsoleWriter(w io.Writer) *zerolog.ConsoleWriter {
	return &zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			if ll, ok := i.(string); ok {
				return strings.ToUpper(ll)
			}
			return "????"
		},
	}
}
