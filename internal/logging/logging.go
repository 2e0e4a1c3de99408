// Package logging builds the slog loggers used by the CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Options configures New.
type Options struct {
	Level      string
	NoColor    bool
	Writer     io.Writer
	TimeFormat string
}

// ParseLevel converts a level name into an slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New returns a tint-backed logger writing to opts.Writer (stderr by default).
// An unknown level falls back to info.
func New(opts Options) *slog.Logger {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	timeFormat := opts.TimeFormat
	if timeFormat == "" {
		timeFormat = time.Kitchen
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: timeFormat,
		NoColor:    opts.NoColor,
	}))
}
