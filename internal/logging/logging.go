// Package logging builds the charmbracelet/log logger used across taskview.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Prefix tags every line written by taskview.
const Prefix = "taskview"

// Options configure New.
type Options struct {
	Level     string // debug, info, warn, error
	Format    string // text, json, logfmt
	File      string // append to this file; empty means Output
	Output    io.Writer
	Timestamp bool
}

// New returns a logger and a close func for any file it opened. With no
// File and no Output the logger discards everything.
func New(opts Options) (*log.Logger, func() error, error) {
	out := opts.Output
	closer := func() error { return nil }

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f.Close
	}
	if out == nil {
		out = io.Discard
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           ParseLevel(opts.Level),
		Formatter:       ParseFormatter(opts.Format),
		ReportTimestamp: opts.Timestamp || opts.File != "",
		Prefix:          Prefix,
	})
	return logger, closer, nil
}

// Discard is a logger that writes nothing.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// ParseLevel maps a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter maps a format name to a log.Formatter, defaulting to text.
func ParseFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
