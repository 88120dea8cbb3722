package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Access creates a JSON logger for per-request access lines.
func Access(prefix string) *log.Logger {
	return NewWithConfig(os.Stderr, prefix, log.InfoLevel, false, true, log.JSONFormatter)
}

// NewWithConfig creates a new charm log with custom config
func NewWithConfig(w io.Writer, prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}
