package observability

import (
	"io"

	"github.com/charmbracelet/log"
)

// LogOptions configures the console logger.
type LogOptions struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	Prefix          string
}

// DefaultLogOptions returns the options used when nothing is configured.
func DefaultLogOptions() LogOptions {
	return LogOptions{
		Level:           log.InfoLevel,
		Formatter:       log.TextFormatter,
		ReportTimestamp: true,
		Prefix:          "taskdesk",
	}
}

// NewLogger creates a leveled console logger writing to w.
func NewLogger(w io.Writer, opts LogOptions) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          opts.Prefix,
	})
}

// NewLoggerFromConfig creates a logger from the log.level and log.format
// configuration strings.
func NewLoggerFromConfig(w io.Writer, level, format string) *log.Logger {
	opts := DefaultLogOptions()
	opts.Level = ParseLogLevel(level)
	opts.Formatter = ParseLogFormatter(format)
	return NewLogger(w, opts)
}

// NewDiscardLogger returns a logger that drops everything. The TUI uses it
// so nothing is written over the screen it draws.
func NewDiscardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLogLevel parses a string log level to a charmbracelet/log Level.
// Unknown values map to info.
func ParseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseLogFormatter parses a string formatter name to a charmbracelet/log Formatter.
func ParseLogFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
