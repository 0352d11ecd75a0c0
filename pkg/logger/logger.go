// Package logger builds the process-wide slog.Logger for the learning bot.
// Level and format come from configuration; every component receives the
// result via dependency injection rather than slog.Default.
// No external dependencies - uses only standard library.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options controls how the logger is built.
type Options struct {
	// Level is debug, info, warn or error. Unknown values fall back to info.
	Level string

	// Format is json or text. Unknown values fall back to json.
	Format string

	// Output defaults to os.Stdout.
	Output io.Writer

	// AddSource attaches file:line to every record.
	AddSource bool

	// App attributes stamped on every record.
	AppName    string
	AppVersion string
	AppEnv     string
}

// New builds a slog.Logger from the options.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "text":
		handler = slog.NewTextHandler(out, handlerOpts)
	default:
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	log := slog.New(handler)

	var attrs []any
	if opts.AppName != "" {
		attrs = append(attrs, slog.String("app", opts.AppName))
	}
	if opts.AppVersion != "" {
		attrs = append(attrs, slog.String("version", opts.AppVersion))
	}
	if opts.AppEnv != "" {
		attrs = append(attrs, slog.String("env", opts.AppEnv))
	}
	if len(attrs) > 0 {
		log = log.With(attrs...)
	}

	return log
}

// ParseLevel parses a string into a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything. Meant for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
