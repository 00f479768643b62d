// Package logger wraps log/slog with the handful of settings the services
// and the CLI share.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level names accepted by Config.Level.
const (
	DEBUG = "debug"
	INFO  = "info"
	WARN  = "warn"
	ERROR = "error"
)

// Output formats.
const (
	JSON = "json"
	TEXT = "text"
)

// SERVICE is the attribute every line of a named service carries.
const SERVICE = "service"

type Logger struct {
	*slog.Logger
}

type Config struct {
	Level     string    // defaults to info
	Format    string    // json (default) or text
	Output    io.Writer // defaults to stdout
	AddSource bool
	Service   string
}

// ParseLevel accepts the slog spellings, case-insensitively and with an
// optional offset such as "debug+2". Anything else is info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level), AddSource: cfg.AddSource}

	var handler slog.Handler = slog.NewJSONHandler(out, opts)
	if strings.EqualFold(cfg.Format, TEXT) {
		handler = slog.NewTextHandler(out, opts)
	}
	l := slog.New(handler)
	if cfg.Service != "" {
		l = l.With(SERVICE, cfg.Service)
	}
	return &Logger{Logger: l}
}

// Discard drops everything. Constructors fall back to it when handed a nil
// logger.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Fatal logs at error level and exits with status 1.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}
