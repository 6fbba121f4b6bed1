// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Config selects level, encoding and destination.
type Config struct {
	// Level is a zerolog level name; "warning" and "off" are accepted too.
	Level string

	// Format is "console" for human-readable lines, anything else for JSON.
	Format string

	// Output defaults to stderr.
	Output io.Writer

	EnableCaller bool
}

// DefaultConfig logs info and above to stderr in console format.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "console", Output: os.Stderr}
}

// Logger is the process-wide logger. Component loggers derive from it at
// creation time, so call Init before building long-lived components.
var Logger = New(DefaultConfig())

// Init replaces the process-wide logger.
func Init(cfg Config) {
	Logger = New(cfg)
}

// New builds a logger from cfg without touching the global one.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
			NoColor:    out != os.Stderr && out != os.Stdout,
		}
	}

	lc := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.EnableCaller {
		lc = lc.Caller()
	}
	return lc.Logger()
}

// ParseLevel maps a configured level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(name string) zerolog.Level {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "warning":
		return zerolog.WarnLevel
	case "off":
		return zerolog.Disabled
	default:
		level, err := zerolog.ParseLevel(n)
		if err != nil || level == zerolog.NoLevel {
			return zerolog.InfoLevel
		}
		return level
	}
}

// OpenFile opens path for appending, creating parent directories. Commands
// that draw on the terminal log here.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Component returns a child logger tagged with the subsystem name.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// WithSender returns a child logger tagged with a message sender.
func WithSender(sender string) zerolog.Logger {
	return Logger.With().Str("sender", sender).Logger()
}
