// Package logging adapts structured loggers to querybuilder.Logger.
//
// Two sinks are provided: log/slog, with an extra VERBOSE level below
// DEBUG, and zerolog, where verbose maps to TRACE. Both take key/value
// argument lists the same way querybuilder calls them.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Config contains logger configuration.
type Config struct {
	// Level sets the minimum level (verbose, debug, info, warn, error).
	Level string
	// Format selects the encoding: "text" or "json". The zerolog sink also
	// accepts "console" for colored human-readable output.
	Format string
	// Output sets the output writer (defaults to os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "text",
		Output: os.Stderr,
	}
}

func (c Config) output() io.Writer {
	if c.Output == nil {
		return os.Stderr
	}
	return c.Output
}

// Level is a backend-neutral log level.
type Level int

const (
	LevelVerbose Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel parses a level name. The empty string is info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "verbose", "trace":
		return LevelVerbose, nil
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}
