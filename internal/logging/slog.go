package logging

import (
	"context"
	"log/slog"

	"github.com/roach88/docquery/pkg/querybuilder"
)

// SlogVerbose sits below slog.LevelDebug and prints as "VERBOSE".
const SlogVerbose = slog.Level(-8)

var slogLevels = map[Level]slog.Level{
	LevelVerbose: SlogVerbose,
	LevelDebug:   slog.LevelDebug,
	LevelInfo:    slog.LevelInfo,
	LevelWarn:    slog.LevelWarn,
	LevelError:   slog.LevelError,
}

// NewSlog creates a slog logger with the given configuration.
func NewSlog(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level: slogLevels[level],
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == SlogVerbose {
					a.Value = slog.StringValue("VERBOSE")
				}
			}
			return a
		},
	}

	var h slog.Handler
	switch cfg.Format {
	case "json":
		h = slog.NewJSONHandler(cfg.output(), opts)
	default:
		h = slog.NewTextHandler(cfg.output(), opts)
	}
	return slog.New(h), nil
}

// SlogLogger writes querybuilder log calls to a *slog.Logger.
type SlogLogger struct {
	l *slog.Logger
}

// FromSlog wraps l. A nil l uses slog.Default().
func FromSlog(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l}
}

func (s *SlogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *SlogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *SlogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *SlogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *SlogLogger) Verbose(msg string, args ...any) {
	s.l.Log(context.Background(), SlogVerbose, msg, args...)
}

var _ querybuilder.Logger = (*SlogLogger)(nil)
