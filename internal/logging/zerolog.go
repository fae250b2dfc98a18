package logging

import (
	"github.com/rs/zerolog"

	"github.com/roach88/docquery/pkg/querybuilder"
)

var zerologLevels = map[Level]zerolog.Level{
	LevelVerbose: zerolog.TraceLevel,
	LevelDebug:   zerolog.DebugLevel,
	LevelInfo:    zerolog.InfoLevel,
	LevelWarn:    zerolog.WarnLevel,
	LevelError:   zerolog.ErrorLevel,
}

// NewZerolog creates a zerolog logger with the given configuration.
// Timestamps use zerolog's package-wide TimeFieldFormat, which is left as is.
func NewZerolog(cfg Config) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	output := cfg.output()
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		Level(zerologLevels[level]).
		With().
		Timestamp().
		Logger(), nil
}

// ZerologLogger writes querybuilder log calls to a zerolog.Logger.
// Verbose calls are logged at trace level.
type ZerologLogger struct {
	l zerolog.Logger
}

// FromZerolog wraps l.
func FromZerolog(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

func (z *ZerologLogger) Debug(msg string, args ...any)   { z.log(zerolog.DebugLevel, msg, args) }
func (z *ZerologLogger) Info(msg string, args ...any)    { z.log(zerolog.InfoLevel, msg, args) }
func (z *ZerologLogger) Warn(msg string, args ...any)    { z.log(zerolog.WarnLevel, msg, args) }
func (z *ZerologLogger) Error(msg string, args ...any)   { z.log(zerolog.ErrorLevel, msg, args) }
func (z *ZerologLogger) Verbose(msg string, args ...any) { z.log(zerolog.TraceLevel, msg, args) }

// log emits msg with args as fields. args alternate key, value; a trailing
// key without a value is logged under "!BADKEY" like slog does.
func (z *ZerologLogger) log(level zerolog.Level, msg string, args []any) {
	e := z.l.WithLevel(level)
	if e == nil {
		return
	}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			e = e.Interface("!BADKEY", args[i])
			i--
			continue
		}
		if err, isErr := args[i+1].(error); isErr {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	e.Msg(msg)
}

var _ querybuilder.Logger = (*ZerologLogger)(nil)
