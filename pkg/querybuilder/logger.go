package querybuilder

// Logger receives the builder's diagnostic output. Query text and raw fetch
// results are logged at Verbose; execution failures at Error.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Verbose(msg string, args ...any)
}

// NopLogger discards everything. It is the default when no logger is configured.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any)   {}
func (NopLogger) Info(string, ...any)    {}
func (NopLogger) Error(string, ...any)   {}
func (NopLogger) Warn(string, ...any)    {}
func (NopLogger) Verbose(string, ...any) {}

var _ Logger = NopLogger{}
