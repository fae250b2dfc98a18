package testutil

import (
	"sync"

	"github.com/roach88/docquery/pkg/querybuilder"
)

// LogEntry is one call made to a RecordingLogger.
type LogEntry struct {
	Level string
	Msg   string
	Args  []any
}

// RecordingLogger keeps every log call for later assertions.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (l *RecordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *RecordingLogger) Debug(msg string, args ...any)   { l.record("debug", msg, args) }
func (l *RecordingLogger) Info(msg string, args ...any)    { l.record("info", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...any)   { l.record("error", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...any)    { l.record("warn", msg, args) }
func (l *RecordingLogger) Verbose(msg string, args ...any) { l.record("verbose", msg, args) }

// Entries returns a copy of the recorded calls.
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), l.entries...)
}

// Messages returns the messages logged at level, in order.
func (l *RecordingLogger) Messages(level string) []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e.Msg)
		}
	}
	return out
}

var _ querybuilder.Logger = (*RecordingLogger)(nil)
