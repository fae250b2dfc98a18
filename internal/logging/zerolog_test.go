package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestZerolog_VerboseIsTrace(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewZerolog(Config{Level: "verbose", Format: "json", Output: &buf})
	require.NoError(t, err)

	FromZerolog(l).Verbose("Cosmos Result", "count", 2)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "trace", entries[0]["level"])
	assert.Equal(t, "Cosmos Result", entries[0]["message"])
	assert.Equal(t, float64(2), entries[0]["count"])
}

func TestZerolog_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewZerolog(Config{Level: "warn", Output: &buf})
	require.NoError(t, err)
	logger := FromZerolog(l)

	logger.Verbose("verbose message")
	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn message", entries[0]["message"])
	assert.Equal(t, "error message", entries[1]["message"])
}

func TestZerolog_ErrorsAndBadKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := FromZerolog(zerolog.New(&buf))

	logger.Error("Cosmos Count Query Error", "error", errors.New("throttled"), 42, "dangling")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "throttled", entries[0]["error"])
	assert.Equal(t, "dangling", entries[0]["!BADKEY"])
}

func TestZerolog_Console(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewZerolog(Config{Level: "info", Format: "console", Output: &buf})
	require.NoError(t, err)

	FromZerolog(l).Info("recording started", "session", "s-1")

	assert.Contains(t, buf.String(), "recording started")
	assert.Contains(t, buf.String(), "s-1")
}

func TestZerolog_LeavesTimeFieldFormat(t *testing.T) {
	prev := zerolog.TimeFieldFormat
	t.Cleanup(func() { zerolog.TimeFieldFormat = prev })
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var buf bytes.Buffer
	l, err := NewZerolog(Config{Level: "info", Output: &buf})
	require.NoError(t, err)
	l.Info().Msg("hello")

	assert.Equal(t, zerolog.TimeFormatUnix, zerolog.TimeFieldFormat)
	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.IsType(t, float64(0), entries[0]["time"])
}
