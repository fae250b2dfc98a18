package harness

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Adults(t *testing.T) {
	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_Adults -update
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "adults.scenario.yaml"))
	require.NoError(t, err)

	require.NoError(t, RunWithGolden(t, scenario))
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "first_adult.scenario.yaml"))
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := Snapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestSnapshot_Error(t *testing.T) {
	r := NewResult()
	r.addFailure(errors.New("throttled"))
	r.Err = errors.New("throttled")

	got, err := Snapshot("failing", r)
	require.NoError(t, err)
	assert.Equal(t,
		`{"error":"throttled","scenario_name":"failing","trace":[{"error":"throttled","seq":1,"type":"error"}]}`,
		string(got))
}

func TestSnapshot_EmptyTrace(t *testing.T) {
	got, err := Snapshot("empty", NewResult())
	require.NoError(t, err)
	assert.Equal(t, `{"scenario_name":"empty","trace":[]}`, string(got))
}
