package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/docquery/internal/canonical"
)

// GoldenDir is where RunWithGolden and AssertGolden keep fixtures,
// relative to the test's package directory.
const GoldenDir = "testdata/golden"

// Snapshot returns the canonical JSON of a scenario execution: its name,
// the full trace, the output and the execution error. Two runs of the same
// scenario produce identical bytes.
func Snapshot(name string, result *Result) ([]byte, error) {
	snap := map[string]any{
		"scenario_name": name,
		"trace":         result.Trace,
	}
	if result.Output != nil {
		snap["output"] = result.Output
	}
	if result.Err != nil {
		snap["error"] = result.Err.Error()
	}
	return canonical.Marshal(snap)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshot)

	return nil
}
