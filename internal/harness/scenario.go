package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScenarioSuffix names scenario files, so definition files can live next
// to them.
const ScenarioSuffix = ".scenario.yaml"

// Fetch modes.
const (
	FetchAll = "all"
	FetchOne = "one"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Definition is the query definition file. Relative paths are resolved
	// against the scenario file's directory.
	Definition string `yaml:"definition"`

	// Fetch is "all" (GetAll, the default) or "one" (GetOne).
	Fetch string `yaml:"fetch,omitempty"`

	// PageSize and Continuation are passed to GetAll.
	PageSize     int    `yaml:"page_size,omitempty"`
	Continuation string `yaml:"continuation,omitempty"`

	// Responses are served in order, one per query.
	Responses []Response `yaml:"responses"`

	// Expect specifies the expected outcome. If nil, execution must
	// succeed and nothing else is checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the trace and the logs.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Replay re-runs the scenario from its recording and requires the same
	// output as the live run.
	Replay bool `yaml:"replay,omitempty"`
}

// Response is one scripted container response.
type Response struct {
	// Resources are encoded as JSON documents.
	Resources         []any  `yaml:"resources"`
	ContinuationToken string `yaml:"continuation_token,omitempty"`
	HasMoreResults    bool   `yaml:"has_more_results,omitempty"`

	// Error fails the query with this message instead.
	Error string `yaml:"error,omitempty"`
}

// ExpectClause specifies the expected outcome.
type ExpectClause struct {
	// Error is a substring of the expected execution error.
	Error string `yaml:"error,omitempty"`

	Count             *int    `yaml:"count,omitempty"`
	TotalCount        *int    `yaml:"total_count,omitempty"`
	ContinuationToken *string `yaml:"continuation_token,omitempty"`
	HasMoreResults    *bool   `yaml:"has_more_results,omitempty"`

	// Items are matched by position. This is a subset match - only
	// specified fields are validated. Extra result items fail.
	Items []map[string]any `yaml:"items,omitempty"`

	// None expects a fetch-one scenario to find nothing.
	None bool `yaml:"none,omitempty"`
}

// Assertion validates the trace or the logs.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Index selects a query (query_contains, query_parameters).
	Index int `yaml:"index,omitempty"`

	// Text must appear in the query text (query_contains).
	Text string `yaml:"text,omitempty"`

	// Count is the expected number of queries (query_count).
	Count int `yaml:"count,omitempty"`

	// Parameters are the expected bound parameters (query_parameters).
	Parameters []Parameter `yaml:"parameters,omitempty"`

	// Level and Message select a log entry (log_contains).
	Level   string `yaml:"level,omitempty"`
	Message string `yaml:"message,omitempty"`
}

// Parameter is an expected query parameter.
type Parameter struct {
	Name  string `yaml:"name" json:"name"`
	Value any    `yaml:"value" json:"value"`
}

// Assertion type constants.
const (
	AssertQueryCount      = "query_count"
	AssertQueryContains   = "query_contains"
	AssertQueryParameters = "query_parameters"
	AssertLogContains     = "log_contains"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Definition != "" && !filepath.IsAbs(scenario.Definition) {
		scenario.Definition = filepath.Join(filepath.Dir(path), scenario.Definition)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Definition == "" {
		return fmt.Errorf("definition is required")
	}

	switch s.Fetch {
	case "", FetchAll, FetchOne:
	default:
		return fmt.Errorf("fetch must be %q or %q, got %q", FetchAll, FetchOne, s.Fetch)
	}

	if s.PageSize < 0 {
		return fmt.Errorf("page_size must be non-negative")
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertQueryCount, AssertQueryContains, AssertQueryParameters, AssertLogContains:
		default:
			return fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}
	}

	return nil
}

// FindScenarios returns the scenario files under dir in lexical order.
// A non-empty filter is a glob matched against the scenario name part of
// the file name (without the suffix).
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ScenarioSuffix) {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(d.Name(), ScenarioSuffix)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}
