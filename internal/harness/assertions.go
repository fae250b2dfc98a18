package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/docquery/internal/canonical"
	"github.com/roach88/docquery/internal/testutil"
	"github.com/roach88/docquery/pkg/querybuilder"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		switch event.Type {
		case EventQuery:
			fmt.Fprintf(&buf, "  [%d] %s %s\n", event.Seq, event.Method, strings.Join(strings.Fields(event.Query), " "))
		case EventResponse:
			fmt.Fprintf(&buf, "  [%d] %d item(s)\n", event.Seq, event.Items)
		case EventError:
			fmt.Fprintf(&buf, "  [%d] error: %s\n", event.Seq, event.Error)
		}
	}

	return buf.String()
}

func assertQueryCount(trace []TraceEvent, queries []TraceEvent, assertion Assertion) error {
	if len(queries) == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertQueryCount,
		Expected: fmt.Sprintf("%d queries", assertion.Count),
		Actual:   fmt.Sprintf("%d queries", len(queries)),
		Trace:    trace,
	}
}

func assertQueryContains(trace []TraceEvent, queries []TraceEvent, assertion Assertion) error {
	if assertion.Index < 0 || assertion.Index >= len(queries) {
		return &AssertionError{
			Type:     AssertQueryContains,
			Expected: fmt.Sprintf("query %d containing %q", assertion.Index, assertion.Text),
			Actual:   fmt.Sprintf("only %d queries", len(queries)),
			Trace:    trace,
		}
	}

	q := queries[assertion.Index].Query
	if strings.Contains(q, assertion.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertQueryContains,
		Expected: fmt.Sprintf("query %d containing %q", assertion.Index, assertion.Text),
		Actual:   fmt.Sprintf("%q", q),
		Trace:    trace,
	}
}

// assertQueryParameters compares parameters in canonical JSON, so 18 from
// YAML equals 18.0 from a decoded document.
func assertQueryParameters(trace []TraceEvent, queries []TraceEvent, assertion Assertion) error {
	if assertion.Index < 0 || assertion.Index >= len(queries) {
		return &AssertionError{
			Type:     AssertQueryParameters,
			Expected: fmt.Sprintf("query %d", assertion.Index),
			Actual:   fmt.Sprintf("only %d queries", len(queries)),
			Trace:    trace,
		}
	}

	actual := queries[assertion.Index].Parameters
	if actual == nil {
		actual = []querybuilder.Parameter{}
	}
	expected := assertion.Parameters
	if expected == nil {
		expected = []Parameter{}
	}

	want, err := canonical.Marshal(expected)
	if err != nil {
		return fmt.Errorf("%s: expected parameters: %w", AssertQueryParameters, err)
	}
	got, err := canonical.Marshal(actual)
	if err != nil {
		return fmt.Errorf("%s: actual parameters: %w", AssertQueryParameters, err)
	}
	if string(want) == string(got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertQueryParameters,
		Expected: string(want),
		Actual:   string(got),
		Trace:    trace,
	}
}

func assertLogContains(trace []TraceEvent, logger *testutil.RecordingLogger, assertion Assertion) error {
	for _, msg := range logger.Messages(assertion.Level) {
		if msg == assertion.Message {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertLogContains,
		Expected: fmt.Sprintf("%s log %q", assertion.Level, assertion.Message),
		Actual:   fmt.Sprintf("%s logs %q", assertion.Level, logger.Messages(assertion.Level)),
		Trace:    trace,
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, logger *testutil.RecordingLogger) []string {
	var errors []string
	queries := result.Queries()

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertQueryCount:
			err = assertQueryCount(result.Trace, queries, assertion)
		case AssertQueryContains:
			err = assertQueryContains(result.Trace, queries, assertion)
		case AssertQueryParameters:
			err = assertQueryParameters(result.Trace, queries, assertion)
		case AssertLogContains:
			if logger == nil {
				err = fmt.Errorf("assertion[%d]: log_contains requires a logger", i)
			} else {
				err = assertLogContains(result.Trace, logger, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// checkExpect validates the outcome against the scenario's expect clause.
func checkExpect(result *Result, scenario *Scenario) {
	exp := scenario.Expect
	if exp == nil || exp.Error == "" {
		if result.Err != nil {
			result.AddError(fmt.Sprintf("unexpected error: %v", result.Err))
			return
		}
	}
	if exp == nil {
		return
	}

	if exp.Error != "" {
		switch {
		case result.Err == nil:
			result.AddError(fmt.Sprintf("expected error containing %q, query succeeded", exp.Error))
		case !strings.Contains(result.Err.Error(), exp.Error):
			result.AddError(fmt.Sprintf("expected error containing %q, got %q", exp.Error, result.Err.Error()))
		}
		return
	}

	switch out := result.Output.(type) {
	case querybuilder.FetchResult[map[string]any]:
		checkFetchResult(result, exp, out)
	case map[string]any:
		if exp.None {
			result.AddError("expected no item, got one")
			return
		}
		checkItems(result, exp.Items, []map[string]any{out})
	case nil:
		if !exp.None {
			result.AddError("expected an item, got none")
		}
	}
}

func checkFetchResult(result *Result, exp *ExpectClause, out querybuilder.FetchResult[map[string]any]) {
	if exp.Count != nil && *exp.Count != out.Count {
		result.AddError(fmt.Sprintf("count: expected %d, got %d", *exp.Count, out.Count))
	}
	if exp.TotalCount != nil && *exp.TotalCount != out.TotalCount {
		result.AddError(fmt.Sprintf("total_count: expected %d, got %d", *exp.TotalCount, out.TotalCount))
	}
	if exp.ContinuationToken != nil && *exp.ContinuationToken != out.ContinuationToken {
		result.AddError(fmt.Sprintf("continuation_token: expected %q, got %q", *exp.ContinuationToken, out.ContinuationToken))
	}
	if exp.HasMoreResults != nil && *exp.HasMoreResults != out.HasMoreResults {
		result.AddError(fmt.Sprintf("has_more_results: expected %t, got %t", *exp.HasMoreResults, out.HasMoreResults))
	}
	if exp.Items != nil {
		checkItems(result, exp.Items, out.Items)
	}
}

func checkItems(result *Result, expected, actual []map[string]any) {
	if len(expected) != len(actual) {
		result.AddError(fmt.Sprintf("items: expected %d, got %d", len(expected), len(actual)))
		return
	}
	for i := range expected {
		if !matchFields(actual[i], expected[i]) {
			result.AddError(fmt.Sprintf("items[%d]: expected fields %v, got %v", i, expected[i], actual[i]))
		}
	}
}

// matchFields checks if actual contains all expected fields (subset match).
// Extra keys in actual are ignored.
func matchFields(actual, expected map[string]any) bool {
	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		if !valuesEqual(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

// valuesEqual compares two values by their canonical JSON, which erases
// the int/float split between YAML and decoded JSON.
func valuesEqual(actual, expected any) bool {
	a, err := canonical.Marshal(actual)
	if err != nil {
		return false
	}
	e, err := canonical.Marshal(expected)
	if err != nil {
		return false
	}
	return string(a) == string(e)
}
