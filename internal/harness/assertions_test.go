package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docquery/internal/testutil"
	"github.com/roach88/docquery/pkg/querybuilder"
)

// tracedResult builds a result with one FetchAll query and its response.
func tracedResult() *Result {
	r := NewResult()
	r.addQuery("FetchAll", querybuilder.QuerySpec{
		Query:      "SELECT\n  *\nFROM\n  c\nWHERE\nc.age > @p0",
		Parameters: []querybuilder.Parameter{{Name: "@p0", Value: 18}},
	}, &querybuilder.QueryOptions{MaxItemCount: 10})
	r.addResponse(querybuilder.FeedResponse{})
	return r
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	logger := &testutil.RecordingLogger{}
	logger.Error("Cosmos Query Error", "error", "boom")

	errs := EvaluateAssertions(tracedResult(), []Assertion{
		{Type: AssertQueryCount, Count: 1},
		{Type: AssertQueryContains, Index: 0, Text: "c.age > @p0"},
		{Type: AssertQueryParameters, Index: 0, Parameters: []Parameter{{Name: "@p0", Value: 18.0}}},
		{Type: AssertLogContains, Level: "error", Message: "Cosmos Query Error"},
	}, logger)

	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{
			name:      "query count",
			assertion: Assertion{Type: AssertQueryCount, Count: 2},
			want:      "Expected: 2 queries",
		},
		{
			name:      "query contains text",
			assertion: Assertion{Type: AssertQueryContains, Index: 0, Text: "ORDER BY"},
			want:      `query 0 containing "ORDER BY"`,
		},
		{
			name:      "query contains index",
			assertion: Assertion{Type: AssertQueryContains, Index: 3, Text: "c"},
			want:      "Actual: only 1 queries",
		},
		{
			name:      "query parameters",
			assertion: Assertion{Type: AssertQueryParameters, Index: 0, Parameters: []Parameter{{Name: "@p0", Value: 21}}},
			want:      `Expected: [{"name":"@p0","value":21}]`,
		},
		{
			name:      "query parameters empty",
			assertion: Assertion{Type: AssertQueryParameters, Index: 0},
			want:      "Expected: []",
		},
		{
			name:      "log contains",
			assertion: Assertion{Type: AssertLogContains, Level: "warn", Message: "slow"},
			want:      `warn log "slow"`,
		},
		{
			name:      "unknown type",
			assertion: Assertion{Type: "trace_order"},
			want:      `assertion[0]: unknown assertion type "trace_order"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(tracedResult(), []Assertion{tt.assertion}, &testutil.RecordingLogger{})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestEvaluateAssertions_LogWithoutLogger(t *testing.T) {
	errs := EvaluateAssertions(tracedResult(), []Assertion{
		{Type: AssertLogContains, Level: "info", Message: "x"},
	}, nil)
	assert.Equal(t, []string{"assertion[0]: log_contains requires a logger"}, errs)
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	r := tracedResult()
	r.addFailure(errors.New("throttled"))

	err := &AssertionError{
		Type:     AssertQueryCount,
		Expected: "2 queries",
		Actual:   "1 queries",
		Trace:    r.Trace,
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: query_count")
	assert.Contains(t, msg, "[1] FetchAll SELECT * FROM c WHERE c.age > @p0")
	assert.Contains(t, msg, "[2] 0 item(s)")
	assert.Contains(t, msg, "[3] error: throttled")
}

func TestCheckExpect_FetchResult(t *testing.T) {
	token := "next"
	more := false

	r := NewResult()
	r.Output = querybuilder.FetchResult[map[string]any]{
		Items:             []map[string]any{{"id": "a", "age": 30.0}},
		ContinuationToken: "tok",
		HasMoreResults:    true,
		Count:             1,
		TotalCount:        1,
	}
	checkExpect(r, &Scenario{Expect: &ExpectClause{
		TotalCount:        intPtr(2),
		ContinuationToken: &token,
		HasMoreResults:    &more,
		Items:             []map[string]any{{"age": 30}},
	}})

	assert.Equal(t, []string{
		"total_count: expected 2, got 1",
		`continuation_token: expected "next", got "tok"`,
		"has_more_results: expected false, got true",
	}, r.Errors)
}

func TestCheckExpect_ExtraItems(t *testing.T) {
	r := NewResult()
	r.Output = querybuilder.FetchResult[map[string]any]{
		Items: []map[string]any{{"id": "a"}, {"id": "b"}},
		Count: 2,
	}
	checkExpect(r, &Scenario{Expect: &ExpectClause{
		Items: []map[string]any{{"id": "a"}},
	}})

	assert.Equal(t, []string{"items: expected 1, got 2"}, r.Errors)
}

func TestCheckExpect_ErrorMismatch(t *testing.T) {
	r := NewResult()
	r.Err = errors.New("request timeout")
	checkExpect(r, &Scenario{Expect: &ExpectClause{Error: "throttled"}})

	assert.Equal(t, []string{`expected error containing "throttled", got "request timeout"`}, r.Errors)
}

func TestCheckExpect_FetchOneMissing(t *testing.T) {
	r := NewResult()
	checkExpect(r, &Scenario{Expect: &ExpectClause{
		Items: []map[string]any{{"id": "a"}},
	}})

	assert.Equal(t, []string{"expected an item, got none"}, r.Errors)
}

func TestMatchFields(t *testing.T) {
	actual := map[string]any{
		"id":   "a",
		"age":  30.0,
		"tags": []any{"x", "y"},
		"name": map[string]any{"givenName": "Ann"},
	}

	assert.True(t, matchFields(actual, map[string]any{"id": "a"}))
	assert.True(t, matchFields(actual, map[string]any{"age": 30}))
	assert.True(t, matchFields(actual, map[string]any{"tags": []any{"x", "y"}}))
	assert.True(t, matchFields(actual, map[string]any{"name": map[string]any{"givenName": "Ann"}}))
	assert.False(t, matchFields(actual, map[string]any{"id": "b"}))
	assert.False(t, matchFields(actual, map[string]any{"email": "a@example.com"}))
}
