package harness

import (
	"github.com/roach88/docquery/pkg/querybuilder"
)

// Trace event types.
const (
	EventQuery    = "query"
	EventResponse = "response"
	EventError    = "error"
)

// TraceEvent is one query sent to the container or one outcome of it.
type TraceEvent struct {
	Type string `json:"type"` // "query", "response" or "error"
	Seq  int64  `json:"seq"`

	// Query events.
	Method     string                   `json:"method,omitempty"` // FetchNext or FetchAll
	Query      string                   `json:"query,omitempty"`
	Parameters []querybuilder.Parameter `json:"parameters,omitempty"`
	PageSize   int                      `json:"page_size,omitempty"`

	// ContinuationToken is the requested token on query events and the
	// returned token on response events.
	ContinuationToken string `json:"continuation_token,omitempty"`

	// Response events.
	Items   int  `json:"items,omitempty"`
	HasMore bool `json:"has_more,omitempty"`

	// Error events.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when the expect clause and every assertion held.
	Pass bool `json:"pass"`

	// Trace lists queries and their outcomes in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Output is the FetchResult of a fetch-all scenario, or the single item
	// of a fetch-one scenario. Nil when execution failed.
	Output any `json:"output,omitempty"`

	// Err is the execution error, if any.
	Err error `json:"-"`

	seq int64
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Queries returns the query events of the trace.
func (r *Result) Queries() []TraceEvent {
	var out []TraceEvent
	for _, e := range r.Trace {
		if e.Type == EventQuery {
			out = append(out, e)
		}
	}
	return out
}

func (r *Result) next() int64 {
	r.seq++
	return r.seq
}

func (r *Result) addQuery(method string, spec querybuilder.QuerySpec, opts *querybuilder.QueryOptions) {
	e := TraceEvent{
		Type:       EventQuery,
		Seq:        r.next(),
		Method:     method,
		Query:      spec.Query,
		Parameters: spec.Parameters,
	}
	if opts != nil {
		e.PageSize = opts.MaxItemCount
		e.ContinuationToken = opts.ContinuationToken
	}
	r.Trace = append(r.Trace, e)
}

func (r *Result) addResponse(page querybuilder.FeedResponse) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:              EventResponse,
		Seq:               r.next(),
		ContinuationToken: page.ContinuationToken,
		Items:             len(page.Resources),
		HasMore:           page.HasMoreResults,
	})
}

func (r *Result) addFailure(err error) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:  EventError,
		Seq:   r.next(),
		Error: err.Error(),
	})
}
