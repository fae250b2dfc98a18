package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/docquery/internal/canonical"
	"github.com/roach88/docquery/internal/querydef"
	"github.com/roach88/docquery/internal/replay"
	"github.com/roach88/docquery/internal/store"
	"github.com/roach88/docquery/internal/testutil"
	"github.com/roach88/docquery/pkg/querybuilder"
)

// Harness executes one scenario.
type Harness struct {
	scenario *Scenario
	def      *querydef.Definition
	store    *store.Store
	logger   *testutil.RecordingLogger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database, so recordings
// never leak between scenarios.
//
// Execution flow:
// 1. Load the query definition
// 2. Execute it through a Recorder over the scripted responses
// 3. Validate the expect clause and assertions
// 4. With replay set, execute again from the recording and compare
//
// The returned error is reserved for harness failures (unreadable
// definition, database setup). Query failures are part of the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	def, err := querydef.Load(scenario.Definition)
	if err != nil {
		return nil, fmt.Errorf("failed to load definition: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	responses, err := stubResponses(scenario.Responses)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		scenario: scenario,
		def:      def,
		store:    st,
		logger:   &testutil.RecordingLogger{},
	}

	rec, err := replay.NewRecorder(ctx, testutil.NewStubContainer(responses...), st,
		replay.WithIDGenerator(testutil.NewSequentialIDs(scenario.Name)),
		replay.WithLabel(scenario.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start recording: %w", err)
	}

	result := NewResult()
	result.Output, result.Err = h.execute(ctx, rec, result)

	checkExpect(result, scenario)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h.logger) {
		result.AddError(msg)
	}

	if scenario.Replay && result.Err == nil {
		h.checkReplay(ctx, result)
	}

	return result, nil
}

// execute applies the definition to a fresh builder and fetches through
// c, tracing every query into result.
func (h *Harness) execute(ctx context.Context, c querybuilder.Container, result *Result) (any, error) {
	b := querybuilder.New[map[string]any](querybuilder.WithLogger(h.logger))
	if err := querydef.Apply(h.def, b); err != nil {
		return nil, err
	}

	traced := &tracingContainer{inner: c, result: result}

	if h.scenario.Fetch == FetchOne {
		item, err := b.GetOne(ctx, traced)
		if err != nil || item == nil {
			return nil, err
		}
		return *item, nil
	}

	var opts []querybuilder.FetchOption
	if h.scenario.PageSize > 0 {
		opts = append(opts, querybuilder.WithPageSize(h.scenario.PageSize))
	}
	if h.scenario.Continuation != "" {
		opts = append(opts, querybuilder.WithContinuation(h.scenario.Continuation))
	}
	out, err := b.GetAll(ctx, traced, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// checkReplay executes the scenario again from the recording. The output
// must match the live run byte for byte in canonical form.
func (h *Harness) checkReplay(ctx context.Context, live *Result) {
	replayed := NewResult()
	out, err := h.execute(ctx, replay.NewReplayer(h.store), replayed)
	if err != nil {
		live.AddError(fmt.Sprintf("replay failed: %v", err))
		return
	}

	want, err := canonical.Marshal(live.Output)
	if err != nil {
		live.AddError(fmt.Sprintf("replay: marshal live output: %v", err))
		return
	}
	got, err := canonical.Marshal(out)
	if err != nil {
		live.AddError(fmt.Sprintf("replay: marshal replayed output: %v", err))
		return
	}
	if string(want) != string(got) {
		live.AddError(fmt.Sprintf("replay: output differs from live run\n  live:     %s\n  replayed: %s", want, got))
	}
	if len(replayed.Trace) != len(live.Trace) {
		live.AddError(fmt.Sprintf("replay: %d trace events, live run had %d", len(replayed.Trace), len(live.Trace)))
	}
}

// stubResponses converts scripted responses to container pages.
func stubResponses(responses []Response) ([]testutil.StubResponse, error) {
	out := make([]testutil.StubResponse, 0, len(responses))
	for i, r := range responses {
		if r.Error != "" {
			out = append(out, testutil.StubResponse{Err: errors.New(r.Error)})
			continue
		}

		page := querybuilder.FeedResponse{
			Resources:         make([]json.RawMessage, 0, len(r.Resources)),
			ContinuationToken: r.ContinuationToken,
			HasMoreResults:    r.HasMoreResults,
		}
		for j, res := range r.Resources {
			raw, err := json.Marshal(res)
			if err != nil {
				return nil, fmt.Errorf("response %d resource %d: %w", i, j, err)
			}
			page.Resources = append(page.Resources, raw)
		}
		out = append(out, testutil.StubResponse{Page: page})
	}
	return out, nil
}

// tracingContainer records queries and their outcomes in a Result.
type tracingContainer struct {
	inner  querybuilder.Container
	result *Result
}

func (c *tracingContainer) Query(spec querybuilder.QuerySpec, opts *querybuilder.QueryOptions) querybuilder.ItemIterator {
	return &tracingIterator{
		inner:  c.inner.Query(spec, opts),
		result: c.result,
		spec:   spec,
		opts:   opts,
	}
}

type tracingIterator struct {
	inner  querybuilder.ItemIterator
	result *Result
	spec   querybuilder.QuerySpec
	opts   *querybuilder.QueryOptions
}

func (it *tracingIterator) FetchNext(ctx context.Context) (querybuilder.FeedResponse, error) {
	it.result.addQuery("FetchNext", it.spec, it.opts)
	return it.trace(it.inner.FetchNext(ctx))
}

func (it *tracingIterator) FetchAll(ctx context.Context) (querybuilder.FeedResponse, error) {
	it.result.addQuery("FetchAll", it.spec, it.opts)
	return it.trace(it.inner.FetchAll(ctx))
}

func (it *tracingIterator) trace(page querybuilder.FeedResponse, err error) (querybuilder.FeedResponse, error) {
	if err != nil {
		it.result.addFailure(err)
		return page, err
	}
	it.result.addResponse(page)
	return page, nil
}
