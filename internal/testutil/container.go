package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/roach88/docquery/pkg/querybuilder"
)

// StubResponse is the scripted outcome of one query execution.
type StubResponse struct {
	Page querybuilder.FeedResponse
	Err  error
}

// StubCall records one query handed to a StubContainer.
type StubCall struct {
	Spec    querybuilder.QuerySpec
	Options *querybuilder.QueryOptions
	// Method is "FetchNext" or "FetchAll" once the iterator was used.
	Method string
}

// StubContainer serves scripted responses in order, one per Query call, and
// records every query it receives. Running out of responses is an error.
//
// Thread-safety: all methods are safe for concurrent use.
type StubContainer struct {
	mu        sync.Mutex
	responses []StubResponse
	calls     []StubCall
}

// NewStubContainer creates a container that answers with responses in order.
func NewStubContainer(responses ...StubResponse) *StubContainer {
	return &StubContainer{responses: responses}
}

// Query implements querybuilder.Container.
func (s *StubContainer) Query(spec querybuilder.QuerySpec, opts *querybuilder.QueryOptions) querybuilder.ItemIterator {
	s.mu.Lock()
	defer s.mu.Unlock()

	var resp StubResponse
	if len(s.responses) == 0 {
		resp.Err = fmt.Errorf("stub container: no response scripted for query %d", len(s.calls))
	} else {
		resp = s.responses[0]
		s.responses = s.responses[1:]
	}
	s.calls = append(s.calls, StubCall{Spec: spec, Options: opts})
	return &stubIterator{owner: s, index: len(s.calls) - 1, resp: resp}
}

// Calls returns the queries received so far.
func (s *StubContainer) Calls() []StubCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StubCall(nil), s.calls...)
}

type stubIterator struct {
	owner *StubContainer
	index int
	resp  StubResponse
}

func (it *stubIterator) FetchNext(ctx context.Context) (querybuilder.FeedResponse, error) {
	return it.fetch(ctx, "FetchNext")
}

func (it *stubIterator) FetchAll(ctx context.Context) (querybuilder.FeedResponse, error) {
	return it.fetch(ctx, "FetchAll")
}

func (it *stubIterator) fetch(ctx context.Context, method string) (querybuilder.FeedResponse, error) {
	it.owner.mu.Lock()
	it.owner.calls[it.index].Method = method
	it.owner.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return querybuilder.FeedResponse{}, err
	}
	return it.resp.Page, it.resp.Err
}

// Page builds a FeedResponse whose resources are the JSON encodings of items.
func Page(t testing.TB, items ...any) querybuilder.FeedResponse {
	t.Helper()
	resources := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			t.Fatalf("marshal page item: %v", err)
		}
		resources = append(resources, raw)
	}
	return querybuilder.FeedResponse{Resources: resources}
}

var _ querybuilder.Container = (*StubContainer)(nil)
