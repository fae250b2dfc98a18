package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/docquery/internal/canonical"
	"github.com/roach88/docquery/internal/store"
	"github.com/roach88/docquery/pkg/querybuilder"
)

// ErrExhausted is returned by FetchNext once every recorded page was served.
var ErrExhausted = errors.New("replay: no more recorded pages")

// Replayer is a Container that answers queries from recordings, without a
// network connection. A query that was never recorded fails with an error
// wrapping store.ErrNotRecorded.
type Replayer struct {
	store  *store.Store
	logger querybuilder.Logger
}

// ReplayerOption configures a Replayer.
type ReplayerOption func(*Replayer)

// WithReplayerLogger sets the logger for replay events.
func WithReplayerLogger(l querybuilder.Logger) ReplayerOption {
	return func(r *Replayer) {
		r.logger = l
	}
}

// NewReplayer returns a Replayer reading from st.
func NewReplayer(st *store.Store, opts ...ReplayerOption) *Replayer {
	r := &Replayer{store: st, logger: querybuilder.NopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Query implements querybuilder.Container.
func (r *Replayer) Query(spec querybuilder.QuerySpec, opts *querybuilder.QueryOptions) querybuilder.ItemIterator {
	return &replayIterator{owner: r, spec: spec, opts: optionsValue(opts)}
}

type replayIterator struct {
	owner *Replayer
	spec  querybuilder.QuerySpec
	opts  querybuilder.QueryOptions

	// next is loaded on the first FetchNext and served in order.
	next   []store.Page
	loaded bool
	cursor int
}

func (it *replayIterator) FetchNext(ctx context.Context) (querybuilder.FeedResponse, error) {
	if !it.loaded {
		pages, err := it.read(ctx, store.MethodNext)
		if err != nil {
			return querybuilder.FeedResponse{}, err
		}
		it.next = pages
		it.loaded = true
	}
	if it.cursor >= len(it.next) {
		return querybuilder.FeedResponse{}, ErrExhausted
	}
	page := it.next[it.cursor]
	it.cursor++
	return page.Response, nil
}

// FetchAll serves the recorded FetchAll response. Pages of a recording are
// merged in order, keeping the paging state of the last one.
func (it *replayIterator) FetchAll(ctx context.Context) (querybuilder.FeedResponse, error) {
	pages, err := it.read(ctx, store.MethodAll)
	if err != nil {
		return querybuilder.FeedResponse{}, err
	}

	merged := querybuilder.FeedResponse{Resources: []json.RawMessage{}}
	for _, p := range pages {
		merged.Resources = append(merged.Resources, p.Response.Resources...)
		merged.ContinuationToken = p.Response.ContinuationToken
		merged.HasMoreResults = p.Response.HasMoreResults
	}
	return merged, nil
}

func (it *replayIterator) read(ctx context.Context, method store.Method) ([]store.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := canonical.QueryKey(it.spec, it.opts)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	pages, err := it.owner.store.ReadPages(ctx, key, method)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	it.owner.logger.Debug("Replaying query", "key", key, "method", string(method), "pages", len(pages))
	return pages, nil
}

var _ querybuilder.Container = (*Replayer)(nil)
