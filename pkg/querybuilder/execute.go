package querybuilder

import (
	"context"
	"encoding/json"
	"fmt"
)

// FeedResponse is one page, or all pages merged, of a query execution.
type FeedResponse struct {
	Resources         []json.RawMessage `json:"resources"`
	ContinuationToken string            `json:"continuationToken,omitempty"`
	HasMoreResults    bool              `json:"hasMoreResults"`
}

// QueryOptions are passed through to the container.
type QueryOptions struct {
	// ContinuationToken resumes a previous execution.
	ContinuationToken string
	// MaxItemCount caps the items per page. Zero leaves it to the container.
	MaxItemCount int
}

// ItemIterator fetches the results of one query.
type ItemIterator interface {
	// FetchNext returns a single page.
	FetchNext(ctx context.Context) (FeedResponse, error)
	// FetchAll returns every remaining page merged into one response.
	FetchAll(ctx context.Context) (FeedResponse, error)
}

// Container executes rendered queries. It is the only way the builder
// reaches a database.
type Container interface {
	Query(spec QuerySpec, opts *QueryOptions) ItemIterator
}

// FetchResult is the outcome of GetAll.
type FetchResult[T any] struct {
	Items             []T    `json:"items"`
	ContinuationToken string `json:"continuationToken"`
	HasMoreResults    bool   `json:"hasMoreResults"`
	// Count is the number of items in this result.
	Count int `json:"count"`
	// TotalCount is the number of documents matching the filters, from a
	// separate COUNT query.
	TotalCount int `json:"totalCount"`
}

// FetchOption configures GetAll.
type FetchOption func(*QueryOptions)

// WithPageSize sets the container's max item count per page.
func WithPageSize(n int) FetchOption {
	return func(o *QueryOptions) {
		o.MaxItemCount = n
	}
}

// WithContinuation resumes from a token returned by an earlier GetAll.
func WithContinuation(token string) FetchOption {
	return func(o *QueryOptions) {
		o.ContinuationToken = token
	}
}

// GetOne returns the first document of the first page, or nil when there is none.
func (b *Builder[T]) GetOne(ctx context.Context, c Container) (*T, error) {
	return GetOneAs[T](ctx, b, c)
}

// GetAll fetches every page of the query and then the total count.
//
// The count query reuses the join, filters, grouping and limit with a
// VALUE COUNT(1) projection and no ordering. It is derived from a snapshot,
// so the builder still renders the original query afterwards. Fetches are
// sequential; if the item fetch fails the count is never issued.
func (b *Builder[T]) GetAll(ctx context.Context, c Container, opts ...FetchOption) (FetchResult[T], error) {
	return GetAllAs[T](ctx, b, c, opts...)
}

// GetOneAs is GetOne decoding into a projection type S, for use with Select.
func GetOneAs[S, T any](ctx context.Context, b *Builder[T], c Container) (*S, error) {
	spec, err := b.Query()
	if err != nil {
		return nil, err
	}

	page, err := c.Query(spec, nil).FetchNext(ctx)
	if err != nil {
		return nil, err
	}
	b.logger.Verbose("Cosmos Result", "result", page)

	if len(page.Resources) == 0 {
		return nil, nil
	}
	var item S
	if err := json.Unmarshal(page.Resources[0], &item); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return &item, nil
}

// GetAllAs is GetAll decoding into a projection type S, for use with Select.
func GetAllAs[S, T any](ctx context.Context, b *Builder[T], c Container, opts ...FetchOption) (FetchResult[S], error) {
	if b.err != nil {
		return FetchResult[S]{}, b.err
	}

	var qo QueryOptions
	for _, opt := range opts {
		opt(&qo)
	}

	state := b.snapshot()
	items, err := c.Query(b.render(state), &qo).FetchAll(ctx)
	if err != nil {
		b.logger.Error("Cosmos Query Error", "error", err)
		return FetchResult[S]{}, err
	}
	b.logger.Verbose("Cosmos Result", "result", items)

	count, err := c.Query(b.render(state.countForm()), nil).FetchAll(ctx)
	if err != nil {
		b.logger.Error("Cosmos Count Query Error", "error", err)
		return FetchResult[S]{}, err
	}

	decoded, err := decodeAll[S](items.Resources)
	if err != nil {
		return FetchResult[S]{}, err
	}
	total, err := firstCount(count.Resources)
	if err != nil {
		return FetchResult[S]{}, err
	}

	return FetchResult[S]{
		Items:             decoded,
		ContinuationToken: items.ContinuationToken,
		HasMoreResults:    items.HasMoreResults,
		Count:             len(decoded),
		TotalCount:        total,
	}, nil
}

func decodeAll[S any](resources []json.RawMessage) ([]S, error) {
	out := make([]S, 0, len(resources))
	for i, raw := range resources {
		var item S
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode item %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// firstCount reads the scalar of a VALUE COUNT(1) page; no rows means zero.
func firstCount(resources []json.RawMessage) (int, error) {
	if len(resources) == 0 {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(resources[0], &n); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	return n, nil
}
