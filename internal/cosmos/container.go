// Package cosmos runs builder queries and patches against Azure Cosmos DB
// through the azcosmos SDK.
package cosmos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/roach88/docquery/pkg/querybuilder"
)

// Option configures a Container.
type Option func(*Container)

// WithPartitionKey scopes queries to one logical partition. Without it,
// queries run across partitions.
func WithPartitionKey(value string) Option {
	return func(c *Container) {
		c.partitionKey = azcosmos.NewPartitionKeyString(value)
	}
}

// Container adapts an azcosmos container client to querybuilder.Container.
type Container struct {
	client       *azcosmos.ContainerClient
	partitionKey azcosmos.PartitionKey
}

// Connect opens the container database/container with a connection string
// of the form "AccountEndpoint=...;AccountKey=...;".
func Connect(connectionString, database, container string, opts ...Option) (*Container, error) {
	client, err := azcosmos.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("cosmos connect: %w", err)
	}
	cc, err := client.NewContainer(database, container)
	if err != nil {
		return nil, fmt.Errorf("cosmos container %s/%s: %w", database, container, err)
	}
	return New(cc, opts...), nil
}

// New wraps an existing container client.
func New(client *azcosmos.ContainerClient, opts ...Option) *Container {
	c := &Container{client: client, partitionKey: azcosmos.NewPartitionKey()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query implements querybuilder.Container.
func (c *Container) Query(spec querybuilder.QuerySpec, opts *querybuilder.QueryOptions) querybuilder.ItemIterator {
	pager := c.client.NewQueryItemsPager(spec.Query, c.partitionKey, queryOptions(spec, opts))
	return &pagerIterator{pager: pager}
}

// queryOptions converts a rendered spec and paging options to the SDK form.
func queryOptions(spec querybuilder.QuerySpec, opts *querybuilder.QueryOptions) *azcosmos.QueryOptions {
	qo := &azcosmos.QueryOptions{
		QueryParameters: make([]azcosmos.QueryParameter, 0, len(spec.Parameters)),
	}
	for _, p := range spec.Parameters {
		qo.QueryParameters = append(qo.QueryParameters, azcosmos.QueryParameter{Name: p.Name, Value: p.Value})
	}
	if opts != nil {
		if opts.ContinuationToken != "" {
			token := opts.ContinuationToken
			qo.ContinuationToken = &token
		}
		if opts.MaxItemCount > 0 {
			qo.PageSizeHint = int32(opts.MaxItemCount)
		}
	}
	return qo
}

type pagerIterator struct {
	pager *runtime.Pager[azcosmos.QueryItemsResponse]
}

func (it *pagerIterator) FetchNext(ctx context.Context) (querybuilder.FeedResponse, error) {
	if !it.pager.More() {
		return querybuilder.FeedResponse{Resources: []json.RawMessage{}}, nil
	}
	resp, err := it.pager.NextPage(ctx)
	if err != nil {
		return querybuilder.FeedResponse{}, err
	}
	return feedResponse(resp.Items, resp.ContinuationToken, it.pager.More()), nil
}

func (it *pagerIterator) FetchAll(ctx context.Context) (querybuilder.FeedResponse, error) {
	all := querybuilder.FeedResponse{Resources: []json.RawMessage{}}
	for it.pager.More() {
		resp, err := it.pager.NextPage(ctx)
		if err != nil {
			return querybuilder.FeedResponse{}, err
		}
		page := feedResponse(resp.Items, resp.ContinuationToken, it.pager.More())
		all.Resources = append(all.Resources, page.Resources...)
		all.ContinuationToken = page.ContinuationToken
		all.HasMoreResults = page.HasMoreResults
	}
	return all, nil
}

func feedResponse(items [][]byte, continuation *string, more bool) querybuilder.FeedResponse {
	out := querybuilder.FeedResponse{
		Resources:      make([]json.RawMessage, 0, len(items)),
		HasMoreResults: more,
	}
	for _, item := range items {
		out.Resources = append(out.Resources, json.RawMessage(item))
	}
	if continuation != nil {
		out.ContinuationToken = *continuation
	}
	return out
}

var _ querybuilder.Container = (*Container)(nil)
