package cosmos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/roach88/docquery/pkg/querybuilder"
)

// patchAppender is the part of azcosmos.PatchOperations a patch is built with.
type patchAppender interface {
	AppendSet(path string, value any)
	AppendAdd(path string, value any)
	AppendReplace(path string, value any)
	AppendRemove(path string)
}

// appendPatch copies the operations of req onto ops in order.
func appendPatch(ops patchAppender, req querybuilder.PatchRequest) error {
	for i, op := range req.Operations {
		switch op.Op {
		case querybuilder.PatchSet:
			ops.AppendSet(op.Path, op.Value)
		case querybuilder.PatchAdd:
			ops.AppendAdd(op.Path, op.Value)
		case querybuilder.PatchReplace:
			ops.AppendReplace(op.Path, op.Value)
		case querybuilder.PatchRemove:
			ops.AppendRemove(op.Path)
		default:
			return fmt.Errorf("operation %d: %w: %q", i, querybuilder.ErrUnknownPatchOp, op.Op)
		}
	}
	return nil
}

// Patch applies req to the document id in partition partitionKey and
// returns the updated document.
func (c *Container) Patch(ctx context.Context, partitionKey, id string, req querybuilder.PatchRequest) (json.RawMessage, error) {
	var ops azcosmos.PatchOperations
	if err := appendPatch(&ops, req); err != nil {
		return nil, fmt.Errorf("cosmos patch %s: %w", id, err)
	}

	resp, err := c.client.PatchItem(ctx, azcosmos.NewPartitionKeyString(partitionKey), id, ops,
		&azcosmos.ItemOptions{EnableContentResponseOnWrite: true})
	if err != nil {
		return nil, fmt.Errorf("cosmos patch %s: %w", id, err)
	}
	return json.RawMessage(resp.Value), nil
}
