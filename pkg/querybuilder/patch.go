package querybuilder

import "fmt"

// PatchOp is a partial-update operation kind.
type PatchOp string

const (
	PatchSet     PatchOp = "set"
	PatchAdd     PatchOp = "add"
	PatchReplace PatchOp = "replace"
	PatchRemove  PatchOp = "remove"
)

// PatchOperation is one step of a partial update. Path is slash-delimited,
// e.g. "/name/givenName" or "/bones/-" to append to an array.
type PatchOperation struct {
	Op    PatchOp `json:"op" yaml:"op"`
	Path  string  `json:"path" yaml:"path"`
	Value any     `json:"value,omitempty" yaml:"value,omitempty"`
}

// PatchRequest is the patch document sent to the container.
type PatchRequest struct {
	Operations []PatchOperation `json:"operations"`
}

// Remove returns a remove operation for path.
func Remove(path string) PatchOperation {
	return PatchOperation{Op: PatchRemove, Path: path}
}

// Set returns a set operation for path.
func Set(path string, value any) PatchOperation {
	return PatchOperation{Op: PatchSet, Path: path, Value: value}
}

// Add returns an add operation for path.
func Add(path string, value any) PatchOperation {
	return PatchOperation{Op: PatchAdd, Path: path, Value: value}
}

// Replace returns a replace operation for path.
func Replace(path string, value any) PatchOperation {
	return PatchOperation{Op: PatchReplace, Path: path, Value: value}
}

// Patch builds a patch document. Remove operations carry no value; set, add
// and replace must have one. Patch does not touch the builder's query state.
func (b *Builder[T]) Patch(ops ...PatchOperation) (PatchRequest, error) {
	out := make([]PatchOperation, 0, len(ops))
	for _, op := range ops {
		if b.paths != nil {
			if err := b.paths.CheckPatch(op.Path); err != nil {
				return PatchRequest{}, err
			}
		}

		switch op.Op {
		case PatchRemove:
			out = append(out, PatchOperation{Op: op.Op, Path: op.Path})
		case PatchSet, PatchAdd, PatchReplace:
			if isUndefined(op.Value) {
				return PatchRequest{}, fmt.Errorf("%w: %s", ErrValueRequired, op.Op)
			}
			out = append(out, PatchOperation{Op: op.Op, Path: op.Path, Value: op.Value})
		default:
			return PatchRequest{}, fmt.Errorf("%w: %q", ErrUnknownPatchOp, op.Op)
		}
	}
	return PatchRequest{Operations: out}, nil
}
