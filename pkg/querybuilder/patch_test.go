package querybuilder_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qb "github.com/roach88/docquery/pkg/querybuilder"
)

func TestPatch_Operations(t *testing.T) {
	b := qb.New[Person]()
	req, err := b.Patch(
		qb.Set("/name/givenName", "Johnny"),
		qb.Add("/bones/-", "rib"),
		qb.Replace("/age", 31),
		qb.Remove("/email"),
	)
	require.NoError(t, err)

	assert.Equal(t, []qb.PatchOperation{
		{Op: qb.PatchSet, Path: "/name/givenName", Value: "Johnny"},
		{Op: qb.PatchAdd, Path: "/bones/-", Value: "rib"},
		{Op: qb.PatchReplace, Path: "/age", Value: 31},
		{Op: qb.PatchRemove, Path: "/email"},
	}, req.Operations)
}

func TestPatch_RemoveDropsValue(t *testing.T) {
	b := qb.New[Person]()
	req, err := b.Patch(qb.PatchOperation{Op: qb.PatchRemove, Path: "/email", Value: "ignored"})
	require.NoError(t, err)

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"operations":[{"op":"remove","path":"/email"}]}`, string(raw))
}

func TestPatch_ValueRequired(t *testing.T) {
	for _, op := range []qb.PatchOp{qb.PatchSet, qb.PatchAdd, qb.PatchReplace} {
		t.Run(string(op), func(t *testing.T) {
			b := qb.New[Person]()
			_, err := b.Patch(qb.PatchOperation{Op: op, Path: "/email"})

			assert.ErrorIs(t, err, qb.ErrValueRequired)
			assert.EqualError(t, err, "value is required for operation: "+string(op))
		})
	}
}

func TestPatch_ExplicitNullIsAValue(t *testing.T) {
	b := qb.New[Person]()
	req, err := b.Patch(qb.Set("/deleted", qb.Null))
	require.NoError(t, err)

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"operations":[{"op":"set","path":"/deleted","value":null}]}`, string(raw))
}

func TestPatch_UnknownOp(t *testing.T) {
	b := qb.New[Person]()
	_, err := b.Patch(qb.PatchOperation{Op: "move", Path: "/email", Value: "x"})

	assert.ErrorIs(t, err, qb.ErrUnknownPatchOp)
}

func TestPatch_DoesNotTouchQuery(t *testing.T) {
	b := qb.New[Person]()
	b.Where("age", qb.Gt, 18)

	_, err := b.Patch(qb.Set("/age", 19))
	require.NoError(t, err)

	assert.Len(t, b.Parameters(), 1)
	assert.Len(t, b.Predicates(), 1)
}

func TestPatch_PathValidation(t *testing.T) {
	b := qb.New[Person](qb.WithPathValidation())

	_, err := b.Patch(qb.Set("/name/givenName", "x"), qb.Add("/bones/-", "rib"))
	require.NoError(t, err)

	_, err = b.Patch(qb.Set("/name/middleName", "x"))
	assert.ErrorIs(t, err, qb.ErrUnknownPath)
}
