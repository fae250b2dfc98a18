package querybuilder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docquery/internal/testutil"
	qb "github.com/roach88/docquery/pkg/querybuilder"
)

var (
	idOne = uuid.MustParse("c36a5bf0-6dcd-46b5-9538-35ecc870bb9f")
	idTwo = uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
)

func adults() *qb.Builder[Person] {
	b := qb.New[Person]()
	b.Where("age", qb.Gt, 18)
	b.OrderBy("created", qb.Desc)
	b.Limit(50)
	return b
}

func TestGetAll_ItemsAndTotalCount(t *testing.T) {
	items := testutil.Page(t,
		Person{ID: idOne, Age: 30},
		Person{ID: idTwo, Age: 40},
	)
	items.ContinuationToken = "next-page"
	items.HasMoreResults = true

	container := testutil.NewStubContainer(
		testutil.StubResponse{Page: items},
		testutil.StubResponse{Page: testutil.Page(t, 10)},
	)

	result, err := adults().GetAll(context.Background(), container)
	require.NoError(t, err)

	assert.Equal(t, []Person{{ID: idOne, Age: 30}, {ID: idTwo, Age: 40}}, result.Items)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 10, result.TotalCount)
	assert.Equal(t, "next-page", result.ContinuationToken)
	assert.True(t, result.HasMoreResults)
}

func TestGetAll_CountQueryShape(t *testing.T) {
	container := testutil.NewStubContainer(
		testutil.StubResponse{Page: testutil.Page(t)},
		testutil.StubResponse{Page: testutil.Page(t, 0)},
	)

	_, err := adults().GetAll(context.Background(), container)
	require.NoError(t, err)

	calls := container.Calls()
	require.Len(t, calls, 2)

	assert.Equal(t,
		"SELECT\n  *\nFROM\n  c\nWHERE\nc.age > @p0\n\nORDER BY\n c.created DESC\nOFFSET 0\nLIMIT 50",
		calls[0].Spec.Query)
	assert.Equal(t, "FetchAll", calls[0].Method)

	assert.Equal(t,
		"SELECT\n  VALUE COUNT(1)\nFROM\n  c\nWHERE\nc.age > @p0\nOFFSET 0\nLIMIT 50",
		calls[1].Spec.Query)
	assert.Equal(t, calls[0].Spec.Parameters, calls[1].Spec.Parameters)
	assert.Nil(t, calls[1].Options)
	assert.Equal(t, "FetchAll", calls[1].Method)
}

func TestGetAll_DoesNotMutateBuilder(t *testing.T) {
	b := adults()
	before, err := b.Query()
	require.NoError(t, err)

	container := testutil.NewStubContainer(
		testutil.StubResponse{Page: testutil.Page(t)},
		testutil.StubResponse{Page: testutil.Page(t, 0)},
	)
	_, err = b.GetAll(context.Background(), container)
	require.NoError(t, err)

	after, err := b.Query()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestGetAll_EmptyCountIsZero(t *testing.T) {
	container := testutil.NewStubContainer(
		testutil.StubResponse{Page: testutil.Page(t)},
		testutil.StubResponse{Page: testutil.Page(t)},
	)

	result, err := adults().GetAll(context.Background(), container)
	require.NoError(t, err)

	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.Count)
	assert.Equal(t, 0, result.TotalCount)
}

func TestGetAll_PassesOptions(t *testing.T) {
	container := testutil.NewStubContainer(
		testutil.StubResponse{Page: testutil.Page(t)},
		testutil.StubResponse{Page: testutil.Page(t, 0)},
	)

	_, err := adults().GetAll(context.Background(), container,
		qb.WithPageSize(25),
		qb.WithContinuation("token-1"),
	)
	require.NoError(t, err)

	calls := container.Calls()
	require.NotNil(t, calls[0].Options)
	assert.Equal(t, qb.QueryOptions{ContinuationToken: "token-1", MaxItemCount: 25}, *calls[0].Options)
}

func TestGetAll_ItemFailureSkipsCount(t *testing.T) {
	boom := errors.New("service unavailable")
	logger := &testutil.RecordingLogger{}
	container := testutil.NewStubContainer(
		testutil.StubResponse{Err: boom},
		testutil.StubResponse{Page: testutil.Page(t, 0)},
	)

	b := qb.New[Person](qb.WithLogger(logger))
	b.Where("age", qb.Gt, 18)

	_, err := b.GetAll(context.Background(), container)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, container.Calls(), 1)
	assert.Equal(t, []string{"Cosmos Query Error"}, logger.Messages("error"))
}

func TestGetAll_CountFailure(t *testing.T) {
	boom := errors.New("request rate too large")
	logger := &testutil.RecordingLogger{}
	container := testutil.NewStubContainer(
		testutil.StubResponse{Page: testutil.Page(t, Person{ID: idOne})},
		testutil.StubResponse{Err: boom},
	)

	b := qb.New[Person](qb.WithLogger(logger))
	_, err := b.GetAll(context.Background(), container)

	assert.ErrorIs(t, err, boom)
	assert.Len(t, container.Calls(), 2)
	assert.Equal(t, []string{"Cosmos Count Query Error"}, logger.Messages("error"))
}

func TestGetAll_BuilderErrorIssuesNothing(t *testing.T) {
	container := testutil.NewStubContainer()

	b := qb.New[Person]()
	b.Where("age", qb.Operator("between"), 1)

	_, err := b.GetAll(context.Background(), container)
	assert.ErrorIs(t, err, qb.ErrUnknownOperator)
	assert.Empty(t, container.Calls())
}

func TestGetAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	container := testutil.NewStubContainer(
		testutil.StubResponse{Page: testutil.Page(t)},
	)

	_, err := adults().GetAll(ctx, container)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetAll_LogsResults(t *testing.T) {
	logger := &testutil.RecordingLogger{}
	container := testutil.NewStubContainer(
		testutil.StubResponse{Page: testutil.Page(t, Person{ID: idOne})},
		testutil.StubResponse{Page: testutil.Page(t, 1)},
	)

	b := qb.New[Person](qb.WithLogger(logger))
	_, err := b.GetAll(context.Background(), container)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"Cosmos Query", "Cosmos Result", "Cosmos Query"},
		logger.Messages("verbose"))
}

func TestGetAllAs_Projection(t *testing.T) {
	type givenNameCount struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	container := testutil.NewStubContainer(
		testutil.StubResponse{Page: testutil.Page(t,
			map[string]any{"name": "JOHN", "count": 3},
			map[string]any{"name": "JANE", "count": 1},
		)},
		testutil.StubResponse{Page: testutil.Page(t, 2)},
	)

	b := qb.New[Person]()
	b.Select("COUNT(1) as count, UPPER(c.name.givenName) as name")
	b.GroupBy("UPPER(c.name.givenName)")

	result, err := qb.GetAllAs[givenNameCount](context.Background(), b, container)
	require.NoError(t, err)

	assert.Equal(t, []givenNameCount{{Name: "JOHN", Count: 3}, {Name: "JANE", Count: 1}}, result.Items)
	assert.Equal(t, 2, result.TotalCount)
	assert.Contains(t, container.Calls()[1].Spec.Query, "GROUP BY\n UPPER(c.name.givenName)")
}

func TestGetAll_DecodeFailure(t *testing.T) {
	container := testutil.NewStubContainer(
		testutil.StubResponse{Page: testutil.Page(t, "not a person")},
		testutil.StubResponse{Page: testutil.Page(t, 1)},
	)

	_, err := adults().GetAll(context.Background(), container)
	assert.ErrorContains(t, err, "decode item 0")
}

func TestGetOne_FirstResource(t *testing.T) {
	container := testutil.NewStubContainer(
		testutil.StubResponse{Page: testutil.Page(t, Person{ID: idOne}, Person{ID: idTwo})},
	)

	person, err := adults().GetOne(context.Background(), container)
	require.NoError(t, err)
	require.NotNil(t, person)
	assert.Equal(t, idOne, person.ID)

	calls := container.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "FetchNext", calls[0].Method)
	assert.Nil(t, calls[0].Options)
}

func TestGetOne_NoResults(t *testing.T) {
	container := testutil.NewStubContainer(
		testutil.StubResponse{Page: testutil.Page(t)},
	)

	person, err := adults().GetOne(context.Background(), container)
	require.NoError(t, err)
	assert.Nil(t, person)
}

func TestGetOne_PropagatesError(t *testing.T) {
	boom := errors.New("not found")
	container := testutil.NewStubContainer(testutil.StubResponse{Err: boom})

	_, err := adults().GetOne(context.Background(), container)
	assert.ErrorIs(t, err, boom)
}
