package querybuilder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qb "github.com/roach88/docquery/pkg/querybuilder"
)

func TestWhere_Comparison(t *testing.T) {
	b := qb.New[Person]()
	b.Where("age", qb.Gt, 18)

	spec, err := b.Query()
	require.NoError(t, err)

	assert.Contains(t, spec.Query, "c.age > @p0")
	assert.Equal(t, []qb.Parameter{{Name: "@p0", Value: 18}}, spec.Parameters)
}

func TestWhere_OperatorSymbols(t *testing.T) {
	testCases := []struct {
		op   qb.Operator
		want string
	}{
		{qb.Eq, "c.age = @p0"},
		{qb.Ne, "c.age != @p0"},
		{qb.Ge, "c.age >= @p0"},
		{qb.Gt, "c.age > @p0"},
		{qb.Le, "c.age <= @p0"},
		{qb.Lt, "c.age < @p0"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.op), func(t *testing.T) {
			b := qb.New[Person]()
			b.Where("age", tc.op, 30)

			assert.Equal(t, []string{tc.want}, b.Predicates())
			assert.Len(t, b.Parameters(), 1)
		})
	}
}

func TestWhere_IsNull(t *testing.T) {
	b := qb.New[Person]()
	b.Where("deleted", qb.IsNull, nil)

	assert.Equal(t, []string{"(c.deleted ?? null) = null"}, b.Predicates())
	assert.Empty(t, b.Parameters())
}

func TestWhere_IsNullIgnoresValue(t *testing.T) {
	b := qb.New[Person]()
	b.Where("deleted", qb.IsNull, "ignored")

	assert.Equal(t, []string{"(c.deleted ?? null) = null"}, b.Predicates())
	assert.Empty(t, b.Parameters())
}

func TestWhere_Contains(t *testing.T) {
	b := qb.New[Person]()
	b.Where("bones", qb.Contains, "arm")

	assert.Equal(t, []string{"ARRAY_CONTAINS(c.bones, @p0)"}, b.Predicates())
	assert.Equal(t, []qb.Parameter{{Name: "@p0", Value: "arm"}}, b.Parameters())
}

func TestWhere_In(t *testing.T) {
	b := qb.New[Person]()
	b.Where("name.givenName", qb.In, []string{"John", "Smith"})

	assert.Equal(t, []string{"ARRAY_CONTAINS(@p0, c.name.givenName)"}, b.Predicates())
	assert.Equal(t, []qb.Parameter{{Name: "@p0", Value: []string{"John", "Smith"}}}, b.Parameters())
}

func TestWhere_InRequiresSlice(t *testing.T) {
	b := qb.New[Person]()
	b.Where("sex", qb.In, "Male")

	assert.Empty(t, b.Predicates())
	assert.Empty(t, b.Parameters())
	assert.ErrorIs(t, b.Err(), qb.ErrUnhandledType)

	_, err := b.Query()
	assert.ErrorIs(t, err, qb.ErrUnhandledType)
}

func TestWhere_UndefinedValueSkips(t *testing.T) {
	var missing *string
	var nilSlice []string

	testCases := []struct {
		name  string
		op    qb.Operator
		value any
	}{
		{"contains nil", qb.Contains, nil},
		{"in nil slice", qb.In, nilSlice},
		{"eq nil", qb.Eq, nil},
		{"eq nil pointer", qb.Eq, missing},
		{"lt nil", qb.Lt, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := qb.New[Person]()
			b.Where("bones", tc.op, tc.value)
			b.Where("bones", tc.op, tc.value)

			assert.Empty(t, b.Predicates())
			assert.Empty(t, b.Parameters())
			assert.NoError(t, b.Err())
		})
	}
}

func TestWhere_ExplicitNull(t *testing.T) {
	b := qb.New[Person]()
	b.Where("email", qb.Eq, qb.Null)

	assert.Equal(t, []string{"c.email = @p0"}, b.Predicates())
	assert.Equal(t, []qb.Parameter{{Name: "@p0", Value: nil}}, b.Parameters())
}

func TestWhere_PointerValueIsDereferenced(t *testing.T) {
	b := qb.New[Person]()
	b.Where("email", qb.Eq, qb.Ptr("a@example.com"))

	assert.Equal(t, []qb.Parameter{{Name: "@p0", Value: "a@example.com"}}, b.Parameters())
}

func TestWhere_UnknownOperator(t *testing.T) {
	b := qb.New[Person]()
	b.Where("age", qb.Operator("between"), 5)
	b.Where("age", qb.Gt, 18)

	assert.ErrorIs(t, b.Err(), qb.ErrUnknownOperator)
	assert.Equal(t, []string{"c.age > @p0"}, b.Predicates())

	_, err := b.Query()
	assert.ErrorIs(t, err, qb.ErrUnknownOperator)
}

func TestWhere_ParameterNumbering(t *testing.T) {
	b := qb.New[Person]()
	b.Where("type", qb.Eq, "Person")
	b.Where("deleted", qb.IsNull, nil)
	b.Where("age", qb.Ge, 21)
	b.Where("email", qb.Eq, nil)
	b.Where("bones", qb.Contains, "arm")

	assert.Equal(t, []string{
		"c.type = @p0",
		"(c.deleted ?? null) = null",
		"c.age >= @p1",
		"ARRAY_CONTAINS(c.bones, @p2)",
	}, b.Predicates())
	assert.Equal(t, []qb.Parameter{
		{Name: "@p0", Value: "Person"},
		{Name: "@p1", Value: 21},
		{Name: "@p2", Value: "arm"},
	}, b.Parameters())
}

func TestWhereRaw(t *testing.T) {
	b := qb.New[Person]()
	b.Join("p", "products")
	b.WhereRaw("p.id", qb.Eq, "c36a5bf0-6dcd-46b5-9538-35ecc870bb9f")

	assert.Equal(t, []string{"p.id = @p0"}, b.Predicates())
	assert.Equal(t, []qb.Parameter{{Name: "@p0", Value: "c36a5bf0-6dcd-46b5-9538-35ecc870bb9f"}}, b.Parameters())
}

func TestWhereRaw_RejectsSpecialOperators(t *testing.T) {
	for _, op := range []qb.Operator{qb.IsNull, qb.Contains, qb.In} {
		t.Run(string(op), func(t *testing.T) {
			b := qb.New[Person]()
			b.WhereRaw("p.id", op, "x")

			assert.Empty(t, b.Predicates())
			assert.Empty(t, b.Parameters())
			assert.ErrorIs(t, b.Err(), qb.ErrUnknownOperator)
		})
	}
}

func TestWhereOr(t *testing.T) {
	b := qb.New[Person]()
	b.WhereOr([]qb.Condition{
		{Field: "name.givenName", Operator: qb.Eq, Value: "John"},
		{Field: "name.familyName", Operator: qb.Eq, Value: "Smith"},
	})

	assert.Equal(t, []string{"(c.name.givenName = @p0 OR c.name.familyName = @p1)"}, b.Predicates())
	assert.Equal(t, []qb.Parameter{
		{Name: "@p0", Value: "John"},
		{Name: "@p1", Value: "Smith"},
	}, b.Parameters())
}

func TestWhereOr_SpecialForms(t *testing.T) {
	b := qb.New[Person]()
	b.WhereOr([]qb.Condition{
		{Field: "deleted", Operator: qb.IsNull},
		{Field: "bones", Operator: qb.Contains, Value: "arm"},
		{Field: "sex", Operator: qb.In, Value: []string{"Male", "Female"}},
	})

	assert.Equal(t, []string{
		"((c.deleted ?? null) = null OR ARRAY_CONTAINS(c.bones, @p0) OR ARRAY_CONTAINS(@p1, c.sex))",
	}, b.Predicates())
	assert.Equal(t, []qb.Parameter{
		{Name: "@p0", Value: "arm"},
		{Name: "@p1", Value: []string{"Male", "Female"}},
	}, b.Parameters())
}

func TestWhereOr_SkipsUndefined(t *testing.T) {
	b := qb.New[Person]()
	b.WhereOr([]qb.Condition{
		{Field: "email", Operator: qb.Eq, Value: nil},
		{Field: "age", Operator: qb.Lt, Value: 65},
	})

	assert.Equal(t, []string{"(c.age < @p0)"}, b.Predicates())
	assert.Equal(t, []qb.Parameter{{Name: "@p0", Value: 65}}, b.Parameters())
}

func TestWhereOr_EmptyAddsNothing(t *testing.T) {
	b := qb.New[Person]()
	b.WhereOr(nil)
	b.WhereOr([]qb.Condition{{Field: "email", Operator: qb.Eq}})

	assert.Empty(t, b.Predicates())
	assert.Empty(t, b.Parameters())
}

func TestWhereOr_InvalidConditionAddsNothing(t *testing.T) {
	b := qb.New[Person]()
	b.WhereOr([]qb.Condition{
		{Field: "age", Operator: qb.Gt, Value: 1},
		{Field: "age", Operator: qb.Operator("like"), Value: 2},
	})

	assert.Empty(t, b.Predicates())
	assert.Empty(t, b.Parameters())
	assert.ErrorIs(t, b.Err(), qb.ErrUnknownOperator)
}

func TestWhereFuzzy(t *testing.T) {
	b := qb.New[Person]()
	b.WhereFuzzy("steve", "name.givenName", "email")

	assert.Equal(t, []string{
		"(Contains(c.name.givenName, @p0, true) OR Contains(c.email, @p0, true))",
	}, b.Predicates())
	assert.Equal(t, []qb.Parameter{{Name: "@p0", Value: "steve"}}, b.Parameters())
}

func TestWhereFuzzy_SingleField(t *testing.T) {
	b := qb.New[Person]()
	b.Where("age", qb.Gt, 18)
	b.WhereFuzzy("smith", "name.familyName")

	assert.Equal(t, "(Contains(c.name.familyName, @p1, true))", b.Predicates()[1])
	assert.Len(t, b.Parameters(), 2)
}

func TestFilter(t *testing.T) {
	b := qb.New[Person]()
	b.Where("age", qb.Gt, 18)
	b.Filter("IS_DEFINED(c.email)", nil)
	b.Filter("LOWER(c.email) = @", "a@example.com")

	assert.Equal(t, []string{
		"c.age > @p0",
		"IS_DEFINED(c.email)",
		"LOWER(c.email) = @p1",
	}, b.Predicates())
	assert.Equal(t, []qb.Parameter{
		{Name: "@p0", Value: 18},
		{Name: "@p1", Value: "a@example.com"},
	}, b.Parameters())
}

func TestFilter_ParameterWithoutPlaceholder(t *testing.T) {
	b := qb.New[Person]()
	b.Filter("IS_DEFINED(c.email)", "x")

	assert.ErrorIs(t, b.Err(), qb.ErrNoPlaceholder)
	assert.Empty(t, b.Predicates())
	assert.Empty(t, b.Parameters())

	_, err := b.Query()
	assert.ErrorIs(t, err, qb.ErrNoPlaceholder)
}

func TestPlaceholdersMatchParameters(t *testing.T) {
	b := qb.New[Person]()
	b.Where("type", qb.Eq, "Person")
	b.Where("deleted", qb.IsNull, nil)
	b.Where("bones", qb.Contains, nil)
	b.WhereOr([]qb.Condition{
		{Field: "name.givenName", Operator: qb.Eq, Value: "John"},
		{Field: "sex", Operator: qb.In, Value: []string{"Male"}},
		{Field: "email", Operator: qb.Ne, Value: nil},
	})
	b.WhereFuzzy("steve", "name.givenName", "name.familyName", "email")
	require.NoError(t, b.BuildQuery(map[string]any{
		"name": map[string]any{
			"familyName": qb.StringFilter{Ieq: qb.Ptr("smith"), Like: qb.Ptr("sm")},
		},
	}))
	b.Join("p", "products")
	b.WhereRaw("p.name", qb.Eq, "widget")

	spec, err := b.Query()
	require.NoError(t, err)

	names := make([]string, 0, len(spec.Parameters))
	for _, p := range spec.Parameters {
		names = append(names, p.Name)
	}
	assert.Equal(t, names, distinctPlaceholders(spec.Query))
	assert.Equal(t, []string{"@p0", "@p1", "@p2", "@p3", "@p4", "@p5", "@p6"}, names)
}
