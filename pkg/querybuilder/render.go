package querybuilder

import (
	"strconv"
	"strings"
)

// countSelect is the projection of the total-count query issued by GetAll.
const countSelect = "VALUE COUNT(1)"

// renderState is an immutable view of the clauses needed to render a query.
type renderState struct {
	selectExpr string
	from       string
	join       string
	predicates []string
	orderBy    *orderClause
	groupBy    *string
	limit      *int
}

// snapshot copies the current clauses. Later builder calls do not affect it.
func (b *Builder[T]) snapshot() renderState {
	s := renderState{
		selectExpr: b.selectExpr,
		from:       b.from,
		join:       b.join,
		predicates: append([]string(nil), b.predicates...),
	}
	if b.orderBy != nil {
		o := *b.orderBy
		s.orderBy = &o
	}
	if b.groupBy != nil {
		g := *b.groupBy
		s.groupBy = &g
	}
	if b.limit != nil {
		l := *b.limit
		s.limit = &l
	}
	return s
}

// countForm derives the total-count query: same filters, join, grouping and
// limit, scalar COUNT projection, no ordering.
func (s renderState) countForm() renderState {
	s.selectExpr = countSelect
	s.orderBy = nil
	return s
}

// text renders the query in fixed section order.
func (s renderState) text() string {
	lines := []string{
		"SELECT\n  " + s.selectExpr,
		"FROM\n  " + s.from,
	}
	if s.join != "" {
		lines = append(lines, "JOIN\n  "+s.join)
	}
	if len(s.predicates) > 0 {
		lines = append(lines, "WHERE", strings.Join(s.predicates, "\n  AND "))
	}
	if s.orderBy != nil {
		lines = append(lines, "\nORDER BY\n "+s.from+"."+s.orderBy.field+" "+string(s.orderBy.direction))
	}
	if s.groupBy != nil {
		lines = append(lines, "\nGROUP BY\n "+*s.groupBy)
	}
	if s.limit != nil {
		lines = append(lines, "OFFSET 0", "LIMIT "+strconv.Itoa(*s.limit))
	}
	return strings.Join(lines, "\n")
}

// Query renders the current state. The returned parameters are a copy.
// Calling Query repeatedly without changing the builder returns identical
// output. It returns the first contract violation recorded by a clause method.
func (b *Builder[T]) Query() (QuerySpec, error) {
	if b.err != nil {
		return QuerySpec{}, b.err
	}
	return b.render(b.snapshot()), nil
}

func (b *Builder[T]) render(s renderState) QuerySpec {
	spec := QuerySpec{
		Query:      s.text(),
		Parameters: b.Parameters(),
	}
	if spec.Parameters == nil {
		spec.Parameters = []Parameter{}
	}
	b.logger.Verbose("Cosmos Query", "query", spec.Query, "parameters", spec.Parameters)
	return spec
}
