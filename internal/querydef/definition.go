// Package querydef loads declarative query definitions and applies them to
// a builder.
//
// A definition lists builder calls as data:
//
//	select: "*"
//	where:
//	  - {field: type, operator: eq, value: Person}
//	  - {field: age, operator: gt, value: 18}
//	whereOr:
//	  - - {field: name.givenName, operator: eq, value: John}
//	    - {field: name.familyName, operator: eq, value: Smith}
//	fuzzy: {term: steve, fields: [name.givenName, email]}
//	query:
//	  name:
//	    givenName: {__typeInfo: StringFilter, ieq: john}
//	orderBy: {field: created, direction: DESC}
//	limit: 50
//
// Definitions are read from YAML, JSON or CUE. CUE sources are unified with
// the #Definition schema in schema.cue before decoding.
package querydef

import (
	"fmt"

	"github.com/roach88/docquery/pkg/querybuilder"
)

// Definition is one query (and optionally one patch) in declarative form.
// Fields are applied in the order listed here.
type Definition struct {
	Select   string                     `json:"select,omitempty" yaml:"select,omitempty"`
	Join     *Join                      `json:"join,omitempty" yaml:"join,omitempty"`
	Where    []querybuilder.Condition   `json:"where,omitempty" yaml:"where,omitempty"`
	WhereOr  [][]querybuilder.Condition `json:"whereOr,omitempty" yaml:"whereOr,omitempty"`
	WhereRaw []querybuilder.Condition   `json:"whereRaw,omitempty" yaml:"whereRaw,omitempty"`
	Fuzzy    *Fuzzy                     `json:"fuzzy,omitempty" yaml:"fuzzy,omitempty"`
	Filters  []RawFilter                `json:"filters,omitempty" yaml:"filters,omitempty"`
	// Query is a query-by-example object for BuildQuery.
	Query map[string]any `json:"query,omitempty" yaml:"query,omitempty"`
	// QueryAt roots Query at a join alias instead of the document.
	QueryAt string   `json:"queryAt,omitempty" yaml:"queryAt,omitempty"`
	OrderBy *OrderBy `json:"orderBy,omitempty" yaml:"orderBy,omitempty"`
	GroupBy string   `json:"groupBy,omitempty" yaml:"groupBy,omitempty"`
	Limit   *int     `json:"limit,omitempty" yaml:"limit,omitempty"`

	Patch []querybuilder.PatchOperation `json:"patch,omitempty" yaml:"patch,omitempty"`
}

// Join is the single JOIN clause.
type Join struct {
	Alias string `json:"alias" yaml:"alias"`
	Path  string `json:"path" yaml:"path"`
}

// Fuzzy is a case-insensitive substring search over fields.
type Fuzzy struct {
	Term   string   `json:"term" yaml:"term"`
	Fields []string `json:"fields" yaml:"fields"`
}

// RawFilter is a verbatim predicate; "@" in Clause is replaced by the
// parameter's placeholder.
type RawFilter struct {
	Clause    string `json:"clause" yaml:"clause"`
	Parameter any    `json:"parameter,omitempty" yaml:"parameter,omitempty"`
}

// OrderBy is the single sort key. Direction defaults to ASC.
type OrderBy struct {
	Field     string                     `json:"field" yaml:"field"`
	Direction querybuilder.SortDirection `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// Apply replays the definition's query clauses onto b and returns the
// builder's error, if any.
func Apply[T any](def *Definition, b *querybuilder.Builder[T]) error {
	if def.Select != "" {
		b.Select(def.Select)
	}
	if def.Join != nil {
		b.Join(def.Join.Alias, def.Join.Path)
	}
	for _, c := range def.Where {
		b.Where(c.Field, c.Operator, c.Value)
	}
	for _, group := range def.WhereOr {
		b.WhereOr(group)
	}
	for _, c := range def.WhereRaw {
		b.WhereRaw(c.Field, c.Operator, c.Value)
	}
	if def.Fuzzy != nil {
		if len(def.Fuzzy.Fields) == 0 {
			return fmt.Errorf("fuzzy %q: at least one field is required", def.Fuzzy.Term)
		}
		b.WhereFuzzy(def.Fuzzy.Term, def.Fuzzy.Fields[0], def.Fuzzy.Fields[1:]...)
	}
	for _, f := range def.Filters {
		b.Filter(f.Clause, f.Parameter)
	}
	if def.Query != nil {
		var err error
		if def.QueryAt != "" {
			err = b.BuildQueryAt(def.Query, def.QueryAt)
		} else {
			err = b.BuildQuery(def.Query)
		}
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
	}
	if def.OrderBy != nil {
		dir := def.OrderBy.Direction
		if dir == "" {
			dir = querybuilder.Asc
		}
		b.OrderBy(def.OrderBy.Field, dir)
	}
	if def.GroupBy != "" {
		b.GroupBy(def.GroupBy)
	}
	if def.Limit != nil {
		b.Limit(*def.Limit)
	}
	return b.Err()
}

// BuildPatch returns the patch document of the definition's patch section.
func BuildPatch[T any](def *Definition, b *querybuilder.Builder[T]) (querybuilder.PatchRequest, error) {
	return b.Patch(def.Patch...)
}
