// Package querybuilder builds parameterized queries for a Cosmos-style
// document database.
//
// A Builder accumulates predicates and parameters for one logical query.
// Field paths are dotted paths into the document (e.g. "name.givenName") and
// are rendered with the "c." alias prefix. Values are never interpolated into
// the query text; every value becomes a named parameter @p0, @p1, ... in the
// order it was added.
//
// Example:
//
//	b := querybuilder.New[Person]()
//	b.Where("type", querybuilder.Eq, "Person")
//	b.Where("age", querybuilder.Gt, 18)
//	b.OrderBy("created", querybuilder.Desc)
//	b.Limit(50)
//
//	result, err := b.GetAll(ctx, container)
//
// renders
//
//	SELECT
//	  *
//	FROM
//	  c
//	WHERE
//	c.type = @p0
//	  AND c.age > @p1
//
//	ORDER BY
//	 c.created DESC
//	OFFSET 0
//	LIMIT 50
//
// # Undefined values
//
// A nil interface, nil pointer, nil slice or nil map passed as a value is
// treated as "not supplied" and the clause is skipped without allocating a
// parameter. Use Null to compare against an explicit JSON null.
//
// # Errors
//
// Clause methods do not return errors. The first contract violation (unknown
// operator, negative limit, unknown path when validation is enabled) is kept
// on the builder and returned by Query, GetOne and GetAll. BuildQuery and
// Patch return their errors directly.
//
// # Concurrency
//
// A Builder is owned by one call chain. It must not be mutated from several
// goroutines at once; parameter numbering is only deterministic under
// sequential use.
package querybuilder
