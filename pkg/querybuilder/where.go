package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// Condition is one alternative of a WhereOr clause.
type Condition struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`
}

// Where adds a predicate comparing the document field at path with value.
//
//	IsNull    (c.f ?? null) = null     no parameter
//	Contains  ARRAY_CONTAINS(c.f, @p)  value is one element
//	In        ARRAY_CONTAINS(@p, c.f)  value is a slice
//	Eq..Lt    c.f <op> @p
//
// An undefined value skips the clause entirely.
func (b *Builder[T]) Where(path string, op Operator, value any) {
	if !b.checkPath(path) {
		return
	}
	if err := checkComparison(path, op, value); err != nil {
		b.fail(err)
		return
	}
	if clause, ok := b.comparison(b.field(path), op, value); ok {
		b.addPredicate(clause)
	}
}

// WhereRaw adds "<field> <op> @p" with field used verbatim, for predicates on
// a joined alias such as "p.id". Only the basic comparisons are accepted.
func (b *Builder[T]) WhereRaw(field string, op Operator, value any) {
	symbol, ok := symbolFor(op)
	if !ok {
		b.fail(fmt.Errorf("%w: %q is not allowed in a raw clause", ErrUnknownOperator, op))
		return
	}
	if isUndefined(value) {
		return
	}
	name := b.nextParam()
	b.addPredicate(field + " " + symbol + " " + name)
	b.addParam(name, value)
}

// WhereOr adds one parenthesized predicate that ORs the given conditions.
// Each condition follows the same rules as Where; skipped conditions are
// dropped, and nothing is added when every condition is skipped.
func (b *Builder[T]) WhereOr(conditions []Condition) {
	// Validate everything first so a bad condition cannot leave parameters
	// without a predicate.
	for _, c := range conditions {
		if !b.checkPath(c.Field) {
			return
		}
		if err := checkComparison(c.Field, c.Operator, c.Value); err != nil {
			b.fail(err)
			return
		}
	}

	var clauses []string
	for _, c := range conditions {
		if clause, ok := b.comparison(b.field(c.Field), c.Operator, c.Value); ok {
			clauses = append(clauses, clause)
		}
	}
	if len(clauses) > 0 {
		b.addPredicate("(" + strings.Join(clauses, " OR ") + ")")
	}
}

// WhereFuzzy adds a case-insensitive substring search for term across one or
// more fields. The term is bound once and shared by every field.
func (b *Builder[T]) WhereFuzzy(term string, field string, more ...string) {
	fields := append([]string{field}, more...)
	for _, f := range fields {
		if !b.checkPath(f) {
			return
		}
	}

	name := b.nextParam()
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, "Contains("+b.field(f)+", "+name+", true)")
	}
	b.addPredicate("(" + strings.Join(lines, " OR ") + ")")
	b.addParam(name, term)
}

// Filter adds a raw predicate. The first "@" in clause is replaced with the
// next parameter name and parameter is bound to it. With no parameter the
// clause is added verbatim. A parameter with no "@" to bind to is an error.
func (b *Builder[T]) Filter(clause string, parameter any) {
	if isUndefined(parameter) {
		b.addPredicate(clause)
		return
	}
	if !strings.Contains(clause, "@") {
		b.fail(fmt.Errorf("%w: %q", ErrNoPlaceholder, clause))
		return
	}
	name := b.nextParam()
	b.addPredicate(strings.Replace(clause, "@", name, 1))
	b.addParam(name, parameter)
}

// checkComparison rejects operators Where cannot render and In values that
// are not slices.
func checkComparison(path string, op Operator, value any) error {
	switch op {
	case IsNull, Contains:
		return nil
	case In:
		if !isUndefined(value) && !isSequence(value) {
			return fmt.Errorf("%w: operator in on %s needs a slice, got %T", ErrUnhandledType, path, value)
		}
		return nil
	}
	if _, ok := symbolFor(op); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperator, op)
	}
	return nil
}

// comparison renders field op value, allocating a parameter when one is
// needed. ok is false when the clause is skipped for an undefined value.
// The operator must already have passed checkComparison.
func (b *Builder[T]) comparison(field string, op Operator, value any) (clause string, ok bool) {
	if op == IsNull {
		return "(" + field + " ?? null) = null", true
	}
	if isUndefined(value) {
		return "", false
	}

	name := b.nextParam()
	b.addParam(name, value)
	switch op {
	case Contains:
		return "ARRAY_CONTAINS(" + field + ", " + name + ")", true
	case In:
		return "ARRAY_CONTAINS(" + name + ", " + field + ")", true
	}
	symbol, _ := symbolFor(op)
	return field + " " + symbol + " " + name, true
}

func isSequence(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
}
