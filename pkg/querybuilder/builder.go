package querybuilder

import (
	"fmt"
	"strconv"
)

// DefaultAlias is the FROM alias every field path is rendered against.
const DefaultAlias = "c"

// Parameter is a named placeholder and its bound value.
type Parameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// QuerySpec is a rendered query: text plus its parameters.
type QuerySpec struct {
	Query      string      `json:"query"`
	Parameters []Parameter `json:"parameters"`
}

type orderClause struct {
	field     string
	direction SortDirection
}

// Builder accumulates the clauses of one query against documents of type T.
//
// Predicates are ANDed in insertion order. Parameters are named @p<N> where N
// is the number of parameters already added; names are never reused.
type Builder[T any] struct {
	selectExpr string
	from       string
	join       string
	predicates []string
	parameters []Parameter
	orderBy    *orderClause
	groupBy    *string
	limit      *int

	logger Logger
	paths  *PathSet

	// err is the first contract violation seen by a clause method.
	err error
}

// Option configures a Builder.
type Option func(*options)

type options struct {
	logger        Logger
	validatePaths bool
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithPathValidation rejects field paths that do not exist on T.
// Paths are derived from T's struct fields and their json tags.
func WithPathValidation() Option {
	return func(o *options) {
		o.validatePaths = true
	}
}

// New creates an empty Builder for documents of type T.
func New[T any](opts ...Option) *Builder[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Builder[T]{
		selectExpr: "*",
		from:       DefaultAlias,
		logger:     o.logger,
	}
	if b.logger == nil {
		b.logger = NopLogger{}
	}
	if o.validatePaths {
		b.paths = PathsOf[T]()
	}
	return b
}

// Err returns the first contract violation recorded by a clause method.
func (b *Builder[T]) Err() error {
	return b.err
}

// Predicates returns a copy of the rendered predicates in AND order.
func (b *Builder[T]) Predicates() []string {
	return append([]string(nil), b.predicates...)
}

// Parameters returns a copy of the parameters added so far.
func (b *Builder[T]) Parameters() []Parameter {
	return append([]Parameter(nil), b.parameters...)
}

// Select replaces the SELECT expression verbatim. The expression is not
// validated or parameterized; it exists for projections and aggregates the
// path API cannot express.
func (b *Builder[T]) Select(expr string) {
	b.selectExpr = expr
}

// GroupBy sets the GROUP BY expression verbatim.
func (b *Builder[T]) GroupBy(expr string) {
	b.groupBy = &expr
}

// Limit caps the page size. It is rendered as OFFSET 0 LIMIT n; later pages
// are reached with continuation tokens, not offsets.
func (b *Builder[T]) Limit(n int) {
	if n < 0 {
		b.fail(fmt.Errorf("%w: %d", ErrInvalidLimit, n))
		return
	}
	b.limit = &n
}

// Join sets the single JOIN clause to "<alias> IN c.<path>", replacing any
// previous join.
func (b *Builder[T]) Join(alias, path string) {
	if !b.checkPath(path) {
		return
	}
	b.join = alias + " IN " + b.from + "." + path
}

// OrderBy sets the single ORDER BY key.
func (b *Builder[T]) OrderBy(field string, direction SortDirection) {
	if !direction.valid() {
		b.fail(fmt.Errorf("%w: sort direction %q", ErrUnknownOperator, direction))
		return
	}
	if !b.checkPath(field) {
		return
	}
	b.orderBy = &orderClause{field: field, direction: direction}
}

// ClearOrderBy removes ordering.
func (b *Builder[T]) ClearOrderBy() {
	b.orderBy = nil
}

// nextParam returns the name the next parameter will receive.
func (b *Builder[T]) nextParam() string {
	return "@p" + strconv.Itoa(len(b.parameters))
}

// addParam appends a parameter under the name returned by nextParam.
func (b *Builder[T]) addParam(name string, value any) {
	b.parameters = append(b.parameters, Parameter{Name: name, Value: paramValue(value)})
}

func (b *Builder[T]) addPredicate(p string) {
	b.predicates = append(b.predicates, p)
}

// field renders a document path against the FROM alias.
func (b *Builder[T]) field(path string) string {
	return b.from + "." + path
}

// fail records err unless an earlier violation is already recorded.
func (b *Builder[T]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// checkPath validates a dotted path when validation is enabled.
func (b *Builder[T]) checkPath(path string) bool {
	if b.paths == nil {
		return true
	}
	if err := b.paths.CheckDotted(path); err != nil {
		b.fail(err)
		return false
	}
	return true
}
