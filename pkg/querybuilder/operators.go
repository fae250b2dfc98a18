package querybuilder

// Operator selects how Where renders a comparison.
type Operator string

const (
	Eq Operator = "eq"
	Ne Operator = "ne"
	Ge Operator = "ge"
	Gt Operator = "gt"
	Le Operator = "le"
	Lt Operator = "lt"

	// Contains tests that an array field contains the value.
	Contains Operator = "contains"
	// In tests that the field is one of the values in a slice.
	In Operator = "in"
	// IsNull matches documents where the field is null or absent.
	IsNull Operator = "isNull"
)

// SortDirection is the ORDER BY direction token.
type SortDirection string

const (
	Asc  SortDirection = "ASC"
	Desc SortDirection = "DESC"
)

// comparisonSymbols maps the basic comparison operators to their dialect symbol.
var comparisonSymbols = map[Operator]string{
	Eq: "=",
	Ne: "!=",
	Ge: ">=",
	Gt: ">",
	Le: "<=",
	Lt: "<",
}

// symbolFor returns the comparison symbol for op. ok is false for anything
// that is not a basic comparison.
func symbolFor(op Operator) (symbol string, ok bool) {
	symbol, ok = comparisonSymbols[op]
	return symbol, ok
}

func (d SortDirection) valid() bool {
	return d == Asc || d == Desc
}
