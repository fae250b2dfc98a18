package querybuilder

import "errors"

var (
	// ErrUnknownOperator is returned when an operator or filter key has no rendering.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrUnhandledType is returned by BuildQuery for a leaf that is neither a
	// filter descriptor nor a nested object.
	ErrUnhandledType = errors.New("unhandled type")

	// ErrValueRequired is returned by Patch when a set, add or replace
	// operation carries no value.
	ErrValueRequired = errors.New("value is required for operation")

	// ErrUnknownPatchOp is returned by Patch for an op other than set, add, replace or remove.
	ErrUnknownPatchOp = errors.New("unknown patch operation")

	// ErrUnknownPath is returned when path validation is enabled and a field
	// path does not exist on the record type.
	ErrUnknownPath = errors.New("unknown field path")

	// ErrNoPlaceholder is recorded by Filter when a parameter is given but
	// the clause has no "@" to bind it to.
	ErrNoPlaceholder = errors.New("clause has no parameter placeholder")

	// ErrInvalidLimit is returned for a negative page-size cap.
	ErrInvalidLimit = errors.New("limit must be non-negative")
)
