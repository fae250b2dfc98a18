package querybuilder

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// TypeInfoKey tags a filter descriptor in its map (wire) form.
const TypeInfoKey = "__typeInfo"

// Type tags of the filter descriptors.
const (
	StringFilterType  = "StringFilter"
	UUIDFilterType    = "UUIDFilter"
	InstantFilterType = "InstantFilter"
)

// FilterKey is a comparison key inside a filter descriptor.
type FilterKey string

const (
	FilterEq   FilterKey = "eq"
	FilterNe   FilterKey = "ne"
	FilterGe   FilterKey = "ge"
	FilterGt   FilterKey = "gt"
	FilterLe   FilterKey = "le"
	FilterLt   FilterKey = "lt"
	FilterIeq  FilterKey = "ieq"
	FilterIne  FilterKey = "ine"
	FilterLike FilterKey = "like"
	FilterIn   FilterKey = "in"
)

// filterKeyOrder is the order keys are applied in when a descriptor has no
// declared order of its own (MapFilter).
var filterKeyOrder = []FilterKey{
	FilterEq, FilterNe, FilterGe, FilterGt, FilterLe, FilterLt,
	FilterIeq, FilterIne, FilterLike, FilterIn,
}

// FilterCondition is one defined key of a filter descriptor.
type FilterCondition struct {
	Key   FilterKey
	Value any
}

// Filter is a tagged descriptor of comparisons on a single field, consumed
// by BuildQuery. Conditions returns only the keys that carry a value, in the
// order they should be applied.
type Filter interface {
	TypeInfo() string
	Conditions() []FilterCondition
}

// StringFilter compares a string field.
type StringFilter struct {
	Eq   *string  `json:"eq,omitempty" yaml:"eq,omitempty"`
	Ne   *string  `json:"ne,omitempty" yaml:"ne,omitempty"`
	Ieq  *string  `json:"ieq,omitempty" yaml:"ieq,omitempty"`
	Ine  *string  `json:"ine,omitempty" yaml:"ine,omitempty"`
	Like *string  `json:"like,omitempty" yaml:"like,omitempty"`
	In   []string `json:"in,omitempty" yaml:"in,omitempty"`
}

func (StringFilter) TypeInfo() string { return StringFilterType }

func (f StringFilter) Conditions() []FilterCondition {
	var out []FilterCondition
	out = appendDefined(out, FilterEq, f.Eq)
	out = appendDefined(out, FilterNe, f.Ne)
	out = appendDefined(out, FilterIeq, f.Ieq)
	out = appendDefined(out, FilterIne, f.Ine)
	out = appendDefined(out, FilterLike, f.Like)
	out = appendDefined(out, FilterIn, f.In)
	return out
}

// UUIDFilter compares an identifier field.
type UUIDFilter struct {
	Eq *uuid.UUID `json:"eq,omitempty" yaml:"eq,omitempty"`
	Ne *uuid.UUID `json:"ne,omitempty" yaml:"ne,omitempty"`
}

func (UUIDFilter) TypeInfo() string { return UUIDFilterType }

func (f UUIDFilter) Conditions() []FilterCondition {
	var out []FilterCondition
	out = appendDefined(out, FilterEq, f.Eq)
	out = appendDefined(out, FilterNe, f.Ne)
	return out
}

// InstantFilter compares a timestamp field. Times are bound as values and
// serialize as RFC 3339 strings, matching how instants are stored.
type InstantFilter struct {
	Eq   *time.Time `json:"eq,omitempty" yaml:"eq,omitempty"`
	Ne   *time.Time `json:"ne,omitempty" yaml:"ne,omitempty"`
	Ge   *time.Time `json:"ge,omitempty" yaml:"ge,omitempty"`
	Gt   *time.Time `json:"gt,omitempty" yaml:"gt,omitempty"`
	Le   *time.Time `json:"le,omitempty" yaml:"le,omitempty"`
	Lt   *time.Time `json:"lt,omitempty" yaml:"lt,omitempty"`
	Ieq  *string    `json:"ieq,omitempty" yaml:"ieq,omitempty"`
	Ine  *string    `json:"ine,omitempty" yaml:"ine,omitempty"`
	Like *string    `json:"like,omitempty" yaml:"like,omitempty"`
	In   []string   `json:"in,omitempty" yaml:"in,omitempty"`
}

func (InstantFilter) TypeInfo() string { return InstantFilterType }

func (f InstantFilter) Conditions() []FilterCondition {
	var out []FilterCondition
	out = appendDefined(out, FilterEq, f.Eq)
	out = appendDefined(out, FilterNe, f.Ne)
	out = appendDefined(out, FilterGe, f.Ge)
	out = appendDefined(out, FilterGt, f.Gt)
	out = appendDefined(out, FilterLe, f.Le)
	out = appendDefined(out, FilterLt, f.Lt)
	out = appendDefined(out, FilterIeq, f.Ieq)
	out = appendDefined(out, FilterIne, f.Ine)
	out = appendDefined(out, FilterLike, f.Like)
	out = appendDefined(out, FilterIn, f.In)
	return out
}

// MapFilter is the wire form of a descriptor, e.g. decoded from
// {"__typeInfo": "StringFilter", "eq": "John"}. Known keys are applied in
// eq, ne, ge, gt, le, lt, ieq, ine, like, in order; unknown keys follow in
// sorted order so BuildQuery can reject them.
//
// A key that is present counts even when its value is null: "eq": null
// compares against null. Only absent keys are skipped.
type MapFilter map[string]any

func (m MapFilter) TypeInfo() string {
	s, _ := m[TypeInfoKey].(string)
	return s
}

func (m MapFilter) Conditions() []FilterCondition {
	var out []FilterCondition
	known := make(map[string]bool, len(filterKeyOrder)+1)
	known[TypeInfoKey] = true
	for _, k := range filterKeyOrder {
		known[string(k)] = true
		if v, ok := m[string(k)]; ok {
			out = append(out, FilterCondition{Key: k, Value: paramValue(v)})
		}
	}

	var unknown []string
	for k := range m {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		out = append(out, FilterCondition{Key: FilterKey(k), Value: paramValue(m[k])})
	}
	return out
}

// isFilterType reports whether tag names one of the known descriptors.
func isFilterType(tag string) bool {
	switch tag {
	case StringFilterType, UUIDFilterType, InstantFilterType:
		return true
	}
	return false
}

func appendDefined(out []FilterCondition, key FilterKey, v any) []FilterCondition {
	if isUndefined(v) {
		return out
	}
	return append(out, FilterCondition{Key: key, Value: paramValue(v)})
}

// Ptr returns a pointer to v, for filling descriptor fields inline.
func Ptr[V any](v V) *V {
	return &v
}
