package querybuilder

import "reflect"

type nullValue struct{}

func (nullValue) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Null is an explicit JSON null. Passing a plain nil means "no value" and
// skips the clause; passing Null compares against null.
var Null any = nullValue{}

// isUndefined reports whether v counts as "not supplied".
func isUndefined(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// paramValue returns the value stored in a Parameter. Null becomes nil and
// pointers are dereferenced so the parameter list carries plain values.
func paramValue(v any) any {
	if _, ok := v.(nullValue); ok {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
