package querybuilder

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// filterRenderers render the non-basic filter keys around the null-defaulted
// path expression x and parameter p.
var filterRenderers = map[FilterKey]func(x, p string) string{
	FilterIeq:  func(x, p string) string { return "StringEquals(" + x + ", " + p + ", true)" },
	FilterIne:  func(x, p string) string { return "Not(StringEquals(" + x + ", " + p + ", true))" },
	FilterLike: func(x, p string) string { return "Contains(" + x + ", " + p + ", true)" },
	FilterIn:   func(x, p string) string { return "ARRAY_CONTAINS(" + p + ", " + x + ")" },
}

// BuildQuery applies a query-by-example value: every filter descriptor found
// in query becomes predicates on the dotted path that leads to it.
//
// query may be a map with string keys (walked in sorted key order) or a
// struct (exported fields in declaration order, named by their json tag; nil
// fields are absent). Every leaf must be a Filter; bare scalars and nulls fail
// with ErrUnhandledType. A nil query adds nothing.
//
// On error the builder is left as it was before the call.
func (b *Builder[T]) BuildQuery(query any) error {
	return b.BuildQueryAt(query, b.from)
}

// BuildQueryAt is BuildQuery with paths rooted at prefix instead of the FROM
// alias, e.g. a join alias.
func (b *Builder[T]) BuildQueryAt(query any, prefix string) error {
	if isUndefined(query) {
		return nil
	}

	npred, nparam := len(b.predicates), len(b.parameters)
	if err := b.walkObject(query, prefix); err != nil {
		b.predicates = b.predicates[:npred]
		b.parameters = b.parameters[:nparam]
		return err
	}
	return nil
}

// ApplyFilter adds the predicates of one descriptor against path, which is
// used verbatim (e.g. "c.name.givenName").
func (b *Builder[T]) ApplyFilter(path string, f Filter) error {
	conds := f.Conditions()
	for _, c := range conds {
		if _, basic := symbolFor(Operator(c.Key)); basic {
			continue
		}
		if _, ok := filterRenderers[c.Key]; !ok {
			return fmt.Errorf("%w %s at %s", ErrUnknownOperator, c.Key, path)
		}
	}

	// The path defaults to null so a missing parent object still compares.
	x := "(" + path + " ?? null)"
	for _, c := range conds {
		name := b.nextParam()
		if symbol, basic := symbolFor(Operator(c.Key)); basic {
			b.addPredicate(x + " " + symbol + " " + name)
		} else {
			b.addPredicate(filterRenderers[c.Key](x, name))
		}
		b.addParam(name, c.Value)
	}
	return nil
}

func (b *Builder[T]) walkObject(obj any, prefix string) error {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w %s at %s", ErrUnhandledType, rv.Type(), prefix)
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			if k.String() != TypeInfoKey {
				keys = append(keys, k.String())
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
			if err := b.walkValue(v.Interface(), prefix+"."+k); err != nil {
				return err
			}
		}
		return nil

	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			name, skip := jsonFieldName(sf)
			if skip {
				continue
			}
			fv := rv.Field(i)
			if isUndefined(fv.Interface()) {
				continue
			}
			if err := b.walkValue(fv.Interface(), prefix+"."+name); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w %T at %s", ErrUnhandledType, obj, prefix)
}

func (b *Builder[T]) walkValue(v any, path string) error {
	if isUndefined(v) {
		return fmt.Errorf("%w null at %s", ErrUnhandledType, path)
	}

	if f, ok := v.(Filter); ok {
		if err := b.checkFilterPath(path); err != nil {
			return err
		}
		return b.ApplyFilter(path, f)
	}
	if m, ok := v.(map[string]any); ok {
		if tag, _ := m[TypeInfoKey].(string); isFilterType(tag) {
			if err := b.checkFilterPath(path); err != nil {
				return err
			}
			return b.ApplyFilter(path, MapFilter(m))
		}
	}
	if !isObject(v) {
		return fmt.Errorf("%w %T at %s", ErrUnhandledType, v, path)
	}
	return b.walkObject(v, path)
}

// checkFilterPath validates a filter path under the FROM alias when path
// validation is on. Paths under a join alias are not checked.
func (b *Builder[T]) checkFilterPath(path string) error {
	if b.paths == nil {
		return nil
	}
	rel, ok := strings.CutPrefix(path, b.from+".")
	if !ok {
		return nil
	}
	return b.paths.CheckDotted(rel)
}

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// isObject reports whether v is a nested object to recurse into. Structs that
// serialize themselves (time.Time and the like) are scalars.
func isObject(v any) bool {
	t := reflect.TypeOf(v)
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Map:
		return t.Key().Kind() == reflect.String
	case reflect.Struct:
		pt := reflect.PointerTo(t)
		return !pt.Implements(jsonMarshalerType) && !pt.Implements(textMarshalerType)
	}
	return false
}

// jsonFieldName returns the document name of a struct field.
func jsonFieldName(sf reflect.StructField) (name string, skip bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	if name == "" {
		name = sf.Name
	}
	return name, false
}
