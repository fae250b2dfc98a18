package querybuilder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// PathSet checks field paths against the shape of a document type. Struct
// fields are named by their json tag. Maps with string keys and interface
// values accept any sub-path. Types that marshal themselves (time.Time,
// uuid.UUID) are leaves.
type PathSet struct {
	root reflect.Type
}

// PathsOf returns the PathSet of T.
func PathsOf[T any]() *PathSet {
	return &PathSet{root: reflect.TypeOf((*T)(nil)).Elem()}
}

// CheckDotted validates a query path such as "name.givenName" or
// "products[0].name".
func (p *PathSet) CheckDotted(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrUnknownPath)
	}
	t := p.root
	for _, seg := range strings.Split(path, ".") {
		name, indices, err := splitIndices(seg)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnknownPath, path, err)
		}
		next, open, ok := fieldType(t, name)
		if open {
			return nil
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPath, path)
		}
		t = next
		for range indices {
			elem, ok := elemType(t)
			if !ok {
				return fmt.Errorf("%w: %s: %s is not an array", ErrUnknownPath, path, name)
			}
			t = elem
		}
	}
	return nil
}

// CheckPatch validates a patch path such as "/name/givenName", "/bones/0"
// or "/bones/-".
func (p *PathSet) CheckPatch(path string) error {
	if !strings.HasPrefix(path, "/") || len(path) == 1 {
		return fmt.Errorf("%w: patch path %q must start with /", ErrUnknownPath, path)
	}
	segs := strings.Split(path[1:], "/")
	t := p.root
	for i, seg := range segs {
		if elem, ok := elemType(t); ok {
			if seg == "-" && i == len(segs)-1 {
				return nil
			}
			if _, err := strconv.Atoi(seg); err != nil {
				return fmt.Errorf("%w: %s: %q is not an array index", ErrUnknownPath, path, seg)
			}
			t = elem
			continue
		}
		next, open, ok := fieldType(t, seg)
		if open {
			return nil
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPath, path)
		}
		t = next
	}
	return nil
}

// splitIndices splits "products[0][1]" into "products" and its indices.
func splitIndices(seg string) (string, []int, error) {
	name, rest, found := strings.Cut(seg, "[")
	if !found {
		return seg, nil, nil
	}
	var indices []int
	rest = "[" + rest
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end < 0 {
			return "", nil, fmt.Errorf("malformed index in %q", seg)
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, fmt.Errorf("malformed index in %q", seg)
		}
		indices = append(indices, n)
		rest = rest[end+1:]
	}
	return name, indices, nil
}

// fieldType resolves one named segment below t. open is true when t accepts
// any sub-path.
func fieldType(t reflect.Type, name string) (next reflect.Type, open, ok bool) {
	t = deref(t)
	switch t.Kind() {
	case reflect.Interface:
		return nil, true, true
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, false, false
		}
		return t.Elem(), false, true
	case reflect.Struct:
		if isLeaf(t) {
			return nil, false, false
		}
		next, ok = structFields(t)[name]
		return next, false, ok
	}
	return nil, false, false
}

func elemType(t reflect.Type) (reflect.Type, bool) {
	t = deref(t)
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		if isLeaf(t) {
			return nil, false
		}
		return t.Elem(), true
	}
	return nil, false
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func isLeaf(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) ||
		pt.Implements(jsonMarshalerType) || pt.Implements(textMarshalerType)
}

var fieldCache = struct {
	mu     sync.RWMutex
	fields map[reflect.Type]map[string]reflect.Type
}{fields: map[reflect.Type]map[string]reflect.Type{}}

// structFields returns the json-named fields of t, flattening embedded
// structs. Results are cached per type.
func structFields(t reflect.Type) map[string]reflect.Type {
	fieldCache.mu.RLock()
	fields, ok := fieldCache.fields[t]
	fieldCache.mu.RUnlock()
	if ok {
		return fields
	}

	fields = map[string]reflect.Type{}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Tag.Get("json") == "" && deref(sf.Type).Kind() == reflect.Struct {
			for k, v := range structFields(deref(sf.Type)) {
				fields[k] = v
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		name, skip := jsonFieldName(sf)
		if skip {
			continue
		}
		fields[name] = sf.Type
	}

	fieldCache.mu.Lock()
	fieldCache.fields[t] = fields
	fieldCache.mu.Unlock()
	return fields
}
