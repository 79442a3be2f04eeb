package mapper

import (
	"context"
	"fmt"
	"reflect"
)

var (
	markerType  = reflect.TypeOf((*marker)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Descriptor is one extraction requirement declared by a handler parameter.
type Descriptor struct {
	Index    int          // Parameter position in the original signature
	Param    reflect.Type // Marker type, e.g. Query[SearchParams]
	Target   reflect.Type // Type the raw mapping is decoded into
	Location Location
}

// Inspect returns the descriptors for every parameter of fn whose type is a
// marker over a struct (or pointer to struct), ordered by parameter position.
// Other parameters are left for the caller.
func Inspect(fn any) ([]Descriptor, error) {
	if fn == nil {
		return nil, ErrNotAFunction
	}
	ft := reflect.TypeOf(fn)
	if ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: got %T", ErrNotAFunction, fn)
	}

	var descriptors []Descriptor
	for i := range ft.NumIn() {
		pt := ft.In(i)
		if pt.Kind() != reflect.Struct || !pt.Implements(markerType) {
			continue
		}

		m := reflect.Zero(pt).Interface().(marker)
		target := m.target()
		if !isModel(target) {
			continue
		}

		descriptors = append(descriptors, Descriptor{
			Index:    i,
			Param:    pt,
			Target:   target,
			Location: m.location(),
		})
	}
	return descriptors, nil
}

// isModel reports whether t can be constructed from a mapping of field name to value.
func isModel(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}
