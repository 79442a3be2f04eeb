package mapper

import (
	"encoding"
	"reflect"
	"strings"
	"time"
)

// Converter post-processes the first result of a mapped handler.
//
// It runs only when the handler's first result is declared as a non-error
// interface type (for example any or templ.Component) and the handler returned
// no error. The converted value must still satisfy the declared type.
type Converter func(v any) any

var (
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	timeType          = reflect.TypeOf(time.Time{})
)

// ModelToMap converts structs and pointers to structs into map[string]any keyed
// by json field names. Nested structs, slices and maps are converted recursively.
// Any other value is returned unchanged.
func ModelToMap(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return v
		}
	} else if rv.Kind() != reflect.Struct {
		return v
	}
	if isOpaque(rv.Type()) {
		return v
	}
	return toPlain(rv)
}

// isOpaque reports whether values of t are serialized by their own methods.
func isOpaque(t reflect.Type) bool {
	return t == timeType || t.Implements(textMarshalerType)
}

func toPlain(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	if isOpaque(rv.Type()) {
		return rv.Interface()
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return toPlain(rv.Elem())
	case reflect.Struct:
		out := make(map[string]any, rv.NumField())
		structToMap(rv, out)
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Interface()
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = toPlain(rv.Index(i))
		}
		return out
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return rv.Interface()
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = toPlain(iter.Value())
		}
		return out
	}
	return rv.Interface()
}

func structToMap(rv reflect.Value, out map[string]any) {
	rt := rv.Type()
	for i := range rt.NumField() {
		sf := rt.Field(i)
		fv := rv.Field(i)

		if sf.Anonymous && sf.Tag.Get("json") == "" {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct && !isOpaque(fv.Type()) {
				structToMap(fv, out)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" && opts == "" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if strings.Contains(","+opts+",", ",omitempty,") && fv.IsZero() {
			continue
		}
		out[name] = toPlain(fv)
	}
}
