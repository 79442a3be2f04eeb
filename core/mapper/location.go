package mapper

import (
	"fmt"
	"reflect"
)

// Location identifies where in a request raw data is read from.
type Location uint8

// The set of locations is closed; each one maps to exactly one integration method.
const (
	QueryString Location = iota + 1
	RequestBody
	FormData
)

// String returns the canonical location tag used in error reports.
func (l Location) String() string {
	switch l {
	case QueryString:
		return "query-string"
	case RequestBody:
		return "request-body"
	case FormData:
		return "form-data"
	}
	return fmt.Sprintf("location(%d)", uint8(l))
}

// MarshalText implements encoding.TextMarshaler.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// readsBody reports whether fetching l consumes the request body.
func (l Location) readsBody() bool {
	return l == RequestBody || l == FormData
}

// TagName returns the struct tag consulted first when decoding data from this location.
func (l Location) TagName() string {
	switch l {
	case QueryString:
		return "query"
	case FormData:
		return "form"
	}
	return "json"
}

// marker is implemented by the parameter types that request binding.
type marker interface {
	location() Location
	target() reflect.Type
}

// setter stores a validated instance into a marker.
type setter interface {
	set(v reflect.Value)
}

// Query marks a handler parameter bound from the query string.
//
//	func search(w http.ResponseWriter, r *http.Request, q mapper.Query[SearchParams]) { ... }
type Query[T any] struct {
	Value T
	bound bool
}

// Bound reports whether data was present and Value holds a validated instance.
func (q Query[T]) Bound() bool { return q.bound }

func (Query[T]) location() Location    { return QueryString }
func (Query[T]) target() reflect.Type  { return reflect.TypeFor[T]() }
func (q *Query[T]) set(v reflect.Value) { q.Value, q.bound = v.Interface().(T), true }

// Body marks a handler parameter bound from the request body.
type Body[T any] struct {
	Value T
	bound bool
}

// Bound reports whether data was present and Value holds a validated instance.
func (b Body[T]) Bound() bool { return b.bound }

func (Body[T]) location() Location    { return RequestBody }
func (Body[T]) target() reflect.Type  { return reflect.TypeFor[T]() }
func (b *Body[T]) set(v reflect.Value) { b.Value, b.bound = v.Interface().(T), true }

// Form marks a handler parameter bound from form data.
type Form[T any] struct {
	Value T
	bound bool
}

// Bound reports whether data was present and Value holds a validated instance.
func (f Form[T]) Bound() bool { return f.bound }

func (Form[T]) location() Location    { return FormData }
func (Form[T]) target() reflect.Type  { return reflect.TypeFor[T]() }
func (f *Form[T]) set(v reflect.Value) { f.Value, f.bound = v.Interface().(T), true }
