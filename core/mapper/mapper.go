package mapper

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"runtime"

	"github.com/dmitrymomot/requestmapper/core/logger"
)

// Mapped is the result of wrapping a handler.
type Mapped struct {
	// Func is the callable to register with the framework. It equals Original
	// when the handler declares no marker parameters.
	Func any
	// Original is the handler as written.
	Original any
	// Name is the fully qualified name of Original, for logs and route tables.
	Name string
	// Descriptors lists the marker parameters of Original by position.
	Descriptors []Descriptor
	// ContextAware is true when the first non-marker parameter is a context.Context.
	ContextAware bool
}

// Wrap inspects fn and builds a wrapper whose signature is fn's signature with
// every marker parameter removed. Calling the wrapper fetches, validates and
// binds request data for those parameters, then calls fn with the remaining
// arguments passed through untouched.
func Wrap(fn any) (*Mapped, error) {
	descriptors, err := Inspect(fn)
	if err != nil {
		return nil, err
	}

	m := &Mapped{
		Func:        fn,
		Original:    fn,
		Name:        funcName(fn),
		Descriptors: descriptors,
	}
	if len(descriptors) == 0 {
		return m, nil
	}

	w := newWrapper(fn, descriptors)
	m.ContextAware = w.contextAware
	m.Func = reflect.MakeFunc(w.outer, w.call).Interface()
	return m, nil
}

// MapRequest returns fn wrapped for request binding, or fn itself when it has no
// marker parameters. It panics when fn is not a function, so it is meant to be
// used while registering routes.
//
//	mux.Handle("/search", nethttp.Handler(mapper.MapRequest(search)))
func MapRequest(fn any) any {
	m, err := Wrap(fn)
	if err != nil {
		panic(err)
	}
	return m.Func
}

// MapRequestFunc wraps fn and asserts the wrapper has type F.
//
//	h, err := mapper.MapRequestFunc[func(http.ResponseWriter, *http.Request) error](create)
func MapRequestFunc[F any](fn any) (F, error) {
	var zero F
	m, err := Wrap(fn)
	if err != nil {
		return zero, err
	}
	f, ok := m.Func.(F)
	if !ok {
		return zero, fmt.Errorf("%w: %T is not %s", ErrSignatureMismatch, m.Func, reflect.TypeFor[F]())
	}
	return f, nil
}

func funcName(fn any) string {
	if f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()); f != nil {
		return f.Name()
	}
	return ""
}

// wrapper holds everything derived from the signature at decoration time.
type wrapper struct {
	fn           reflect.Value
	name         string
	inner        reflect.Type
	outer        reflect.Type
	descriptors  []Descriptor
	positions    []int // outer argument index -> inner parameter index
	contextAware bool
	returnsError bool
	convertible  bool
}

func newWrapper(fn any, descriptors []Descriptor) *wrapper {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()

	skip := make(map[int]struct{}, len(descriptors))
	for _, d := range descriptors {
		skip[d.Index] = struct{}{}
	}

	ins := make([]reflect.Type, 0, ft.NumIn()-len(descriptors))
	positions := make([]int, 0, cap(ins))
	for i := range ft.NumIn() {
		if _, ok := skip[i]; ok {
			continue
		}
		ins = append(ins, ft.In(i))
		positions = append(positions, i)
	}
	outs := make([]reflect.Type, ft.NumOut())
	for i := range outs {
		outs[i] = ft.Out(i)
	}

	w := &wrapper{
		fn:          fv,
		name:        funcName(fn),
		inner:       ft,
		outer:       reflect.FuncOf(ins, outs, ft.IsVariadic()),
		descriptors: descriptors,
		positions:   positions,
	}
	w.contextAware = len(ins) > 0 && ins[0].Implements(contextType)
	w.returnsError = ft.NumOut() > 0 && ft.Out(ft.NumOut()-1) == errorType
	w.convertible = ft.NumOut() > 0 && ft.Out(0).Kind() == reflect.Interface && ft.Out(0) != errorType
	return w
}

func (w *wrapper) call(args []reflect.Value) []reflect.Value {
	h := active.Load()
	if h == nil {
		return w.fail(nil, ErrNotConfigured)
	}

	call := Call{Fn: w.fn.Interface(), Args: make([]any, len(args))}
	for i, a := range args {
		call.Args[i] = a.Interface()
	}

	var (
		bindings []binding
		err      error
	)
	if w.contextAware {
		bindings, err = bindContext(contextOf(args[0]), h, w.descriptors, call)
	} else {
		bindings, err = bindSync(h, w.descriptors, call)
	}
	if err != nil {
		return w.fail(h, err)
	}

	in := make([]reflect.Value, w.inner.NumIn())
	for i, a := range args {
		in[w.positions[i]] = a
	}
	for _, d := range w.descriptors {
		in[d.Index] = reflect.Zero(d.Param)
	}
	for _, b := range bindings {
		m := reflect.New(b.desc.Param)
		m.Interface().(setter).set(b.value)
		in[b.desc.Index] = m.Elem()
	}

	var out []reflect.Value
	if w.inner.IsVariadic() {
		out = w.fn.CallSlice(in)
	} else {
		out = w.fn.Call(in)
	}
	return w.convert(h, out)
}

// convert applies the response converter to the first result.
func (w *wrapper) convert(h *handle, out []reflect.Value) []reflect.Value {
	if h.converter == nil || !w.convertible {
		return out
	}
	if w.returnsError && !out[len(out)-1].IsNil() {
		return out
	}

	declared := w.inner.Out(0)
	converted := h.converter(out[0].Interface())
	if converted == nil {
		out[0] = reflect.Zero(declared)
		return out
	}
	cv := reflect.ValueOf(converted)
	if !cv.Type().AssignableTo(declared) {
		return w.fail(h, fmt.Errorf("%w: %T does not implement %s", ErrConverterResult, converted, declared))
	}
	v := reflect.New(declared).Elem()
	v.Set(cv)
	out[0] = v
	return out
}

// fail surfaces err through the handler's error result, or panics when the
// handler has none.
func (w *wrapper) fail(h *handle, err error) []reflect.Value {
	l := slog.Default()
	if h != nil {
		l = h.logger
	}
	if _, ok := AsValidationError(err); ok {
		l.Debug("request data rejected", logger.Component("mapper"), logger.Handler(w.name), logger.Error(err))
	} else {
		l.Error("request binding failed", logger.Component("mapper"), logger.Handler(w.name), logger.Error(err))
	}

	if !w.returnsError {
		panic(err)
	}
	out := make([]reflect.Value, w.inner.NumOut())
	for i := range out {
		out[i] = reflect.Zero(w.inner.Out(i))
	}
	ev := reflect.New(errorType).Elem()
	ev.Set(reflect.ValueOf(err))
	out[len(out)-1] = ev
	return out
}

func contextOf(v reflect.Value) context.Context {
	if v.Kind() == reflect.Interface && v.IsNil() {
		return context.Background()
	}
	ctx, ok := v.Interface().(context.Context)
	if !ok || ctx == nil {
		return context.Background()
	}
	return ctx
}
