package mapper

import "context"

// Values is a raw mapping of field name to value fetched from one request location.
// A nil Values means the location carried no data; an empty non-nil map means
// the data was present but had no fields.
type Values map[string]any

// Call describes one invocation of a mapped handler. Args holds the arguments
// the caller passed, in order, without the marker parameters.
type Call struct {
	Fn   any
	Args []any
}

// Arg returns the first argument of type T in the call.
func Arg[T any](call Call) (T, bool) {
	for _, a := range call.Args {
		if v, ok := a.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Decorator is the function shape of MapRequest, handed to integrations during setup.
type Decorator func(fn any) any

// Integrator is the part shared by both integration variants.
// SetUp is called once by Setup; adapters use it to register error translation
// or anything else their framework needs.
type Integrator interface {
	SetUp(mapRequest Decorator)
}

// Integration supplies raw request data to plain (non context-aware) handlers.
type Integration interface {
	Integrator
	Query(call Call) (Values, error)
	Body(call Call) (Values, error)
}

// FormIntegration is implemented by integrations that can read form data.
type FormIntegration interface {
	Form(call Call) (Values, error)
}

// ContextIntegration supplies raw request data to context-aware handlers,
// those whose first parameter implements context.Context.
type ContextIntegration interface {
	Integrator
	Query(ctx context.Context, call Call) (Values, error)
	Body(ctx context.Context, call Call) (Values, error)
}

// ContextFormIntegration is implemented by context integrations that can read form data.
type ContextFormIntegration interface {
	Form(ctx context.Context, call Call) (Values, error)
}
