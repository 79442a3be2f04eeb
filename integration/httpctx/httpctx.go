package httpctx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/requestmapper/core/binder"
	"github.com/dmitrymomot/requestmapper/core/handler"
	"github.com/dmitrymomot/requestmapper/core/logger"
	"github.com/dmitrymomot/requestmapper/core/mapper"
	"github.com/dmitrymomot/requestmapper/core/response"
	"github.com/dmitrymomot/requestmapper/integration/nethttp"
)

// ErrNoRequest is returned when neither the handler context nor the call
// arguments carry an *http.Request.
var ErrNoRequest = errors.New("httpctx: function call does not contain request information")

// ErrUnsupportedHandler is the panic value of Handler for handler shapes it cannot serve.
var ErrUnsupportedHandler = errors.New("httpctx: unsupported handler signature")

// Integration serves context-aware handlers whose first parameter is a
// handler.Context. It implements mapper.ContextIntegration and
// mapper.ContextFormIntegration.
type Integration struct {
	query  binder.Extractor
	body   binder.Extractor
	form   binder.Extractor
	logger *slog.Logger
}

// Option configures an Integration.
type Option func(*Integration)

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(i *Integration) {
		if l != nil {
			i.logger = l
		}
	}
}

// New creates an Integration with the limits of cfg.
func New(cfg nethttp.Config, opts ...Option) *Integration {
	i := &Integration{
		query:  binder.Query(),
		body:   binder.JSON(cfg.MaxJSONSize),
		form:   binder.Form(cfg.MaxMemory),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SetUp implements mapper.Integrator.
func (i *Integration) SetUp(mapper.Decorator) {
	i.logger.Debug("request mapper integration ready", logger.Component("httpctx"))
}

// Query implements mapper.ContextIntegration.
func (i *Integration) Query(ctx context.Context, call mapper.Call) (mapper.Values, error) {
	return i.extract(ctx, i.query, call)
}

// Body implements mapper.ContextIntegration.
func (i *Integration) Body(ctx context.Context, call mapper.Call) (mapper.Values, error) {
	return i.extract(ctx, i.body, call)
}

// Form implements mapper.ContextFormIntegration.
func (i *Integration) Form(ctx context.Context, call mapper.Call) (mapper.Values, error) {
	return i.extract(ctx, i.form, call)
}

func (i *Integration) extract(ctx context.Context, fn binder.Extractor, call mapper.Call) (mapper.Values, error) {
	r := requestOf(ctx, call)
	if r == nil {
		return nil, ErrNoRequest
	}
	data, err := fn(r)
	if err != nil {
		return nil, err
	}
	return mapper.Values(data), nil
}

func requestOf(ctx context.Context, call mapper.Call) *http.Request {
	if hc, ok := ctx.(handler.Context); ok && hc.Request() != nil {
		return hc.Request()
	}
	if hc, ok := mapper.Arg[handler.Context](call); ok && hc.Request() != nil {
		return hc.Request()
	}
	if r, ok := mapper.Arg[*http.Request](call); ok {
		return r
	}
	return nil
}

// Handler wraps fn with mapper.MapRequest and adapts it to handler.HandlerFunc.
// After marker parameters are removed fn must have one of these shapes:
//
//	func(C) handler.Response
//	func(C) error
//	func(C) any
//	func(C) (any, error)
//
// Results other than handler.Response are rendered with response.Value.
// Binding errors and panics become response.Error values for the error handler.
// Handler panics with ErrUnsupportedHandler for any other shape.
func Handler[C handler.Context](fn any) handler.HandlerFunc[C] {
	var h handler.HandlerFunc[C]
	switch f := mapper.MapRequest(fn).(type) {
	case func(C) handler.Response:
		h = f
	case handler.HandlerFunc[C]:
		h = f
	case func(C) error:
		h = func(ctx C) handler.Response {
			if err := f(ctx); err != nil {
				return response.Error(err)
			}
			return response.NoContent()
		}
	case func(C) any:
		h = func(ctx C) handler.Response {
			return response.Value(f(ctx))
		}
	case func(C) (any, error):
		h = func(ctx C) handler.Response {
			v, err := f(ctx)
			if err != nil {
				return response.Error(err)
			}
			return response.Value(v)
		}
	default:
		panic(fmt.Errorf("%w: %T", ErrUnsupportedHandler, f))
	}

	return func(ctx C) (resp handler.Response) {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				resp = response.Error(err)
			}
		}()
		return h(ctx)
	}
}
