package nethttp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/requestmapper/core/binder"
	"github.com/dmitrymomot/requestmapper/core/logger"
	"github.com/dmitrymomot/requestmapper/core/mapper"
	"github.com/dmitrymomot/requestmapper/core/response"
)

// ErrNoRequest is returned when a mapped call carries no *http.Request argument.
var ErrNoRequest = errors.New("nethttp: function call does not contain an *http.Request")

// ErrUnsupportedHandler is the panic value of Handler for handler shapes it cannot serve.
var ErrUnsupportedHandler = errors.New("nethttp: unsupported handler signature")

// Integration serves plain net/http handlers. It implements mapper.Integration
// and mapper.FormIntegration.
type Integration struct {
	query        binder.Extractor
	body         binder.Extractor
	form         binder.Extractor
	cfg          Config
	logger       *slog.Logger
	errorHandler func(w http.ResponseWriter, r *http.Request, err error)
	mapRequest   mapper.Decorator
}

// Option configures an Integration.
type Option func(*Integration)

// WithLogger sets the logger for request failures (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(i *Integration) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithErrorHandler replaces the default JSON error rendering.
func WithErrorHandler(fn func(w http.ResponseWriter, r *http.Request, err error)) Option {
	return func(i *Integration) {
		if fn != nil {
			i.errorHandler = fn
		}
	}
}

// New creates an Integration. Zero limits fall back to the binder defaults.
func New(cfg Config, opts ...Option) *Integration {
	if cfg.RequestIDHeader == "" {
		cfg.RequestIDHeader = DefaultConfig().RequestIDHeader
	}
	i := &Integration{
		query:        binder.Query(),
		body:         binder.JSON(cfg.MaxJSONSize),
		form:         binder.Form(cfg.MaxMemory),
		cfg:          cfg,
		logger:       slog.Default(),
		errorHandler: response.WriteJSONError,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SetUp keeps the decorator so Handler can wrap functions itself.
func (i *Integration) SetUp(mapRequest mapper.Decorator) {
	i.mapRequest = mapRequest
	i.logger.Debug("request mapper integration ready", logger.Component("nethttp"))
}

// Query implements mapper.Integration.
func (i *Integration) Query(call mapper.Call) (mapper.Values, error) {
	return i.extract(i.query, call)
}

// Body implements mapper.Integration.
func (i *Integration) Body(call mapper.Call) (mapper.Values, error) {
	return i.extract(i.body, call)
}

// Form implements mapper.FormIntegration.
func (i *Integration) Form(call mapper.Call) (mapper.Values, error) {
	return i.extract(i.form, call)
}

func (i *Integration) extract(fn binder.Extractor, call mapper.Call) (mapper.Values, error) {
	r, ok := mapper.Arg[*http.Request](call)
	if !ok || r == nil {
		return nil, ErrNoRequest
	}
	data, err := fn(r)
	if err != nil {
		return nil, err
	}
	return mapper.Values(data), nil
}

// Handler wraps fn for request binding and adapts it to http.Handler.
// After marker parameters are removed fn must have one of these shapes:
//
//	func(http.ResponseWriter, *http.Request)
//	func(http.ResponseWriter, *http.Request) error
//	func(http.ResponseWriter, *http.Request) (any, error)
//
// A non-nil result of the last shape is rendered with response.Value. Errors,
// including panics, are rendered by the error handler. Handler panics with
// ErrUnsupportedHandler for any other shape, so call it while registering routes.
func (i *Integration) Handler(fn any) http.Handler {
	mapRequest := i.mapRequest
	if mapRequest == nil {
		mapRequest = mapper.MapRequest
	}

	var serve func(w http.ResponseWriter, r *http.Request) error
	switch h := mapRequest(fn).(type) {
	case func(http.ResponseWriter, *http.Request):
		serve = func(w http.ResponseWriter, r *http.Request) error {
			h(w, r)
			return nil
		}
	case func(http.ResponseWriter, *http.Request) error:
		serve = h
	case func(http.ResponseWriter, *http.Request) (any, error):
		serve = func(w http.ResponseWriter, r *http.Request) error {
			v, err := h(w, r)
			if err != nil {
				return err
			}
			if v == nil {
				return nil
			}
			return response.Value(v)(w, r)
		}
	default:
		panic(fmt.Errorf("%w: %T", ErrUnsupportedHandler, h))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(i.cfg.RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		r = r.WithContext(logger.ContextWithRequestID(r.Context(), id))
		w.Header().Set(i.cfg.RequestIDHeader, id)

		if err := i.run(serve, w, r); err != nil {
			i.fail(w, r, err)
		}
	})
}

// run calls serve, turning panics into errors.
func (i *Integration) run(serve func(http.ResponseWriter, *http.Request) error, w http.ResponseWriter, r *http.Request) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return serve(w, r)
}

func (i *Integration) fail(w http.ResponseWriter, r *http.Request, err error) {
	attrs := []slog.Attr{
		logger.Component("nethttp"),
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.Error(err),
	}
	if verr, ok := mapper.AsValidationError(err); ok {
		attrs = append(attrs, logger.Location(verr.Location.String()), logger.Count("field_errors", len(verr.Errors)))
		i.logger.LogAttrs(r.Context(), slog.LevelInfo, "request rejected", attrs...)
	} else {
		i.logger.LogAttrs(r.Context(), slog.LevelError, "request failed", attrs...)
	}
	i.errorHandler(w, r, err)
}
