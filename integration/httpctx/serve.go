package httpctx

import (
	"net/http"

	"github.com/dmitrymomot/requestmapper/core/handler"
	"github.com/dmitrymomot/requestmapper/core/response"
)

type serveConfig[C handler.Context] struct {
	newContext   func(w http.ResponseWriter, r *http.Request) C
	errorHandler handler.ErrorHandler[C]
	middlewares  []handler.Middleware[C]
}

// ServeOption configures Serve.
type ServeOption[C handler.Context] func(*serveConfig[C])

// WithContextFactory sets how the handler context is built. Required unless C
// is handler.Context.
func WithContextFactory[C handler.Context](fn func(w http.ResponseWriter, r *http.Request) C) ServeOption[C] {
	return func(c *serveConfig[C]) {
		c.newContext = fn
	}
}

// WithErrorHandler sets the error handler (default: response.JSONErrorHandler).
func WithErrorHandler[C handler.Context](fn handler.ErrorHandler[C]) ServeOption[C] {
	return func(c *serveConfig[C]) {
		if fn != nil {
			c.errorHandler = fn
		}
	}
}

// WithMiddleware wraps the handler; the first middleware is the outermost.
func WithMiddleware[C handler.Context](mws ...handler.Middleware[C]) ServeOption[C] {
	return func(c *serveConfig[C]) {
		c.middlewares = append(c.middlewares, mws...)
	}
}

// Serve adapts h to http.Handler. Errors returned while rendering the response
// are passed to the error handler.
//
//	mux.Handle("POST /items", httpctx.Serve(httpctx.Handler[handler.Context](create)))
func Serve[C handler.Context](h handler.HandlerFunc[C], opts ...ServeOption[C]) http.Handler {
	cfg := &serveConfig[C]{errorHandler: response.JSONErrorHandler[C]}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.newContext == nil {
		var zero C
		if _, ok := any(&zero).(*handler.Context); !ok {
			panic("httpctx: WithContextFactory is required for custom context types")
		}
		cfg.newContext = func(w http.ResponseWriter, r *http.Request) C {
			return any(handler.NewContext(w, r)).(C)
		}
	}
	h = handler.Chain(h, cfg.middlewares...)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := cfg.newContext(w, r)
		resp := h(ctx)
		if resp == nil {
			return
		}
		if err := resp(ctx.ResponseWriter(), ctx.Request()); err != nil {
			cfg.errorHandler(ctx, err)
		}
	})
}
