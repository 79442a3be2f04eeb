package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/requestmapper/core/handler"
	"github.com/dmitrymomot/requestmapper/core/logger"
)

// maxRequestIDLength bounds an ID accepted from the client.
const maxRequestIDLength = 128

type RequestIDConfig struct {
	// Skip, when it returns true, passes the request through untouched.
	Skip func(ctx handler.Context) bool
	// Generator makes a new ID. Defaults to a random UUID.
	Generator func() string
	// HeaderName is read from requests and written to responses. Defaults to X-Request-ID.
	HeaderName string
	// UseExisting accepts an incoming ID when it is printable ASCII and at most
	// 128 bytes long.
	UseExisting bool
}

// RequestID tags every request with a fresh UUID.
func RequestID[C handler.Context]() handler.Middleware[C] {
	return RequestIDWithConfig[C](RequestIDConfig{})
}

// RequestIDWithConfig tags every request with an ID. The ID is put into the
// request context, where loggers built by logger.New and GetRequestID find it,
// and is echoed in the response header.
func RequestIDWithConfig[C handler.Context](cfg RequestIDConfig) handler.Middleware[C] {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Request-ID"
	}
	if cfg.Generator == nil {
		cfg.Generator = uuid.NewString
	}

	idFor := func(r *http.Request) string {
		if cfg.UseExisting {
			if id := r.Header.Get(cfg.HeaderName); validRequestID(id) {
				return id
			}
		}
		return cfg.Generator()
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			id := idFor(ctx.Request())
			ctx.SetValue(logger.RequestIDKey{}, id)
			resp := next(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				w.Header().Set(cfg.HeaderName, id)
				if resp == nil {
					return nil
				}
				return resp(w, r)
			}
		}
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID returns the ID stored by the RequestID middleware.
func GetRequestID(ctx handler.Context) (string, bool) {
	return logger.RequestIDFromContext(ctx)
}
