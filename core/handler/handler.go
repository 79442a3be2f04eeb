package handler

import "net/http"

// Response writes the reply for one request. A returned error is passed to the
// ErrorHandler of whatever serves the handler.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc handles a request through the context type C.
type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler answers a request whose Response failed.
type ErrorHandler[C Context] func(ctx C, err error)

type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]

// Chain applies middlewares to h so that middlewares[0] runs first.
func Chain[C Context](h HandlerFunc[C], middlewares ...Middleware[C]) HandlerFunc[C] {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
