// Package handler provides the types shared by context-aware HTTP handlers,
// their responses and middleware.
//
//	type Response func(w http.ResponseWriter, r *http.Request) error
//	type HandlerFunc[C Context] func(ctx C) Response
//	type ErrorHandler[C Context] func(ctx C, err error)
//	type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]
//
// Context extends context.Context with access to the request and response
// writer, which makes every handler taking a Context first a context-aware
// handler for the mapper package:
//
//	func create(ctx handler.Context, body mapper.Body[CreateItem]) handler.Response {
//		return response.JSONWithStatus(body.Value, http.StatusCreated)
//	}
//
// NewContext is the default implementation. Chain composes middleware:
//
//	h := handler.Chain(final, middleware.RequestID[handler.Context](), middleware.Logging[handler.Context]())
package handler
