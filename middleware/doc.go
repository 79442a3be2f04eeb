// Package middleware provides handler.Middleware implementations used around
// mapped handlers: request IDs, request logging and panic recovery.
//
//	h := handler.Chain(final,
//		middleware.RequestID[handler.Context](),
//		middleware.Logging[handler.Context](),
//		middleware.Recover[handler.Context](log),
//	)
//
// Recover should sit inside Logging so recovered errors are logged with the
// status the error handler will render.
package middleware
