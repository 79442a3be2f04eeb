// Package httpctx connects the mapper package to context-aware handlers built on
// handler.Context, and serves them over net/http.
//
//	mapper.MustSetup(httpctx.New(nethttp.DefaultConfig()), mapper.WithParallelFetch())
//
//	func update(ctx handler.Context, q mapper.Query[Filter], body mapper.Body[Patch]) (any, error) {
//		return store.Update(ctx, ctx.Param("id"), q.Value, body.Value)
//	}
//
//	mux.Handle("PATCH /items/{id}", httpctx.Serve(
//		httpctx.Handler[handler.Context](update),
//		httpctx.WithMiddleware(
//			middleware.RequestID[handler.Context](),
//			middleware.Logging[handler.Context](),
//		),
//	))
//
// The handler context is passed to every fetch, so request cancellation stops
// binding. Errors, including binding failures, reach the error handler, which
// renders 422 for validation failures by default.
package httpctx
