// Package mapper binds request data to handler parameters declared with marker
// types, independent of the web framework serving the request.
//
// A handler opts in by declaring parameters of type Query[T], Body[T] or Form[T]
// where T is a struct (or pointer to struct):
//
//	type SearchParams struct {
//		Query string `query:"q" validate:"required"`
//		Page  int    `query:"page" default:"1"`
//	}
//
//	func search(w http.ResponseWriter, r *http.Request, p mapper.Query[SearchParams]) error {
//		if !p.Bound() {
//			// no query string at all
//		}
//		...
//	}
//
// MapRequest returns a function with the marker parameters removed from the
// signature, here func(http.ResponseWriter, *http.Request) error. On every call
// it asks the active integration for the raw data of each location, decodes and
// validates it with the validator package, and calls the original handler with
// the bound markers spliced back in. Other arguments pass through unchanged.
//
// # Integrations
//
// Setup installs the framework adapter once at program start:
//
//	mapper.MustSetup(nethttp.New(nethttp.DefaultConfig()))
//
// Plain handlers are served by an Integration. Handlers whose first non-marker
// parameter is a context.Context are served by a ContextIntegration, which gets
// that context for every fetch and may fetch locations concurrently when
// WithParallelFetch is set. Form data requires the FormIntegration (or
// ContextFormIntegration) capability.
//
// A location returning nil Values is absent: the marker is left unbound and
// Bound reports false. Invalid data aborts the call with a *ValidationError
// naming the location and listing every field error.
//
// # Errors
//
// When the handler's last result is an error, binding errors are returned there
// with every other result zeroed. Otherwise the wrapper panics with the error,
// for the integration's recovery to translate. Configuration mistakes wrap
// ErrConfiguration and are never request errors.
//
// # Response Conversion
//
// WithResponseConverter post-processes the first result of handlers declaring
// an interface first result, such as any:
//
//	mapper.MustSetup(integration, mapper.WithResponseConverter(mapper.ModelToMap))
package mapper
