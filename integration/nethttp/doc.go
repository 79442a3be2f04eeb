// Package nethttp connects the mapper package to plain net/http handlers.
//
//	integration := nethttp.New(nethttp.DefaultConfig())
//	mapper.MustSetup(integration)
//
//	type CreateItem struct {
//		Name  string  `json:"name" validate:"required;min:2"`
//		Price float64 `json:"price" validate:"positive"`
//	}
//
//	func create(w http.ResponseWriter, r *http.Request, body mapper.Body[CreateItem]) (any, error) {
//		return store.Create(r.Context(), body.Value)
//	}
//
//	mux := http.NewServeMux()
//	mux.Handle("POST /items", integration.Handler(create))
//
// Query strings, JSON bodies and forms are read with the binder package using the
// limits from Config, which NewFromConfig loads from MAPPER_* environment
// variables. Validation failures are rendered as 422 JSON responses by default.
// Every request gets a request ID, taken from the request header when present,
// that loggers built with logger.New include in their records.
package nethttp
