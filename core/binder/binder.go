package binder

import (
	"context"
	"mime"
	"net/http"
	"strings"
)

// Extractor reads one location of an HTTP request as a raw mapping of field
// name to value. A nil map with a nil error means the location carried no data.
type Extractor func(r *http.Request) (map[string]any, error)

// mediaType returns the lower-cased media type without parameters.
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Fall back to a plain split so a bad parameter doesn't hide the type
		mt, _, _ = strings.Cut(contentType, ";")
		mt = strings.ToLower(strings.TrimSpace(mt))
	}
	return mt
}

// canceled reports whether the request context is already done.
func canceled(r *http.Request) error {
	ctx := r.Context()
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	default:
		return nil
	}
}

// hasNoBody reports whether the request obviously carries no body.
func hasNoBody(r *http.Request) bool {
	return r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0
}
