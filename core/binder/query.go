package binder

import (
	"net/http"
	"net/url"
)

// Query returns an extractor for the URL query string.
//
// Keys with one value map to a string, repeated keys map to []string:
//
//	?q=go&tag=web&tag=api  ->  {"q": "go", "tag": []string{"web", "api"}}
//
// The result is never nil: a request without a query string yields an empty
// mapping, so required fields are reported as missing.
func Query() Extractor {
	return func(r *http.Request) (map[string]any, error) {
		if r.URL == nil {
			return map[string]any{}, nil
		}
		return flatten(r.URL.Query()), nil
	}
}

// flatten converts url.Values into a raw mapping, sanitizing every value.
func flatten(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
			continue
		case 1:
			out[key] = sanitizeString(vals[0])
		default:
			clean := make([]string, len(vals))
			for i, v := range vals {
				clean[i] = sanitizeString(v)
			}
			out[key] = clean
		}
	}
	return out
}
