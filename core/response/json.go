package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/requestmapper/core/handler"
)

// JSON renders v as JSON with 200.
func JSON(v any) handler.Response {
	return JSONWithStatus(v, http.StatusOK)
}

// JSONWithStatus renders v as JSON. The value is encoded before anything is
// written, so an encoding failure is returned with the response still untouched
// and the error handler can answer instead. A zero status means 200, or 204 for
// a nil v; 204 and 304 carry no body.
func JSONWithStatus(v any, status int) handler.Response {
	return func(w http.ResponseWriter, _ *http.Request) error {
		if status == 0 {
			status = http.StatusOK
			if v == nil {
				status = http.StatusNoContent
			}
		}
		if status == http.StatusNoContent || status == http.StatusNotModified {
			return write(w, nil, contentTypeJSON, status)
		}

		body, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode json response: %w", err)
		}
		return write(w, append(body, '\n'), contentTypeJSON, status)
	}
}
