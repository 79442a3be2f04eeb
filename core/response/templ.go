package response

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/requestmapper/core/handler"
)

// Templ renders component as HTML with 200. The request context is handed to
// the component, so request-scoped values such as the request ID are visible.
func Templ(component templ.Component) handler.Response {
	return TemplWithStatus(component, http.StatusOK)
}

// TemplWithStatus renders component with status. A nil component renders 204.
func TemplWithStatus(component templ.Component, status int) handler.Response {
	if component == nil {
		return NoContent()
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		var buf bytes.Buffer
		if err := component.Render(r.Context(), &buf); err != nil {
			return fmt.Errorf("render templ component: %w", err)
		}
		return write(w, buf.Bytes(), contentTypeHTML, status)
	}
}
