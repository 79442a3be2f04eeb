package response

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/requestmapper/core/handler"
)

// Value picks a response for an arbitrary handler result:
//
//	nil                -> 204 No Content
//	handler.Response   -> itself
//	templ.Component    -> text/html
//	string             -> text/plain
//	[]byte             -> application/octet-stream
//	error              -> propagated to the error handler
//	anything else      -> application/json
func Value(v any) handler.Response {
	switch val := v.(type) {
	case nil:
		return NoContent()
	case handler.Response:
		return val
	case func(http.ResponseWriter, *http.Request) error:
		return val
	case templ.Component:
		return Templ(val)
	case string:
		return String(val)
	case []byte:
		return Bytes(val, "application/octet-stream", http.StatusOK)
	case error:
		return Error(val)
	}
	return JSON(v)
}
