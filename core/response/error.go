package response

import (
	"net/http"

	"github.com/dmitrymomot/requestmapper/core/handler"
)

// Error writes nothing and hands err to the error handler of the caller.
func Error(err error) handler.Response {
	return func(http.ResponseWriter, *http.Request) error {
		return err
	}
}
