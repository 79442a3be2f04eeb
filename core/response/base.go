package response

import (
	"net/http"

	"github.com/dmitrymomot/requestmapper/core/handler"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
)

// Render writes resp for the request held by ctx. A rendering error that
// reaches Render is answered with a bare 500.
func Render(ctx handler.Context, resp handler.Response) {
	if resp == nil {
		return
	}
	if err := resp(ctx.ResponseWriter(), ctx.Request()); err != nil {
		http.Error(ctx.ResponseWriter(), err.Error(), http.StatusInternalServerError)
	}
}

// String renders content as text/plain with 200.
func String(content string) handler.Response {
	return StringWithStatus(content, http.StatusOK)
}

func StringWithStatus(content string, status int) handler.Response {
	return Bytes([]byte(content), contentTypeText, status)
}

// Bytes renders content as is. An empty contentType leaves the header unset
// and a zero status means 200.
func Bytes(content []byte, contentType string, status int) handler.Response {
	return func(w http.ResponseWriter, _ *http.Request) error {
		return write(w, content, contentType, status)
	}
}

// NoContent renders an empty 204.
func NoContent() handler.Response {
	return Status(http.StatusNoContent)
}

// Status renders an empty body with code.
func Status(code int) handler.Response {
	return func(w http.ResponseWriter, _ *http.Request) error {
		return write(w, nil, "", code)
	}
}

func write(w http.ResponseWriter, body []byte, contentType string, status int) error {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}
