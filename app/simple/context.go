package simple

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/requestmapper/core/handler"
)

// Context is the handler context of the app. It carries the app logger next to
// the request.
type Context struct {
	handler.Context
	logger *slog.Logger
}

// Logger returns the app logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

func (a *App) newContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{Context: handler.NewContext(w, r), logger: a.logger}
}
