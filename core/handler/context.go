package handler

import (
	"context"
	"net/http"
	"time"
)

// Context defines the contract for request contexts in the framework.
// Use NewContext for the default implementation.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)
}

// baseContext delegates all context.Context methods to the request's context.
type baseContext struct {
	w http.ResponseWriter
	r *http.Request
}

// NewContext returns the default Context for a request.
// Param reads path wildcards registered with http.ServeMux patterns.
func NewContext(w http.ResponseWriter, r *http.Request) Context {
	return &baseContext{w: w, r: r}
}

func (c *baseContext) Deadline() (time.Time, bool) { return c.r.Context().Deadline() }
func (c *baseContext) Done() <-chan struct{}       { return c.r.Context().Done() }
func (c *baseContext) Err() error                  { return c.r.Context().Err() }
func (c *baseContext) Value(key any) any           { return c.r.Context().Value(key) }

// Request returns the *http.Request associated with the context.
func (c *baseContext) Request() *http.Request { return c.r }

// ResponseWriter returns the http.ResponseWriter associated with the context.
func (c *baseContext) ResponseWriter() http.ResponseWriter { return c.w }

// Param returns the value of the path wildcard named key.
func (c *baseContext) Param(key string) string { return c.r.PathValue(key) }

// SetValue stores a value in the request context, visible to later handlers.
func (c *baseContext) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}
