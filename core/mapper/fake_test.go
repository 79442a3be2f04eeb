package mapper_test

import (
	"context"
	"sync"

	"github.com/dmitrymomot/requestmapper/core/mapper"
)

// fetchFunc produces the raw data for one location.
type fetchFunc func(ctx context.Context, call mapper.Call) (mapper.Values, error)

// recorder counts fetches per location.
type recorder struct {
	mu      sync.Mutex
	fetches []mapper.Location
	calls   []mapper.Call
	setUps  int
	mapFn   mapper.Decorator
}

func (r *recorder) SetUp(mapRequest mapper.Decorator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setUps++
	r.mapFn = mapRequest
}

func (r *recorder) record(loc mapper.Location, call mapper.Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches = append(r.fetches, loc)
	r.calls = append(r.calls, call)
}

func (r *recorder) count(loc mapper.Location) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.fetches {
		if l == loc {
			n++
		}
	}
	return n
}

func (r *recorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fetches)
}

func run(ctx context.Context, fn fetchFunc, call mapper.Call) (mapper.Values, error) {
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, call)
}

// plainIntegration serves plain handlers without form support.
type plainIntegration struct {
	recorder
	query fetchFunc
	body  fetchFunc
}

func (p *plainIntegration) Query(call mapper.Call) (mapper.Values, error) {
	p.record(mapper.QueryString, call)
	return run(context.Background(), p.query, call)
}

func (p *plainIntegration) Body(call mapper.Call) (mapper.Values, error) {
	p.record(mapper.RequestBody, call)
	return run(context.Background(), p.body, call)
}

// plainFormIntegration adds form support.
type plainFormIntegration struct {
	plainIntegration
	form fetchFunc
}

func (p *plainFormIntegration) Form(call mapper.Call) (mapper.Values, error) {
	p.record(mapper.FormData, call)
	return run(context.Background(), p.form, call)
}

// ctxIntegration serves context-aware handlers with form support.
type ctxIntegration struct {
	recorder
	query fetchFunc
	body  fetchFunc
	form  fetchFunc
}

func (c *ctxIntegration) Query(ctx context.Context, call mapper.Call) (mapper.Values, error) {
	c.record(mapper.QueryString, call)
	return run(ctx, c.query, call)
}

func (c *ctxIntegration) Body(ctx context.Context, call mapper.Call) (mapper.Values, error) {
	c.record(mapper.RequestBody, call)
	return run(ctx, c.body, call)
}

func (c *ctxIntegration) Form(ctx context.Context, call mapper.Call) (mapper.Values, error) {
	c.record(mapper.FormData, call)
	return run(ctx, c.form, call)
}

// ctxNoFormIntegration is a context integration without form support.
type ctxNoFormIntegration struct {
	recorder
}

func (c *ctxNoFormIntegration) Query(_ context.Context, call mapper.Call) (mapper.Values, error) {
	c.record(mapper.QueryString, call)
	return mapper.Values{}, nil
}

func (c *ctxNoFormIntegration) Body(_ context.Context, call mapper.Call) (mapper.Values, error) {
	c.record(mapper.RequestBody, call)
	return mapper.Values{}, nil
}

func values(v mapper.Values) fetchFunc {
	return func(context.Context, mapper.Call) (mapper.Values, error) {
		return v, nil
	}
}
