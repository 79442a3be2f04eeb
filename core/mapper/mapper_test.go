package mapper_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/requestmapper/core/mapper"
	"github.com/dmitrymomot/requestmapper/core/validator"
)

// These tests install process-wide configuration, so none of them run in parallel.

type SearchParams struct {
	Query string `query:"q" validate:"required"`
	Page  int    `query:"page" default:"1"`
}

type CreateItem struct {
	Name  string  `json:"name" validate:"required;min:2"`
	Price float64 `json:"price"`
}

type Contact struct {
	Email string `form:"email" validate:"required;email"`
}

func setup(t *testing.T, integration mapper.Integrator, opts ...mapper.Option) {
	t.Helper()
	require.NoError(t, mapper.Setup(integration, opts...))
	t.Cleanup(mapper.Reset)
}

func TestMapRequest_Identity(t *testing.T) {
	t.Run("no_markers", func(t *testing.T) {
		fn := func(a int, b string) string { return fmt.Sprint(a, b) }
		got := mapper.MapRequest(fn)
		assert.Equal(t, reflect.ValueOf(fn).Pointer(), reflect.ValueOf(got).Pointer())
	})

	t.Run("marker_over_non_struct", func(t *testing.T) {
		fn := func(q mapper.Query[int]) int { return q.Value }
		got := mapper.MapRequest(fn)
		assert.Equal(t, reflect.ValueOf(fn).Pointer(), reflect.ValueOf(got).Pointer())

		descriptors, err := mapper.Inspect(fn)
		require.NoError(t, err)
		assert.Empty(t, descriptors)
	})

	t.Run("not_a_function", func(t *testing.T) {
		assert.Panics(t, func() { mapper.MapRequest(42) })

		_, err := mapper.Wrap(nil)
		require.ErrorIs(t, err, mapper.ErrNotAFunction)
	})
}

func TestInspect(t *testing.T) {
	fn := func(ctx context.Context, q mapper.Query[SearchParams], id string, b mapper.Body[*CreateItem], f mapper.Form[Contact]) error {
		return nil
	}

	descriptors, err := mapper.Inspect(fn)
	require.NoError(t, err)
	require.Len(t, descriptors, 3)

	assert.Equal(t, 1, descriptors[0].Index)
	assert.Equal(t, mapper.QueryString, descriptors[0].Location)
	assert.Equal(t, reflect.TypeFor[SearchParams](), descriptors[0].Target)

	assert.Equal(t, 3, descriptors[1].Index)
	assert.Equal(t, mapper.RequestBody, descriptors[1].Location)
	assert.Equal(t, reflect.TypeFor[*CreateItem](), descriptors[1].Target)

	assert.Equal(t, 4, descriptors[2].Index)
	assert.Equal(t, mapper.FormData, descriptors[2].Location)
	assert.Equal(t, reflect.TypeFor[mapper.Form[Contact]](), descriptors[2].Param)
}

func TestWrap_Signature(t *testing.T) {
	m, err := mapper.Wrap(func(ctx context.Context, id string, q mapper.Query[SearchParams]) (any, error) {
		return nil, nil
	})
	require.NoError(t, err)

	assert.True(t, m.ContextAware)
	assert.Len(t, m.Descriptors, 1)
	assert.Contains(t, m.Name, "TestWrap_Signature")
	_, ok := m.Func.(func(context.Context, string) (any, error))
	assert.True(t, ok, "wrapper type %T", m.Func)
}

func TestMapRequestFunc(t *testing.T) {
	fn := func(id string, q mapper.Query[SearchParams]) error { return nil }

	t.Run("matching_type", func(t *testing.T) {
		h, err := mapper.MapRequestFunc[func(string) error](fn)
		require.NoError(t, err)
		assert.NotNil(t, h)
	})

	t.Run("mismatch", func(t *testing.T) {
		_, err := mapper.MapRequestFunc[func() error](fn)
		require.ErrorIs(t, err, mapper.ErrSignatureMismatch)
	})
}

func TestBind_Query(t *testing.T) {
	in := &plainIntegration{query: values(mapper.Values{"q": "golang", "page": "3"})}
	setup(t, in)

	var got mapper.Query[SearchParams]
	h := mapper.MapRequest(func(id string, q mapper.Query[SearchParams]) error {
		assert.Equal(t, "abc", id)
		got = q
		return nil
	}).(func(string) error)

	require.NoError(t, h("abc"))
	assert.True(t, got.Bound())
	assert.Equal(t, SearchParams{Query: "golang", Page: 3}, got.Value)
	assert.Equal(t, 1, in.count(mapper.QueryString))
	assert.Equal(t, 0, in.count(mapper.RequestBody))
	require.Len(t, in.calls, 1)
	assert.Equal(t, []any{"abc"}, in.calls[0].Args)
}

func TestBind_FetchPerCall(t *testing.T) {
	in := &plainIntegration{query: values(mapper.Values{"q": "x"})}
	setup(t, in)

	h := mapper.MapRequest(func(q mapper.Query[SearchParams]) string { return q.Value.Query }).(func() string)
	for range 3 {
		assert.Equal(t, "x", h())
	}
	assert.Equal(t, 3, in.count(mapper.QueryString))
}

func TestBind_AbsentData(t *testing.T) {
	in := &plainIntegration{}
	setup(t, in)

	called := false
	h := mapper.MapRequest(func(q mapper.Query[SearchParams]) error {
		called = true
		assert.False(t, q.Bound())
		assert.Equal(t, SearchParams{}, q.Value)
		return nil
	}).(func() error)

	require.NoError(t, h())
	assert.True(t, called)
	assert.Equal(t, 1, in.count(mapper.QueryString))
}

func TestBind_ValidationFailure(t *testing.T) {
	in := &plainIntegration{
		query: values(mapper.Values{}),
		body:  values(mapper.Values{"name": "ok"}),
	}
	setup(t, in)

	called := false
	h := mapper.MapRequest(func(q mapper.Query[SearchParams], b mapper.Body[CreateItem]) error {
		called = true
		return nil
	}).(func() error)

	err := h()
	require.Error(t, err)
	assert.False(t, called)
	assert.ErrorIs(t, err, mapper.ErrValidation)

	verr, ok := mapper.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, mapper.QueryString, verr.Location)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, validator.KindMissing, verr.Errors[0].Kind)
	assert.Equal(t, []string{"q"}, verr.Errors[0].Path)

	// The failing location aborts before later locations are read
	assert.Equal(t, 0, in.count(mapper.RequestBody))
}

func TestBind_ValidationFailurePanicsWithoutErrorResult(t *testing.T) {
	in := &plainIntegration{body: values(mapper.Values{"name": "x"})}
	setup(t, in)

	h := mapper.MapRequest(func(b mapper.Body[CreateItem]) string { return b.Value.Name }).(func() string)

	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		err, ok := rec.(error)
		require.True(t, ok)
		verr, ok := mapper.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, mapper.RequestBody, verr.Location)
		assert.Equal(t, "min", verr.Errors[0].Kind)
	}()
	h()
}

func TestBind_QueryAndBody(t *testing.T) {
	in := &plainIntegration{
		query: values(mapper.Values{"q": "shoes"}),
		body:  values(mapper.Values{"name": "boots", "price": 12.5}),
	}
	setup(t, in)

	h := mapper.MapRequest(func(prefix string, q mapper.Query[SearchParams], n int, b mapper.Body[*CreateItem]) (string, error) {
		return fmt.Sprintf("%s:%s:%d:%s:%.1f", prefix, q.Value.Query, n, b.Value.Name, b.Value.Price), nil
	}).(func(string, int) (string, error))

	got, err := h("p", 7)
	require.NoError(t, err)
	assert.Equal(t, "p:shoes:7:boots:12.5", got)
	assert.Equal(t, []mapper.Location{mapper.QueryString, mapper.RequestBody}, in.fetches)
}

func TestBind_Variadic(t *testing.T) {
	in := &plainIntegration{query: values(mapper.Values{"q": "a"})}
	setup(t, in)

	h := mapper.MapRequest(func(q mapper.Query[SearchParams], tags ...string) []string {
		return append([]string{q.Value.Query}, tags...)
	}).(func(...string) []string)

	assert.Equal(t, []string{"a", "b", "c"}, h("b", "c"))
	assert.Equal(t, []string{"a"}, h())
}

func TestBind_AdapterErrorUnchanged(t *testing.T) {
	errFetch := errors.New("connection reset")
	in := &plainIntegration{body: func(context.Context, mapper.Call) (mapper.Values, error) {
		return nil, errFetch
	}}
	setup(t, in)

	h := mapper.MapRequest(func(b mapper.Body[CreateItem]) (int, error) { return 1, nil }).(func() (int, error))
	n, err := h()
	assert.Equal(t, 0, n)
	assert.Same(t, errFetch, err)
}

func TestBind_NotConfigured(t *testing.T) {
	mapper.Reset()

	h := mapper.MapRequest(func(q mapper.Query[SearchParams]) error { return nil }).(func() error)
	err := h()
	require.ErrorIs(t, err, mapper.ErrNotConfigured)
	assert.ErrorIs(t, err, mapper.ErrConfiguration)

	p := mapper.MapRequest(func(q mapper.Query[SearchParams]) {}).(func())
	assert.PanicsWithError(t, mapper.ErrNotConfigured.Error(), p)
}

func TestBind_ModeMismatch(t *testing.T) {
	t.Run("context_handler_plain_integration", func(t *testing.T) {
		in := &plainIntegration{query: values(mapper.Values{"q": "x"})}
		setup(t, in)

		h := mapper.MapRequest(func(ctx context.Context, q mapper.Query[SearchParams]) error { return nil }).(func(context.Context) error)
		err := h(context.Background())
		require.ErrorIs(t, err, mapper.ErrModeMismatch)
		assert.ErrorIs(t, err, mapper.ErrConfiguration)
		assert.Zero(t, in.total())
	})

	t.Run("plain_handler_context_integration", func(t *testing.T) {
		in := &ctxIntegration{query: values(mapper.Values{"q": "x"})}
		setup(t, in)

		h := mapper.MapRequest(func(q mapper.Query[SearchParams]) error { return nil }).(func() error)
		require.ErrorIs(t, h(), mapper.ErrModeMismatch)
		assert.Zero(t, in.total())
	})
}

func TestBind_FormUnsupported(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		in := &plainIntegration{query: values(mapper.Values{"q": "x"})}
		setup(t, in)

		h := mapper.MapRequest(func(q mapper.Query[SearchParams], f mapper.Form[Contact]) error { return nil }).(func() error)
		require.ErrorIs(t, h(), mapper.ErrFormUnsupported)
		assert.Zero(t, in.total())
	})

	t.Run("context", func(t *testing.T) {
		in := &ctxNoFormIntegration{}
		setup(t, in)

		h := mapper.MapRequest(func(ctx context.Context, f mapper.Form[Contact]) error { return nil }).(func(context.Context) error)
		require.ErrorIs(t, h(context.Background()), mapper.ErrFormUnsupported)
		assert.Zero(t, in.total())
	})
}

func TestBind_Form(t *testing.T) {
	in := &plainFormIntegration{form: values(mapper.Values{"email": "jane@example.com"})}
	setup(t, in)

	h := mapper.MapRequest(func(f mapper.Form[Contact]) string { return f.Value.Email }).(func() string)
	assert.Equal(t, "jane@example.com", h())
	assert.Equal(t, 1, in.count(mapper.FormData))
}

type ctxKey struct{}

func TestBind_Context(t *testing.T) {
	in := &ctxIntegration{
		query: func(ctx context.Context, _ mapper.Call) (mapper.Values, error) {
			return mapper.Values{"q": ctx.Value(ctxKey{}).(string)}, nil
		},
	}
	setup(t, in)

	h := mapper.MapRequest(func(ctx context.Context, q mapper.Query[SearchParams]) (string, error) {
		return q.Value.Query, nil
	}).(func(context.Context) (string, error))

	got, err := h(context.WithValue(context.Background(), ctxKey{}, "from-ctx"))
	require.NoError(t, err)
	assert.Equal(t, "from-ctx", got)
}

func TestBind_ParallelFetch(t *testing.T) {
	queryStarted := make(chan struct{})
	bodyStarted := make(chan struct{})
	waitFor := func(started, other chan struct{}, v mapper.Values) fetchFunc {
		return func(context.Context, mapper.Call) (mapper.Values, error) {
			close(started)
			select {
			case <-other:
				return v, nil
			case <-time.After(time.Second):
				return nil, errors.New("fetches did not overlap")
			}
		}
	}
	in := &ctxIntegration{
		query: waitFor(queryStarted, bodyStarted, mapper.Values{"q": "boots"}),
		body:  waitFor(bodyStarted, queryStarted, mapper.Values{"name": "boot"}),
	}
	setup(t, in, mapper.WithParallelFetch())

	h := mapper.MapRequest(func(ctx context.Context, q mapper.Query[SearchParams], b mapper.Body[CreateItem]) (string, error) {
		return q.Value.Query + "/" + b.Value.Name, nil
	}).(func(context.Context) (string, error))

	got, err := h(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "boots/boot", got)
	assert.Equal(t, 1, in.count(mapper.QueryString))
	assert.Equal(t, 1, in.count(mapper.RequestBody))
}

func TestBind_ParallelFetchValidationOrder(t *testing.T) {
	in := &ctxIntegration{
		query: values(mapper.Values{}),
		body:  values(mapper.Values{}),
	}
	setup(t, in, mapper.WithParallelFetch())

	h := mapper.MapRequest(func(ctx context.Context, q mapper.Query[SearchParams], b mapper.Body[CreateItem]) error {
		return nil
	}).(func(context.Context) error)

	verr, ok := mapper.AsValidationError(h(context.Background()))
	require.True(t, ok)
	assert.Equal(t, mapper.QueryString, verr.Location)
}

func TestBind_ParallelFetchSerializesBodyReads(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	readBody := func(v mapper.Values) fetchFunc {
		return func(context.Context, mapper.Call) (mapper.Values, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				m := maxInFlight.Load()
				if n <= m || maxInFlight.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			return v, nil
		}
	}
	in := &ctxIntegration{
		query: values(mapper.Values{"q": "boots"}),
		body:  readBody(mapper.Values{"name": "boot"}),
		form:  readBody(mapper.Values{"email": "ann@example.com"}),
	}
	setup(t, in, mapper.WithParallelFetch())

	h := mapper.MapRequest(func(ctx context.Context, f mapper.Form[Contact], q mapper.Query[SearchParams], b mapper.Body[CreateItem]) (string, error) {
		return f.Value.Email + "/" + q.Value.Query + "/" + b.Value.Name, nil
	}).(func(context.Context) (string, error))

	for range 5 {
		got, err := h(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com/boots/boot", got)
	}
	assert.Equal(t, int32(1), maxInFlight.Load())

	// Body-backed reads keep their declared order
	in.mu.Lock()
	defer in.mu.Unlock()
	var bodyOrder []mapper.Location
	for _, loc := range in.fetches {
		if loc != mapper.QueryString {
			bodyOrder = append(bodyOrder, loc)
		}
	}
	require.Len(t, bodyOrder, 10)
	for i := 0; i < len(bodyOrder); i += 2 {
		assert.Equal(t, []mapper.Location{mapper.FormData, mapper.RequestBody}, bodyOrder[i:i+2])
	}
}

func TestBind_ParallelFetchFirstErrorInOrder(t *testing.T) {
	errBody := errors.New("body unreadable")
	errQuery := errors.New("query unreadable")
	in := &ctxIntegration{
		body: func(context.Context, mapper.Call) (mapper.Values, error) {
			time.Sleep(20 * time.Millisecond)
			return nil, errBody
		},
		query: func(context.Context, mapper.Call) (mapper.Values, error) { return nil, errQuery },
	}
	setup(t, in, mapper.WithParallelFetch())

	h := mapper.MapRequest(func(ctx context.Context, b mapper.Body[CreateItem], q mapper.Query[SearchParams]) error {
		return nil
	}).(func(context.Context) error)

	assert.ErrorIs(t, h(context.Background()), errBody)
}

func TestBind_ParallelFetchAdapterPanic(t *testing.T) {
	in := &ctxIntegration{
		query: values(mapper.Values{"q": "boots"}),
		body: func(context.Context, mapper.Call) (mapper.Values, error) {
			var m mapper.Values
			m["name"] = "boom"
			return m, nil
		},
	}
	setup(t, in, mapper.WithParallelFetch())

	t.Run("returned_as_error", func(t *testing.T) {
		called := false
		h := mapper.MapRequest(func(ctx context.Context, q mapper.Query[SearchParams], b mapper.Body[CreateItem]) error {
			called = true
			return nil
		}).(func(context.Context) error)

		err := h(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic: assignment to entry in nil map")
		assert.False(t, called)
	})

	t.Run("raised_on_caller_without_error_result", func(t *testing.T) {
		h := mapper.MapRequest(func(ctx context.Context, q mapper.Query[SearchParams], b mapper.Body[CreateItem]) string {
			return "unreachable"
		}).(func(context.Context) string)

		assert.Panics(t, func() { h(context.Background()) })
	})
}

type QueryFlag struct {
	Query bool `query:"query" validate:"required"`
}

func TestBind_RequiredBoolMissing(t *testing.T) {
	in := &plainIntegration{query: values(mapper.Values{})}
	setup(t, in)

	called := false
	h := mapper.MapRequest(func(q mapper.Query[QueryFlag]) error {
		called = true
		return nil
	}).(func() error)

	err := h()
	assert.False(t, called)

	verr, ok := mapper.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, mapper.QueryString, verr.Location)
	raw, err := verr.Location.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "query-string", string(raw))
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, []string{"query"}, verr.Errors[0].Path)
	assert.Equal(t, validator.KindMissing, verr.Errors[0].Kind)
}

func TestBind_RequiredBoolPresent(t *testing.T) {
	in := &plainIntegration{query: values(mapper.Values{"query": true})}
	setup(t, in)

	h := mapper.MapRequest(func(q mapper.Query[QueryFlag]) (QueryFlag, error) {
		return q.Value, nil
	}).(func() (QueryFlag, error))

	got, err := h()
	require.NoError(t, err)
	assert.Equal(t, QueryFlag{Query: true}, got)
}

type item struct {
	ID    int       `json:"id"`
	Label string    `json:"label"`
	At    time.Time `json:"at"`
}

type stringer interface{ String() string }

func TestResponseConverter(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("interface_result_converted", func(t *testing.T) {
		in := &plainIntegration{query: values(mapper.Values{"q": "x"})}
		setup(t, in, mapper.WithResponseConverter(mapper.ModelToMap))

		h := mapper.MapRequest(func(q mapper.Query[SearchParams]) (any, error) {
			return item{ID: 1, Label: q.Value.Query, At: at}, nil
		}).(func() (any, error))

		got, err := h()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": 1, "label": "x", "at": at}, got)
	})

	t.Run("concrete_result_untouched", func(t *testing.T) {
		in := &plainIntegration{query: values(mapper.Values{"q": "x"})}
		setup(t, in, mapper.WithResponseConverter(mapper.ModelToMap))

		h := mapper.MapRequest(func(q mapper.Query[SearchParams]) item {
			return item{ID: 2}
		}).(func() item)

		assert.Equal(t, item{ID: 2}, h())
	})

	t.Run("error_skips_conversion", func(t *testing.T) {
		in := &plainIntegration{query: values(mapper.Values{"q": "x"})}
		converted := 0
		setup(t, in, mapper.WithResponseConverter(func(v any) any {
			converted++
			return v
		}))

		errHandler := errors.New("handler failed")
		h := mapper.MapRequest(func(q mapper.Query[SearchParams]) (any, error) {
			return item{}, errHandler
		}).(func() (any, error))

		_, err := h()
		require.ErrorIs(t, err, errHandler)
		assert.Zero(t, converted)
	})

	t.Run("unassignable_result", func(t *testing.T) {
		in := &plainIntegration{query: values(mapper.Values{"q": "x"})}
		setup(t, in, mapper.WithResponseConverter(mapper.ModelToMap))

		h := mapper.MapRequest(func(q mapper.Query[SearchParams]) (stringer, error) {
			return time.Second, nil
		}).(func() (stringer, error))

		// time.Duration is not a struct, so ModelToMap passes it through
		got, err := h()
		require.NoError(t, err)
		assert.Equal(t, "1s", got.String())

		setup(t, in, mapper.WithResponseConverter(func(any) any { return map[string]any{} }))
		_, err = h()
		require.ErrorIs(t, err, mapper.ErrConverterResult)
	})

	t.Run("default_identity", func(t *testing.T) {
		in := &plainIntegration{query: values(mapper.Values{"q": "x"})}
		setup(t, in)

		h := mapper.MapRequest(func(q mapper.Query[SearchParams]) any {
			return item{ID: 3}
		}).(func() any)
		assert.Equal(t, item{ID: 3}, h())
	})
}

type neither struct{}

func (neither) SetUp(mapper.Decorator) {}

func TestSetup(t *testing.T) {
	t.Run("nil_integration", func(t *testing.T) {
		require.ErrorIs(t, mapper.Setup(nil), mapper.ErrInvalidIntegration)
	})

	t.Run("unknown_variant", func(t *testing.T) {
		err := mapper.Setup(neither{})
		require.ErrorIs(t, err, mapper.ErrInvalidIntegration)
		assert.ErrorIs(t, err, mapper.ErrConfiguration)
		assert.Panics(t, func() { mapper.MustSetup(neither{}) })
	})

	t.Run("calls_set_up_once", func(t *testing.T) {
		in := &plainIntegration{query: values(mapper.Values{"q": "x"})}
		setup(t, in)
		assert.Equal(t, 1, in.setUps)
		require.NotNil(t, in.mapFn)

		h := in.mapFn(func(q mapper.Query[SearchParams]) string { return q.Value.Query }).(func() string)
		assert.Equal(t, "x", h())
	})

	t.Run("replaces_previous", func(t *testing.T) {
		first := &plainIntegration{query: values(mapper.Values{"q": "first"})}
		second := &plainIntegration{query: values(mapper.Values{"q": "second"})}
		setup(t, first)
		setup(t, second)

		h := mapper.MapRequest(func(q mapper.Query[SearchParams]) string { return q.Value.Query }).(func() string)
		assert.Equal(t, "second", h())
		assert.Zero(t, first.total())
	})
}
