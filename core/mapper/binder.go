package mapper

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/dmitrymomot/requestmapper/core/logger"
	"github.com/dmitrymomot/requestmapper/core/validator"
	"github.com/dmitrymomot/requestmapper/pkg/async"
)

// binding is one validated instance ready to be spliced into the argument list.
type binding struct {
	desc  Descriptor
	value reflect.Value
}

// usesForm reports whether any descriptor reads form data.
func usesForm(descriptors []Descriptor) bool {
	for _, d := range descriptors {
		if d.Location == FormData {
			return true
		}
	}
	return false
}

// bindSync fetches and validates every descriptor through a plain Integration.
// Fetches run one after another in parameter order.
func bindSync(h *handle, descriptors []Descriptor, call Call) ([]binding, error) {
	in, ok := h.integration.(Integration)
	if !ok {
		return nil, fmt.Errorf("%w: plain handler needs mapper.Integration, got %T", ErrModeMismatch, h.integration)
	}
	if usesForm(descriptors) {
		if _, ok := in.(FormIntegration); !ok {
			return nil, ErrFormUnsupported
		}
	}

	bindings := make([]binding, 0, len(descriptors))
	for _, d := range descriptors {
		data, err := fetchSync(in, d.Location, call)
		if err != nil {
			return nil, err
		}
		b, ok, err := validate(h, d, data)
		if err != nil {
			return nil, err
		}
		if ok {
			bindings = append(bindings, b)
		}
	}
	return bindings, nil
}

// bindContext fetches and validates every descriptor through a ContextIntegration.
// With parallel fetch enabled the query is read concurrently with the body;
// validation still happens in parameter order so the reported failure is
// deterministic.
func bindContext(ctx context.Context, h *handle, descriptors []Descriptor, call Call) ([]binding, error) {
	in, ok := h.integration.(ContextIntegration)
	if !ok {
		return nil, fmt.Errorf("%w: context-aware handler needs mapper.ContextIntegration, got %T", ErrModeMismatch, h.integration)
	}
	if usesForm(descriptors) {
		if _, ok := in.(ContextFormIntegration); !ok {
			return nil, ErrFormUnsupported
		}
	}

	var fetched []Values
	if h.parallel && concurrentLanes(descriptors) > 1 {
		var err error
		if fetched, err = fetchParallel(ctx, in, descriptors, call); err != nil {
			return nil, err
		}
	}

	bindings := make([]binding, 0, len(descriptors))
	for i, d := range descriptors {
		var data Values
		if fetched != nil {
			data = fetched[i]
		} else {
			var err error
			if data, err = fetchContext(ctx, in, d.Location, call); err != nil {
				return nil, err
			}
		}
		b, ok, err := validate(h, d, data)
		if err != nil {
			return nil, err
		}
		if ok {
			bindings = append(bindings, b)
		}
	}
	return bindings, nil
}

// concurrentLanes counts fetches that may run at the same time. Body and form
// share the request body, so together they form one lane.
func concurrentLanes(descriptors []Descriptor) int {
	lanes, body := 0, false
	for _, d := range descriptors {
		switch {
		case !d.Location.readsBody():
			lanes++
		case !body:
			body = true
			lanes++
		}
	}
	return lanes
}

// laneError marks which descriptor of the body lane failed.
type laneError struct {
	at  int
	err error
}

func (e *laneError) Error() string { return e.err.Error() }

// fetchParallel reads every location, running each query fetch in its own
// goroutine and all body-backed fetches in declared order on a single one.
// When several fetches fail, the error of the earliest descriptor is returned.
func fetchParallel(ctx context.Context, in ContextIntegration, descriptors []Descriptor, call Call) ([]Values, error) {
	var bodyIdx []int
	futures := make([]*async.Future[Values], len(descriptors))
	for i, d := range descriptors {
		if d.Location.readsBody() {
			bodyIdx = append(bodyIdx, i)
			continue
		}
		futures[i] = async.Async(ctx, d.Location, func(ctx context.Context, loc Location) (Values, error) {
			return fetchContext(ctx, in, loc, call)
		})
	}

	var lane *async.Future[[]Values]
	if len(bodyIdx) > 0 {
		lane = async.Async(ctx, bodyIdx, func(ctx context.Context, idx []int) ([]Values, error) {
			out := make([]Values, len(idx))
			for j, i := range idx {
				v, err := fetchContext(ctx, in, descriptors[i].Location, call)
				if err != nil {
					return nil, &laneError{at: i, err: err}
				}
				out[j] = v
			}
			return out, nil
		})
	}

	fetched := make([]Values, len(descriptors))
	failedAt, firstErr := len(descriptors), error(nil)
	fail := func(at int, err error) {
		if at < failedAt {
			failedAt, firstErr = at, err
		}
	}
	for i, f := range futures {
		if f == nil {
			continue
		}
		v, err := f.Await()
		if err != nil {
			fail(i, err)
		}
		fetched[i] = v
	}
	if lane != nil {
		values, err := lane.Await()
		var le *laneError
		switch {
		case errors.As(err, &le):
			fail(le.at, le.err)
		case err != nil:
			// canceled before the lane started, or a recovered panic
			fail(bodyIdx[0], err)
		default:
			for j, i := range bodyIdx {
				fetched[i] = values[j]
			}
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return fetched, nil
}

func fetchSync(in Integration, loc Location, call Call) (Values, error) {
	switch loc {
	case QueryString:
		return in.Query(call)
	case RequestBody:
		return in.Body(call)
	case FormData:
		return in.(FormIntegration).Form(call)
	}
	return nil, fmt.Errorf("mapper: unknown location %s", loc)
}

func fetchContext(ctx context.Context, in ContextIntegration, loc Location, call Call) (Values, error) {
	switch loc {
	case QueryString:
		return in.Query(ctx, call)
	case RequestBody:
		return in.Body(ctx, call)
	case FormData:
		return in.(ContextFormIntegration).Form(ctx, call)
	}
	return nil, fmt.Errorf("mapper: unknown location %s", loc)
}

// validate decodes data into the descriptor's target. It reports ok=false when
// the location carried no data, leaving the marker unbound.
func validate(h *handle, d Descriptor, data Values) (binding, bool, error) {
	if data == nil {
		h.logger.Debug("request data absent, parameter left unbound",
			logger.Component("mapper"),
			logger.Location(d.Location.String()),
			logger.Position(d.Index),
		)
		return binding{}, false, nil
	}

	v, err := validator.Decode(data, d.Target, d.Location.TagName())
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return binding{}, false, &ValidationError{Location: d.Location, Errors: verrs}
		}
		return binding{}, false, err
	}
	return binding{desc: d, value: v}, true, nil
}
