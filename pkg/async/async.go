package async

import (
	"context"
	"fmt"
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Await waits for the computation to complete and returns its result.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// Async runs fn(ctx, param) in a new goroutine. A panic in fn is recovered and
// becomes the future's error; an error panic value stays reachable through
// errors.Is and errors.As.
func Async[T, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if rec := recover(); rec != nil {
				var zero U
				f.result = zero
				if err, ok := rec.(error); ok {
					f.err = fmt.Errorf("panic: %w", err)
				} else {
					f.err = fmt.Errorf("panic: %v", rec)
				}
			}
		}()

		// Early exit prevents useless work when context is pre-canceled
		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.result, f.err = fn(ctx, param)
	}()

	return f
}

// WaitAll waits for every future and returns their results in order.
// If any future failed, the error of the first failed future is returned
// together with the results collected so far.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))
	var firstErr error
	for i, f := range futures {
		res, err := f.Await()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		results[i] = res
	}
	return results, firstErr
}
