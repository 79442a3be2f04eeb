package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/requestmapper/core/handler"
	"github.com/dmitrymomot/requestmapper/core/logger"
)

// Recover turns panics raised while handling or rendering into errors for the
// error handler. Mapped handlers without an error result panic with binding
// errors, so this middleware is what turns them into responses.
func Recover[C handler.Context](log *slog.Logger) handler.Middleware[C] {
	if log == nil {
		log = slog.Default()
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) (resp handler.Response) {
			defer func() {
				if rec := recover(); rec != nil {
					err := PanicError(rec)
					log.ErrorContext(ctx, "handler panicked", logger.Component("recover"), logger.Error(err))
					resp = func(http.ResponseWriter, *http.Request) error { return err }
				}
			}()

			inner := next(ctx)
			if inner == nil {
				return nil
			}
			return func(w http.ResponseWriter, r *http.Request) (err error) {
				defer func() {
					if rec := recover(); rec != nil {
						err = PanicError(rec)
						log.ErrorContext(r.Context(), "response panicked", logger.Component("recover"), logger.Error(err))
					}
				}()
				return inner(w, r)
			}
		}
	}
}

// PanicError converts a recovered value into an error, keeping errors as they are.
func PanicError(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", rec)
}
