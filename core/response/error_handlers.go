package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/requestmapper/core/binder"
	"github.com/dmitrymomot/requestmapper/core/handler"
	"github.com/dmitrymomot/requestmapper/core/mapper"
)

// statusCode is an interface that errors can implement
// to provide a custom HTTP status code.
type statusCode interface {
	StatusCode() int
}

// AsHTTPError converts any error to an HTTPError.
//
// Validation failures become 422 with the location and field errors in Details.
// Request parsing errors from the binder package become 400, 413 or 415.
// Other errors use their StatusCode method when present and 500 otherwise.
func AsHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	if verr, ok := mapper.AsValidationError(err); ok {
		return ErrUnprocessableEntity.
			WithMessage(verr.Error()).
			WithDetails(map[string]any{
				"location": verr.Location,
				"errors":   verr.Errors,
			})
	}

	switch {
	case errors.Is(err, binder.ErrBodyTooLarge):
		return ErrRequestEntityTooLarge.WithError(err)
	case errors.Is(err, binder.ErrUnsupportedMediaType):
		return ErrUnsupportedMediaType.WithError(err)
	case errors.Is(err, binder.ErrMissingContentType),
		errors.Is(err, binder.ErrFailedToParseJSON),
		errors.Is(err, binder.ErrFailedToParseForm):
		return ErrBadRequest.WithError(err)
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	baseErr, ok := httpErrorsByStatus[status]
	if !ok {
		baseErr = newHTTPError(status, "error")
		if http.StatusText(status) == "" {
			baseErr = ErrInternalServerError
		}
	}
	return baseErr.WithError(err)
}

// ErrorHandler is the default error handler that returns plain text errors.
func ErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := AsHTTPError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}

// JSONErrorHandler returns errors as JSON responses.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := AsHTTPError(err)
	Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}

// WriteJSONError renders err like JSONErrorHandler for plain net/http handlers.
func WriteJSONError(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := AsHTTPError(err)
	if rerr := JSONWithStatus(httpErr, httpErr.Status)(w, r); rerr != nil {
		http.Error(w, rerr.Error(), http.StatusInternalServerError)
	}
}
