package mapper

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/requestmapper/core/validator"
)

// ErrConfiguration is the root of every setup-ordering or wiring mistake.
// These are programmer errors: they are never retried and never rendered as
// request errors.
var ErrConfiguration = errors.New("request mapper misconfigured")

// Configuration errors.
var (
	ErrNotConfigured      = fmt.Errorf("%w: integration is not set, call mapper.Setup before serving requests", ErrConfiguration)
	ErrModeMismatch       = fmt.Errorf("%w: integration does not match the handler calling mode", ErrConfiguration)
	ErrFormUnsupported    = fmt.Errorf("%w: integration does not support form data", ErrConfiguration)
	ErrInvalidIntegration = fmt.Errorf("%w: integration must implement Integration or ContextIntegration", ErrConfiguration)
	ErrConverterResult    = fmt.Errorf("%w: response converter returned a value the handler cannot return", ErrConfiguration)
)

// Decoration errors.
var (
	ErrNotAFunction      = errors.New("mapper: value is not a function")
	ErrSignatureMismatch = errors.New("mapper: mapped function has an unexpected signature")
)

// ErrValidation is matched by every *ValidationError through errors.Is.
var ErrValidation = errors.New("request data validation failed")

// ValidationError reports that data from one location could not be decoded into
// the declared type. Errors is the complete field error list.
type ValidationError struct {
	Location Location                   `json:"location"`
	Errors   validator.ValidationErrors `json:"errors"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return ErrValidation.Error()
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// StatusCode returns 422 so HTTP error handlers can map it without knowing this type.
func (e *ValidationError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
