package binder

import "errors"

// Error variables define common extraction failures. Integrations translate them
// into client errors.
var (
	// ErrUnsupportedMediaType indicates the Content-Type header specifies a media type
	// the extractor doesn't support (e.g., text/plain for JSON).
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrFailedToParseJSON indicates the request body is not a valid JSON object.
	ErrFailedToParseJSON = errors.New("failed to parse JSON request body")

	// ErrFailedToParseForm indicates form data parsing failed due to malformed
	// multipart boundaries or invalid URL-encoded data.
	ErrFailedToParseForm = errors.New("failed to parse form data")

	// ErrMissingContentType indicates the request has a body but no Content-Type header.
	ErrMissingContentType = errors.New("missing content type")

	// ErrBodyTooLarge indicates the request body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("request body too large")
)
