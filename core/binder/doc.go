// Package binder extracts raw request data from *http.Request as mappings of
// field name to value, ready to be decoded by the validator package.
//
// Three extractors cover the request locations:
//
//	query := binder.Query()                       // URL query string
//	body := binder.JSON(binder.DefaultMaxJSONSize) // JSON object body
//	form := binder.Form(binder.DefaultMaxMemory)   // url-encoded or multipart form
//
//	data, err := body(r)
//
// A nil mapping with a nil error means the location carried no data, e.g. a GET
// request without a body. Query always returns a mapping.
//
// # Sanitization
//
// Every string value is cleaned before it is returned: NUL bytes, CR/LF and
// other control characters are removed and the text is normalized to Unicode
// NFC. Uploaded file names are reduced to their base name.
//
// # Errors
//
// Malformed input yields one of the package errors, which integrations map to
// client error responses:
//
//	ErrUnsupportedMediaType  // 415
//	ErrMissingContentType    // 400
//	ErrFailedToParseJSON     // 400
//	ErrFailedToParseForm     // 400
//	ErrBodyTooLarge          // 413
package binder
