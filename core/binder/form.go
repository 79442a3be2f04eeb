package binder

import (
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
)

// DefaultMaxMemory is the default maximum memory used for parsing multipart forms (10MB).
const DefaultMaxMemory = 10 << 20

// Form returns an extractor for application/x-www-form-urlencoded and
// multipart/form-data bodies. Multipart forms use at most maxMemory bytes of
// memory (DefaultMaxMemory when not positive); larger files spill to disk.
//
// Values follow the same shape as Query. Uploaded files are included under their
// field name as *multipart.FileHeader, or []*multipart.FileHeader when repeated:
//
//	type UploadRequest struct {
//		Title   string                  `form:"title" validate:"required"`
//		Avatar  *multipart.FileHeader   `form:"avatar"`
//		Gallery []*multipart.FileHeader `form:"gallery"`
//	}
//
// A request without body and Content-Type is absent data. Query string values
// are never mixed into form data.
func Form(maxMemory int64) Extractor {
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}

	return func(r *http.Request) (map[string]any, error) {
		if err := canceled(r); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedToParseForm, err)
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			if hasNoBody(r) {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: expected application/x-www-form-urlencoded or multipart/form-data", ErrMissingContentType)
		}

		switch mt := mediaType(contentType); mt {
		case "application/x-www-form-urlencoded":
			if err := r.ParseForm(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFailedToParseForm, err)
			}
			return flatten(r.PostForm), nil

		case "multipart/form-data":
			// Validate boundary parameter to prevent malformed multipart attacks
			_, params, err := mime.ParseMediaType(contentType)
			if err != nil {
				return nil, fmt.Errorf("%w: malformed content type with boundary", ErrFailedToParseForm)
			}
			if !validateBoundary(params["boundary"]) {
				return nil, fmt.Errorf("%w: invalid boundary parameter", ErrFailedToParseForm)
			}

			// Cleanup of multipart form is left to net/http so files stay readable in handlers
			if err := r.ParseMultipartForm(maxMemory); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFailedToParseForm, err)
			}
			if r.MultipartForm == nil {
				return map[string]any{}, nil
			}
			out := flatten(r.MultipartForm.Value)
			addFiles(out, r.MultipartForm.File)
			return out, nil

		default:
			return nil, fmt.Errorf("%w: got %s, expected application/x-www-form-urlencoded or multipart/form-data", ErrUnsupportedMediaType, mt)
		}
	}
}

func addFiles(out map[string]any, files map[string][]*multipart.FileHeader) {
	for key, headers := range files {
		if len(headers) == 0 {
			continue
		}
		// Apply security sanitization to prevent path traversal attacks
		for _, fh := range headers {
			fh.Filename = sanitizeFilename(fh.Filename)
		}
		if len(headers) == 1 {
			out[key] = headers[0]
			continue
		}
		out[key] = headers
	}
}

// validateBoundary rejects malformed or dangerous multipart boundary values.
func validateBoundary(boundary string) bool {
	if boundary == "" || len(boundary) > 100 {
		return false
	}
	return !strings.ContainsAny(boundary, "\x00\r\n")
}
