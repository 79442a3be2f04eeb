package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultMaxJSONSize is the default maximum size for JSON request bodies (1MB).
const DefaultMaxJSONSize = 1 << 20

// JSON returns an extractor for JSON object bodies of at most maxSize bytes
// (DefaultMaxJSONSize when maxSize is not positive).
//
// An empty body or a literal null is absent data. Numbers are kept as
// json.Number so integers survive without float rounding.
func JSON(maxSize int64) Extractor {
	if maxSize <= 0 {
		maxSize = DefaultMaxJSONSize
	}

	return func(r *http.Request) (map[string]any, error) {
		// Fail fast if request context is already cancelled to avoid processing doomed requests
		if err := canceled(r); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedToParseJSON, err)
		}
		if r.Body == nil || r.Body == http.NoBody {
			return nil, nil
		}

		// The media type is checked before the body is touched, so a request meant
		// for another extractor keeps its body intact
		contentType := r.Header.Get("Content-Type")
		if contentType != "" {
			if mt := mediaType(contentType); mt != "application/json" && !strings.HasSuffix(mt, "+json") {
				return nil, fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, mt)
			}
		}

		// Read with +1 byte to detect oversized requests without buffering them whole
		body, err := io.ReadAll(io.LimitReader(r.Body, maxSize+1))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read request body: %w", ErrFailedToParseJSON, err)
		}
		if int64(len(body)) > maxSize {
			return nil, fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, maxSize)
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return nil, nil
		}
		if contentType == "" {
			return nil, fmt.Errorf("%w: expected application/json", ErrMissingContentType)
		}

		decoder := json.NewDecoder(bytes.NewReader(body))
		decoder.UseNumber()

		var raw any
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedToParseJSON, err)
		}

		// Verify no trailing data exists after valid JSON
		if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: unexpected data after JSON value", ErrFailedToParseJSON)
		}

		switch v := raw.(type) {
		case nil:
			return nil, nil
		case map[string]any:
			return sanitizeValue(v).(map[string]any), nil
		default:
			return nil, fmt.Errorf("%w: expected a JSON object, got %T", ErrFailedToParseJSON, raw)
		}
	}
}
