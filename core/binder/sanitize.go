package binder

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// sanitizeString removes characters that could be used in injection attacks and
// normalizes the result to NFC so visually equal inputs compare equal.
func sanitizeString(value string) string {
	// Strip NUL bytes and CR/LF to prevent header injection
	value = strings.NewReplacer("\x00", "", "\r", "", "\n", "").Replace(value)

	// Invalid byte sequences are dropped; a literal U+FFFD is kept.
	value = strings.ToValidUTF8(value, "")

	var builder strings.Builder
	builder.Grow(len(value))
	for _, r := range value {
		if r == '\t' || !unicode.IsControl(r) {
			builder.WriteRune(r)
		}
	}

	return norm.NFC.String(builder.String())
}

// sanitizeValue walks decoded JSON and sanitizes every string, including keys.
func sanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return sanitizeString(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[sanitizeString(k)] = sanitizeValue(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = sanitizeValue(item)
		}
		return val
	}
	return v
}

// sanitizeFilename removes path components and dangerous characters from uploaded filenames.
func sanitizeFilename(filename string) string {
	// Normalize path separators for consistent processing across platforms
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		return "unnamed"
	}
	return norm.NFC.String(filename)
}
