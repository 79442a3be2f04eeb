package validator

import (
	"errors"
	"strings"
)

// ErrUnsupportedTarget is returned when a decode target is not a struct or a pointer to struct.
var ErrUnsupportedTarget = errors.New("validator: target must be a struct or a pointer to struct")

// Error kinds reported by Decode. Rule failures use the rule name as their kind.
const (
	KindMissing         = "missing"
	KindStringType      = "string_type"
	KindBoolParsing     = "bool_parsing"
	KindIntParsing      = "int_parsing"
	KindUintParsing     = "uint_parsing"
	KindFloatParsing    = "float_parsing"
	KindDatetimeParsing = "datetime_parsing"
	KindDurationParsing = "duration_parsing"
	KindUUIDParsing     = "uuid_parsing"
	KindListType        = "list_type"
	KindDictType        = "dict_type"
	KindModelType       = "model_type"
	KindValueError      = "value_error"
	KindUnsupported     = "unsupported_type"
)

// FieldError describes a single failure for one field of the decoded value.
type FieldError struct {
	Path    []string `json:"path"`    // Field path as mapping keys, outermost first
	Message string   `json:"message"` // Human-readable message
	Kind    string   `json:"kind"`    // Machine-readable error kind
	Input   any      `json:"input"`   // Offending input value
}

// Field returns the dotted field path.
func (e FieldError) Field() string {
	return strings.Join(e.Path, ".")
}

// Error implements the error interface.
func (e FieldError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return e.Field() + ": " + e.Message
}

// ValidationErrors is the ordered list of field failures of a single decode.
type ValidationErrors []FieldError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, "; ")
}

// Add appends a field error.
func (e *ValidationErrors) Add(err FieldError) {
	*e = append(*e, err)
}

// IsEmpty reports whether there are no errors.
func (e ValidationErrors) IsEmpty() bool {
	return len(e) == 0
}

// Has reports whether any error belongs to the given dotted field path.
func (e ValidationErrors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field() == field {
			return true
		}
	}
	return false
}

// Fields returns the dotted paths of all failed fields, in order, without duplicates.
func (e ValidationErrors) Fields() []string {
	seen := make(map[string]struct{}, len(e))
	fields := make([]string, 0, len(e))
	for _, fe := range e {
		f := fe.Field()
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}
	return fields
}

// ExtractValidationErrors returns the ValidationErrors wrapped in err, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}
