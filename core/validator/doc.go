// Package validator turns raw request mappings into typed Go values and reports
// every problem it finds as a structured, ordered error list.
//
// # Decoding
//
// Decode builds a struct from a map of field name to raw value. Raw values may be
// strings and string slices (query strings, form data) or native JSON values
// (bool, float64, json.Number, []any, map[string]any). Values are coerced into the
// field type; failures are recorded with a machine-readable kind:
//
//	type Search struct {
//		Query string    `query:"q" validate:"required;min:2"`
//		Page  int       `query:"page" default:"1" validate:"positive"`
//		Tags  []string  `query:"tags"`
//		Owner uuid.UUID `query:"owner"`
//	}
//
//	var s Search
//	err := validator.DecodeInto(map[string]any{"q": "go"}, &s, "query")
//
// Keys are resolved by the given tag, then by the json tag, then by the lower-cased
// field name. A field tagged `validate:"required"` must be present in the mapping;
// absence is reported with kind "missing". Optional fields may declare a default
// with the `default` tag.
//
// # Rules
//
// Rules are separated by semicolons and take colon-prefixed, comma-separated
// parameters:
//
//	Name  string `validate:"required;min:3;max:20;alphanum"`
//	Role  string `validate:"in:admin,member"`
//	Score int    `validate:"between:1,10"`
//
// Built-in rules: min, max, len, between, email, url, uuid, alpha, alphanum,
// numeric, in, not_in, contains, prefix, suffix, regex, positive, negative,
// nonzero. A failed rule is reported with the rule name as its kind. Custom rules
// are added with RegisterValidator.
//
// # Errors
//
// Decode returns ValidationErrors, a list of FieldError values carrying the field
// path, a message, the kind and the offending input. The list is never truncated:
// all fields are checked before returning.
//
//	verrs := validator.ExtractValidationErrors(err)
//	for _, fe := range verrs {
//		fmt.Println(fe.Field(), fe.Kind, fe.Message)
//	}
//
// Targets implementing Validatable get a final Validate call once every field
// decoded cleanly.
package validator
