package validator

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Rule is the result of applying a validator to a value.
// Message is used only when Check reports false.
type Rule struct {
	Check   func() bool
	Message string
}

// ValidatorFunc builds a Rule for a value using the rule parameters from the tag.
type ValidatorFunc func(value reflect.Value, params []string) Rule

// ruleRequired is resolved by the decoder as a presence check and never reaches the registry.
const ruleRequired = "required"

var (
	registryMu sync.RWMutex
	registry   = map[string]ValidatorFunc{
		"min":      minValidator,
		"max":      maxValidator,
		"len":      lenValidator,
		"between":  betweenValidator,
		"email":    emailValidator,
		"url":      urlValidator,
		"uuid":     uuidValidator,
		"alpha":    alphaValidator,
		"alphanum": alphanumValidator,
		"numeric":  numericValidator,
		"in":       inValidator,
		"not_in":   notInValidator,
		"contains": containsValidator,
		"prefix":   prefixValidator,
		"suffix":   suffixValidator,
		"regex":    regexValidator,
		"positive": positiveValidator,
		"negative": negativeValidator,
		"nonzero":  nonZeroValidator,
	}

	regexCache sync.Map
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// RegisterValidator adds a custom validator function to the registry.
// Registering an existing name replaces it.
func RegisterValidator(name string, fn ValidatorFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

type tagRule struct {
	name   string
	params []string
}

type tagRules []tagRule

func (r tagRules) required() bool {
	for _, rule := range r {
		if rule.name == ruleRequired {
			return true
		}
	}
	return false
}

// parseRules splits a validate tag of the form "required;min:3;in:a,b".
func parseRules(tag string) tagRules {
	if tag == "" || tag == "-" {
		return nil
	}

	var rules tagRules
	for _, ruleStr := range strings.Split(tag, ";") {
		ruleStr = strings.TrimSpace(ruleStr)
		if ruleStr == "" {
			continue
		}

		parts := strings.SplitN(ruleStr, ":", 2)
		rule := tagRule{name: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			if paramStr := strings.TrimSpace(parts[1]); paramStr != "" {
				// regex patterns may legitimately contain commas
				if rule.name == "regex" {
					rule.params = []string{paramStr}
				} else {
					rule.params = strings.Split(paramStr, ",")
					for i := range rule.params {
						rule.params[i] = strings.TrimSpace(rule.params[i])
					}
				}
			}
		}
		rules = append(rules, rule)
	}
	return rules
}

// applyRules runs every non-presence rule against value and records failures.
func applyRules(path []string, value reflect.Value, rules tagRules, errs *ValidationErrors) {
	if len(rules) == 0 {
		return
	}

	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return
		}
		value = value.Elem()
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, r := range rules {
		if r.name == ruleRequired {
			continue
		}
		fn, ok := registry[r.name]
		if !ok {
			continue
		}
		rule := fn(value, r.params)
		if rule.Check == nil || rule.Check() {
			continue
		}
		errs.Add(FieldError{
			Path:    path,
			Message: rule.Message,
			Kind:    r.name,
			Input:   value.Interface(),
		})
	}
}

// ValidateStruct validates an already populated struct against its validate tags.
// Unlike Decode, "required" here means "not the zero value" because field presence
// is unknown for values built in code.
func ValidateStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrUnsupportedTarget
	}

	var errs ValidationErrors
	validateStructRecursive(rv.Elem(), nil, &errs)
	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func validateStructRecursive(rv reflect.Value, prefix []string, errs *ValidationErrors) {
	rt := rv.Type()
	for i := range rv.NumField() {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		tag := sf.Tag.Get("validate")
		if tag == "-" {
			continue
		}
		path := appendPath(prefix, sf.Name)

		inner := field
		if inner.Kind() == reflect.Pointer && !inner.IsNil() {
			inner = inner.Elem()
		}
		if inner.Kind() == reflect.Struct && tag == "" && !isLeafStruct(inner.Type()) {
			validateStructRecursive(inner, path, errs)
			continue
		}

		rules := parseRules(tag)
		if isEmptyValue(field) {
			// Empty optional fields are not checked
			if rules.required() {
				errs.Add(FieldError{Path: path, Message: "Field required", Kind: KindMissing, Input: field.Interface()})
			}
			continue
		}
		applyRules(path, field, rules, errs)
	}
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

func passRule() Rule {
	return Rule{Check: func() bool { return true }}
}

func sizeOf(value reflect.Value) (int, bool) {
	switch value.Kind() {
	case reflect.String:
		return utf8.RuneCountInString(value.String()), true
	case reflect.Slice, reflect.Array, reflect.Map:
		return value.Len(), true
	}
	return 0, false
}

func numberOf(value reflect.Value) (float64, bool) {
	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(value.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(value.Uint()), true
	case reflect.Float32, reflect.Float64:
		return value.Float(), true
	}
	return 0, false
}

func minValidator(value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return passRule()
	}
	limit, err := strconv.ParseFloat(params[0], 64)
	if err != nil {
		return passRule()
	}

	if n, ok := sizeOf(value); ok {
		return Rule{
			Check:   func() bool { return float64(n) >= limit },
			Message: fmt.Sprintf("must have at least %s %s", params[0], unitOf(value)),
		}
	}
	if n, ok := numberOf(value); ok {
		return Rule{
			Check:   func() bool { return n >= limit },
			Message: fmt.Sprintf("must be at least %s", params[0]),
		}
	}
	return passRule()
}

func maxValidator(value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return passRule()
	}
	limit, err := strconv.ParseFloat(params[0], 64)
	if err != nil {
		return passRule()
	}

	if n, ok := sizeOf(value); ok {
		return Rule{
			Check:   func() bool { return float64(n) <= limit },
			Message: fmt.Sprintf("must have at most %s %s", params[0], unitOf(value)),
		}
	}
	if n, ok := numberOf(value); ok {
		return Rule{
			Check:   func() bool { return n <= limit },
			Message: fmt.Sprintf("must be at most %s", params[0]),
		}
	}
	return passRule()
}

func lenValidator(value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return passRule()
	}
	expected, err := strconv.Atoi(params[0])
	if err != nil {
		return passRule()
	}

	n, ok := sizeOf(value)
	if !ok {
		return passRule()
	}
	return Rule{
		Check:   func() bool { return n == expected },
		Message: fmt.Sprintf("must have exactly %d %s", expected, unitOf(value)),
	}
}

func betweenValidator(value reflect.Value, params []string) Rule {
	if len(params) < 2 {
		return passRule()
	}
	lo, err1 := strconv.ParseFloat(params[0], 64)
	hi, err2 := strconv.ParseFloat(params[1], 64)
	if err1 != nil || err2 != nil {
		return passRule()
	}

	n, ok := numberOf(value)
	if !ok {
		size, isSized := sizeOf(value)
		if !isSized {
			return passRule()
		}
		n = float64(size)
	}
	return Rule{
		Check:   func() bool { return n >= lo && n <= hi },
		Message: fmt.Sprintf("must be between %s and %s", params[0], params[1]),
	}
}

func unitOf(value reflect.Value) string {
	if value.Kind() == reflect.String {
		return "characters"
	}
	return "items"
}

func stringRule(value reflect.Value, message string, check func(s string) bool) Rule {
	if value.Kind() != reflect.String {
		return passRule()
	}
	s := value.String()
	return Rule{
		Check:   func() bool { return check(s) },
		Message: message,
	}
}

func emailValidator(value reflect.Value, _ []string) Rule {
	return stringRule(value, "must be a valid email address", emailRegex.MatchString)
}

func urlValidator(value reflect.Value, _ []string) Rule {
	return stringRule(value, "must be a valid URL", func(s string) bool {
		u, err := url.ParseRequestURI(s)
		return err == nil && u.Scheme != "" && u.Host != ""
	})
}

func uuidValidator(value reflect.Value, params []string) Rule {
	version := 0
	if len(params) > 0 {
		version, _ = strconv.Atoi(params[0])
	}

	message := "must be a valid UUID"
	if version > 0 {
		message = fmt.Sprintf("must be a valid UUID v%d", version)
	}
	return stringRule(value, message, func(s string) bool {
		u, err := uuid.Parse(s)
		if err != nil {
			return false
		}
		return version == 0 || int(u.Version()) == version
	})
}

func alphaValidator(value reflect.Value, _ []string) Rule {
	return stringRule(value, "must contain only letters", func(s string) bool {
		for _, r := range s {
			if !unicode.IsLetter(r) {
				return false
			}
		}
		return true
	})
}

func alphanumValidator(value reflect.Value, _ []string) Rule {
	return stringRule(value, "must contain only letters and digits", func(s string) bool {
		for _, r := range s {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
		return true
	})
}

func numericValidator(value reflect.Value, _ []string) Rule {
	return stringRule(value, "must contain only digits", func(s string) bool {
		if s == "" {
			return false
		}
		for _, r := range s {
			if !unicode.IsDigit(r) {
				return false
			}
		}
		return true
	})
}

func inValidator(value reflect.Value, params []string) Rule {
	s := fmt.Sprint(value.Interface())
	return Rule{
		Check: func() bool {
			for _, p := range params {
				if p == s {
					return true
				}
			}
			return false
		},
		Message: fmt.Sprintf("must be one of: %s", strings.Join(params, ", ")),
	}
}

func notInValidator(value reflect.Value, params []string) Rule {
	s := fmt.Sprint(value.Interface())
	return Rule{
		Check: func() bool {
			for _, p := range params {
				if p == s {
					return false
				}
			}
			return true
		},
		Message: fmt.Sprintf("must not be one of: %s", strings.Join(params, ", ")),
	}
}

func containsValidator(value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return passRule()
	}
	return stringRule(value, fmt.Sprintf("must contain '%s'", params[0]), func(s string) bool {
		return strings.Contains(s, params[0])
	})
}

func prefixValidator(value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return passRule()
	}
	return stringRule(value, fmt.Sprintf("must start with '%s'", params[0]), func(s string) bool {
		return strings.HasPrefix(s, params[0])
	})
}

func suffixValidator(value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return passRule()
	}
	return stringRule(value, fmt.Sprintf("must end with '%s'", params[0]), func(s string) bool {
		return strings.HasSuffix(s, params[0])
	})
}

func regexValidator(value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return passRule()
	}
	re, err := compileRegex(params[0])
	if err != nil {
		return Rule{
			Check:   func() bool { return false },
			Message: fmt.Sprintf("invalid pattern %q", params[0]),
		}
	}
	return stringRule(value, "must match the required pattern", re.MatchString)
}

func compileRegex(pattern string) (*regexp.Regexp, error) {
	if cached, ok := regexCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

func positiveValidator(value reflect.Value, _ []string) Rule {
	n, ok := numberOf(value)
	if !ok {
		return passRule()
	}
	return Rule{Check: func() bool { return n > 0 }, Message: "must be positive"}
}

func negativeValidator(value reflect.Value, _ []string) Rule {
	n, ok := numberOf(value)
	if !ok {
		return passRule()
	}
	return Rule{Check: func() bool { return n < 0 }, Message: "must be negative"}
}

func nonZeroValidator(value reflect.Value, _ []string) Rule {
	return Rule{Check: func() bool { return !value.IsZero() }, Message: "must not be zero"}
}
