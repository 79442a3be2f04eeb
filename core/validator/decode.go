package validator

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validatable is implemented by targets that need checks beyond field tags.
// Validate runs only after every field decoded cleanly. Returning ValidationErrors
// keeps the field paths; any other error is reported as a single value_error.
type Validatable interface {
	Validate() error
}

var (
	timeType            = reflect.TypeOf(time.Time{})
	durationType        = reflect.TypeOf(time.Duration(0))
	uuidType            = reflect.TypeOf(uuid.UUID{})
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Decode constructs a new value of type target from a raw mapping.
//
// target must be a struct or a pointer to struct; the returned value has exactly
// that type. Keys are looked up by the tag named tagName, then by the json tag,
// then by the lower-cased field name. Every problem found is collected; the
// returned error is ValidationErrors unless target itself is unsupported.
func Decode(data map[string]any, target reflect.Type, tagName string) (reflect.Value, error) {
	st := target
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: got %s", ErrUnsupportedTarget, target)
	}

	d := &decoder{tagName: tagName}
	ptr := reflect.New(st)
	d.decodeStruct(ptr.Elem(), data, nil)
	if !d.errs.IsEmpty() {
		return reflect.Value{}, d.errs
	}

	if v, ok := ptr.Interface().(Validatable); ok {
		if err := v.Validate(); err != nil {
			var verrs ValidationErrors
			if errors.As(err, &verrs) && !verrs.IsEmpty() {
				return reflect.Value{}, verrs
			}
			return reflect.Value{}, ValidationErrors{{
				Path:    []string{},
				Message: err.Error(),
				Kind:    KindValueError,
				Input:   data,
			}}
		}
	}

	if target.Kind() == reflect.Pointer {
		return ptr, nil
	}
	return ptr.Elem(), nil
}

// DecodeInto decodes data into the struct pointed to by dst.
func DecodeInto[T any](data map[string]any, dst *T, tagName string) error {
	v, err := Decode(data, reflect.TypeFor[T](), tagName)
	if err != nil {
		return err
	}
	*dst = v.Interface().(T)
	return nil
}

type decoder struct {
	tagName string
	errs    ValidationErrors
}

func (d *decoder) fail(path []string, input any, kind, message string) bool {
	d.errs.Add(FieldError{Path: path, Message: message, Kind: kind, Input: input})
	return false
}

func (d *decoder) decodeStruct(rv reflect.Value, data map[string]any, prefix []string) bool {
	before := len(d.errs)
	rt := rv.Type()

	for i := range rv.NumField() {
		field := rv.Field(i)
		sf := rt.Field(i)

		// Skip unexported fields that reflection cannot modify
		if !field.CanSet() {
			continue
		}

		// Untagged embedded structs share the parent's keys
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Tag.Get(d.tagName) == "" && sf.Tag.Get("json") == "" {
			d.decodeStruct(field, data, prefix)
			continue
		}

		key, skip := fieldKey(sf, d.tagName)
		if skip {
			continue
		}
		path := appendPath(prefix, key)
		rules := parseRules(sf.Tag.Get("validate"))

		raw, present := data[key]
		if !present {
			def, hasDefault := sf.Tag.Lookup("default")
			switch {
			case hasDefault:
				if !d.set(field, def, path) {
					continue
				}
			case rules.required():
				d.fail(path, data, KindMissing, "Field required")
				continue
			default:
				continue
			}
		} else if !d.set(field, raw, path) {
			continue
		}

		applyRules(path, field, rules, &d.errs)
	}

	return len(d.errs) == before
}

// fieldKey resolves the mapping key for a struct field.
func fieldKey(sf reflect.StructField, tagName string) (string, bool) {
	for _, name := range []string{tagName, "json"} {
		if name == "" {
			continue
		}
		tag, ok := sf.Tag.Lookup(name)
		if !ok {
			continue
		}
		if tag == "-" {
			return "", true
		}
		if key, _, _ := strings.Cut(tag, ","); key != "" {
			return key, false
		}
	}
	return strings.ToLower(sf.Name), false
}

func appendPath(prefix []string, key string) []string {
	path := make([]string, len(prefix)+1)
	copy(path, prefix)
	path[len(prefix)] = key
	return path
}

// isLeafStruct reports struct types decoded from a scalar rather than a mapping.
func isLeafStruct(t reflect.Type) bool {
	return t == timeType || reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func (d *decoder) set(field reflect.Value, raw any, path []string) bool {
	t := field.Type()

	if raw == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
			field.SetZero()
			return true
		}
		return d.fail(path, raw, kindFor(t), messageFor(t))
	}

	rv := reflect.ValueOf(raw)

	// Already-typed references such as *multipart.FileHeader are taken as is
	if rv.Type() == t && (t.Kind() == reflect.Pointer || (t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Pointer)) {
		field.Set(rv)
		return true
	}

	if t.Kind() == reflect.Interface {
		if rv.Type().AssignableTo(t) {
			field.Set(rv)
			return true
		}
		return d.fail(path, raw, KindValueError, fmt.Sprintf("Input should implement %s", t))
	}

	switch t {
	case timeType:
		return d.setTime(field, raw, path)
	case durationType:
		return d.setDuration(field, raw, path)
	case uuidType:
		return d.setUUID(field, raw, path)
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := reflect.New(t.Elem())
		if !d.set(elem.Elem(), raw, path) {
			return false
		}
		field.Set(elem)
		return true

	case reflect.Struct:
		if reflect.PointerTo(t).Implements(textUnmarshalerType) {
			return d.setText(field, raw, path)
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return d.fail(path, raw, KindModelType, "Input should be an object")
		}
		return d.decodeStruct(field, m, path)

	case reflect.Slice:
		return d.setSlice(field, raw, path)

	case reflect.Map:
		return d.setMap(field, raw, path)
	}

	return d.setScalar(field, scalarInput(raw), path)
}

// scalarInput collapses multi-value inputs (repeated query keys, JSON arrays)
// to their first element for scalar targets.
func scalarInput(raw any) any {
	switch v := raw.(type) {
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case []any:
		if len(v) > 0 {
			return v[0]
		}
	}
	return raw
}

func (d *decoder) setScalar(field reflect.Value, raw any, path []string) bool {
	t := field.Type()

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return d.setText(field, raw, path)
	}

	switch t.Kind() {
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return d.fail(path, raw, KindStringType, "Input should be a valid string")
		}
		field.SetString(s)
		return true

	case reflect.Bool:
		b, ok := toBool(raw)
		if !ok {
			return d.fail(path, raw, KindBoolParsing, "Input should be a valid boolean")
		}
		field.SetBool(b)
		return true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := toInt(raw)
		if !ok || field.OverflowInt(n) {
			return d.fail(path, raw, KindIntParsing, "Input should be a valid integer")
		}
		field.SetInt(n)
		return true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := toUint(raw)
		if !ok || field.OverflowUint(n) {
			return d.fail(path, raw, KindUintParsing, "Input should be a valid unsigned integer")
		}
		field.SetUint(n)
		return true

	case reflect.Float32, reflect.Float64:
		f, ok := toFloat(raw)
		if !ok || field.OverflowFloat(f) {
			return d.fail(path, raw, KindFloatParsing, "Input should be a valid number")
		}
		field.SetFloat(f)
		return true
	}

	return d.fail(path, raw, KindUnsupported, fmt.Sprintf("Unsupported field type %s", t))
}

func (d *decoder) setSlice(field reflect.Value, raw any, path []string) bool {
	t := field.Type()

	// []byte takes a string as-is
	if t.Elem().Kind() == reflect.Uint8 {
		if s, ok := raw.(string); ok {
			field.SetBytes([]byte(s))
			return true
		}
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []string:
		// Handle both repeated keys and comma-separated values in a single key
		for _, s := range v {
			for _, part := range strings.Split(s, ",") {
				items = append(items, strings.TrimSpace(part))
			}
		}
	case string:
		if v != "" {
			for _, part := range strings.Split(v, ",") {
				items = append(items, strings.TrimSpace(part))
			}
		}
	default:
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return d.fail(path, raw, KindListType, "Input should be a valid list")
		}
		items = make([]any, rv.Len())
		for i := range rv.Len() {
			items[i] = rv.Index(i).Interface()
		}
	}

	slice := reflect.MakeSlice(t, len(items), len(items))
	ok := true
	for i, item := range items {
		if !d.set(slice.Index(i), item, appendPath(path, strconv.Itoa(i))) {
			ok = false
		}
	}
	if !ok {
		return false
	}
	field.Set(slice)
	return true
}

func (d *decoder) setMap(field reflect.Value, raw any, path []string) bool {
	t := field.Type()
	if t.Key().Kind() != reflect.String {
		return d.fail(path, raw, KindUnsupported, fmt.Sprintf("Unsupported map key type %s", t.Key()))
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return d.fail(path, raw, KindDictType, "Input should be a valid dictionary")
	}

	// Sorted keys keep the error order stable
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	out := reflect.MakeMapWithSize(t, len(keys))
	ok := true
	for _, k := range keys {
		elem := reflect.New(t.Elem()).Elem()
		if !d.set(elem, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface(), appendPath(path, k)) {
			ok = false
			continue
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), elem)
	}
	if !ok {
		return false
	}
	field.Set(out)
	return true
}

func (d *decoder) setTime(field reflect.Value, raw any, path []string) bool {
	switch v := scalarInput(raw).(type) {
	case time.Time:
		field.Set(reflect.ValueOf(v))
		return true
	case string:
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			field.Set(reflect.ValueOf(ts))
			return true
		}
		if ts, err := time.Parse(time.DateOnly, v); err == nil {
			field.Set(reflect.ValueOf(ts))
			return true
		}
	}
	return d.fail(path, raw, KindDatetimeParsing, "Input should be a valid datetime")
}

func (d *decoder) setDuration(field reflect.Value, raw any, path []string) bool {
	in := scalarInput(raw)
	if s, ok := in.(string); ok {
		if dur, err := time.ParseDuration(s); err == nil {
			field.SetInt(int64(dur))
			return true
		}
		return d.fail(path, raw, KindDurationParsing, "Input should be a valid duration")
	}
	if n, ok := toInt(in); ok {
		field.SetInt(n)
		return true
	}
	return d.fail(path, raw, KindDurationParsing, "Input should be a valid duration")
}

func (d *decoder) setUUID(field reflect.Value, raw any, path []string) bool {
	switch v := scalarInput(raw).(type) {
	case uuid.UUID:
		field.Set(reflect.ValueOf(v))
		return true
	case string:
		if u, err := uuid.Parse(v); err == nil {
			field.Set(reflect.ValueOf(u))
			return true
		}
	}
	return d.fail(path, raw, KindUUIDParsing, "Input should be a valid UUID")
}

func (d *decoder) setText(field reflect.Value, raw any, path []string) bool {
	s, ok := scalarInput(raw).(string)
	if !ok {
		return d.fail(path, raw, KindStringType, "Input should be a valid string")
	}
	if err := field.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return d.fail(path, raw, KindValueError, err.Error())
	}
	return true
}

func toBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, true
		}
		// Accept common boolean representations for user-friendly parsing
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "on", "yes", "y":
			return true, true
		case "off", "no", "n":
			return false, true
		}
	case json.Number:
		switch v.String() {
		case "1":
			return true, true
		case "0":
			return false, true
		}
	default:
		if f, ok := numeric(raw); ok {
			switch f {
			case 1:
				return true, true
			case 0:
				return false, true
			}
		}
	}
	return false, false
}

func toInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		return int64(u), u <= math.MaxInt64
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		// Only integral floats are accepted; JSON numbers decode as float64
		if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

func toUint(raw any) (uint64, bool) {
	switch v := raw.(type) {
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	case json.Number:
		n, err := strconv.ParseUint(v.String(), 10, 64)
		return n, err == nil
	}

	n, ok := toInt(raw)
	if !ok || n < 0 {
		if rv := reflect.ValueOf(raw); rv.CanUint() {
			return rv.Uint(), true
		}
		return 0, false
	}
	return uint64(n), true
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return numeric(raw)
}

func numeric(raw any) (float64, bool) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func kindFor(t reflect.Type) string {
	switch t {
	case timeType:
		return KindDatetimeParsing
	case durationType:
		return KindDurationParsing
	case uuidType:
		return KindUUIDParsing
	}
	switch t.Kind() {
	case reflect.String:
		return KindStringType
	case reflect.Bool:
		return KindBoolParsing
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindIntParsing
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindUintParsing
	case reflect.Float32, reflect.Float64:
		return KindFloatParsing
	case reflect.Struct:
		return KindModelType
	}
	return KindValueError
}

func messageFor(t reflect.Type) string {
	switch kindFor(t) {
	case KindStringType:
		return "Input should be a valid string"
	case KindBoolParsing:
		return "Input should be a valid boolean"
	case KindIntParsing:
		return "Input should be a valid integer"
	case KindUintParsing:
		return "Input should be a valid unsigned integer"
	case KindFloatParsing:
		return "Input should be a valid number"
	case KindDatetimeParsing:
		return "Input should be a valid datetime"
	case KindDurationParsing:
		return "Input should be a valid duration"
	case KindUUIDParsing:
		return "Input should be a valid UUID"
	case KindModelType:
		return "Input should be an object"
	}
	return "Input should not be null"
}
