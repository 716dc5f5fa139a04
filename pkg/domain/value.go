package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Value is an immutable JSON-like value.
// The set of implementations is closed: Null, Bool, Number, String, Array and Object.
type Value interface {
	isValue()
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number kept as its literal text, so integers wider than
// 53 bits survive without float rounding.
type Number string

// String is a JSON string.
type String string

// Array is an ordered list of values. Order is significant.
type Array []Value

// Object maps unique keys to values. Key order carries no meaning.
type Object map[string]Value

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}
func (Array) isValue()  {}
func (Object) isValue() {}

// MarshalJSON encodes the null literal.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MarshalJSON encodes the number literal without quoting it.
func (n Number) MarshalJSON() ([]byte, error) {
	if !validNumber(string(n)) {
		return nil, fmt.Errorf("%w: invalid number literal %q", ErrUnsupportedValue, string(n))
	}
	return []byte(n), nil
}

// Int64 returns the number as an integer if it has no fractional part.
func (n Number) Int64() (int64, bool) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// Arguments is the argument map of one tool invocation.
type Arguments map[string]Value

// IntValue builds a Number from an integer.
func IntValue(i int64) Number {
	return Number(strconv.FormatInt(i, 10))
}

// FloatValue builds a Number from a float. NaN and infinities have no JSON form and become Null.
func FloatValue(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null{}
	}
	return Number(strconv.FormatFloat(f, 'g', -1, 64))
}

// OptionalString returns Null for a nil pointer.
func OptionalString(s *string) Value {
	if s == nil {
		return Null{}
	}
	return String(*s)
}

// Strings builds an Array of strings.
func Strings(items []string) Array {
	arr := make(Array, len(items))
	for i, s := range items {
		arr[i] = String(s)
	}
	return arr
}

// TypeName reports the JSON type name of v.
func TypeName(v Value) string {
	switch v.(type) {
	case nil, Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// ValueFromAny converts a decoded JSON value (as produced by encoding/json, with or
// without UseNumber) into a Value.
func ValueFromAny(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case json.Number:
		if !validNumber(string(v)) {
			return nil, fmt.Errorf("%w: invalid number literal %q", ErrUnsupportedValue, string(v))
		}
		return Number(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite number", ErrUnsupportedValue)
		}
		return FloatValue(v), nil
	case float32:
		return ValueFromAny(float64(v))
	case int:
		return IntValue(int64(v)), nil
	case int32:
		return IntValue(int64(v)), nil
	case int64:
		return IntValue(v), nil
	case uint:
		return Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return IntValue(int64(v)), nil
	case uint64:
		return Number(strconv.FormatUint(v, 10)), nil
	case []any:
		arr := make(Array, len(v))
		for i, item := range v {
			conv, err := ValueFromAny(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	case []string:
		return Strings(v), nil
	case map[string]any:
		obj := make(Object, len(v))
		for key, item := range v {
			conv, err := ValueFromAny(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			obj[key] = conv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, raw)
	}
}

// ArgumentsFromMap converts a decoded JSON object into Arguments.
func ArgumentsFromMap(raw map[string]any) (Arguments, error) {
	args := make(Arguments, len(raw))
	for key, item := range raw {
		v, err := ValueFromAny(item)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", key, err)
		}
		args[key] = v
	}
	return args, nil
}

var numberPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// validNumber reports whether lit is a JSON number literal. strconv would also
// accept NaN, Inf and hex floats.
func validNumber(lit string) bool {
	return numberPattern.MatchString(lit)
}
