package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Value is a sealed interface representing the supported value space:
// Null, String, Int, Float, Bool, Array and Object. Nothing else
// canonicalizes; in particular time.Time and struct types must be converted
// explicitly by the caller.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents a JSON null.
type Null struct{}

func (Null) value() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a string value.
type String string

func (String) value() {}

// Int represents an integral numeric value. Always int64.
type Int int64

func (Int) value() {}

// Float represents a real numeric value. NaN and Infinity are rejected at
// serialization time, not at construction time.
type Float float64

func (Float) value() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Array represents an ordered sequence of values. Order is significant and
// is never altered by canonicalization.
type Array []Value

func (Array) value() {}

// Object represents a map of string keys to values.
// Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// SortedKeys returns keys in canonical order: exact Unicode code-point
// order. For valid UTF-8, byte order equals code-point order, so a plain
// string sort is correct.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// UnmarshalJSON implements json.Unmarshaler for Object, preserving the
// int/float distinction via json.Number.
func (obj *Object) UnmarshalJSON(data []byte) error {
	v, err := FromJSON(data)
	if err != nil {
		return err
	}
	o, ok := v.(Object)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", v)
	}
	*obj = o
	return nil
}

// FromJSON decodes JSON bytes into a Value. Numbers decode through
// json.Number so that integral literals (including 10.0 and 1e2) become Int
// and only genuinely fractional literals become Float. This matters for
// content addressing: 1 and 1.0 denote the same logical value and must
// produce the same canonical bytes.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &CanonicalizationError{Path: "root", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if dec.More() {
		return nil, &CanonicalizationError{Path: "root", Reason: "trailing data after JSON value"}
	}
	return FromGo(raw)
}

// FromGo converts a decoded Go value (maps, slices, json.Number, primitives)
// into a Value. Returns CanonicalizationError for unsupported shapes.
func FromGo(v any) (Value, error) {
	return fromGo(v, "root")
}

func fromGo(v any, path string) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float64:
		if f, ok := integralFloat(val); ok {
			return Int(f), nil
		}
		return Float(val), nil
	case json.Number:
		return numberValue(val, path)
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			cv, err := fromGo(elem, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			arr[i] = cv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			cv, err := fromGo(elem, fmt.Sprintf("%s.%s", path, k))
			if err != nil {
				return nil, err
			}
			obj[k] = cv
		}
		return obj, nil
	case map[any]any:
		// yaml.v3 can produce this shape; keys must be strings.
		obj := make(Object, len(val))
		for k, elem := range val {
			ks, ok := k.(string)
			if !ok {
				return nil, &CanonicalizationError{Path: path, Reason: fmt.Sprintf("non-string object key %v (%T)", k, k)}
			}
			cv, err := fromGo(elem, fmt.Sprintf("%s.%s", path, ks))
			if err != nil {
				return nil, err
			}
			obj[ks] = cv
		}
		return obj, nil
	default:
		return nil, &CanonicalizationError{Path: path, Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

// numberValue converts a json.Number literal, preserving the int/float
// distinction after normalization: any literal that denotes an integral
// value in int64 range becomes Int.
func numberValue(n json.Number, path string) (Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		i, err := n.Int64()
		if err == nil {
			return Int(i), nil
		}
		// Integer literal out of int64 range falls through to float.
	}
	f, err := n.Float64()
	if err != nil {
		return nil, &CanonicalizationError{Path: path, Reason: fmt.Sprintf("unrepresentable number %q", s)}
	}
	if i, ok := integralFloat(f); ok {
		return Int(i), nil
	}
	return Float(f), nil
}
