// Package jsondoc provides type-checked access to a parsed JSON document.
//
// Lookups never panic: a missing field or a field of the wrong type is an
// ordinary Value whose accessors report ok=false.
package jsondoc

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the JSON type held by a Value.
type Kind int

const (
	KindMissing Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "missing"
	}
}

// Value is a node of a parsed document, or the absence of one.
type Value struct {
	raw    any
	exists bool
}

// Parse decodes data as a single JSON value. Empty input is an error.
func Parse(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, fmt.Errorf("invalid JSON document: %w", err)
	}
	return Value{raw: raw, exists: true}, nil
}

// Exists reports whether the value was present in the document.
func (v Value) Exists() bool {
	return v.exists
}

// Kind returns the JSON type of the value.
func (v Value) Kind() Kind {
	if !v.exists {
		return KindMissing
	}
	switch v.raw.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case float64:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	default:
		return KindMissing
	}
}

// Get looks up a field of an object. It returns a missing Value if v is not
// an object or has no such field.
func (v Value) Get(name string) Value {
	obj, ok := v.raw.(map[string]any)
	if !ok {
		return Value{}
	}
	raw, ok := obj[name]
	return Value{raw: raw, exists: ok}
}

// Path follows a chain of object fields.
func (v Value) Path(names ...string) Value {
	cur := v
	for _, name := range names {
		cur = cur.Get(name)
	}
	return cur
}

// Index returns the i-th element of an array, or a missing Value.
func (v Value) Index(i int) Value {
	arr, ok := v.raw.([]any)
	if !ok || i < 0 || i >= len(arr) {
		return Value{}
	}
	return Value{raw: arr[i], exists: true}
}

// AsString returns the value if it is a JSON string.
func (v Value) AsString() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok
}

// AsNumber returns the value if it is a JSON number.
func (v Value) AsNumber() (float64, bool) {
	f, ok := v.raw.(float64)
	return f, ok
}

// AsBool returns the value if it is a JSON boolean.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

// AsArray returns the elements if the value is a JSON array.
func (v Value) AsArray() ([]Value, bool) {
	arr, ok := v.raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Value, len(arr))
	for i, raw := range arr {
		out[i] = Value{raw: raw, exists: true}
	}
	return out, true
}

// IsObject reports whether the value is a JSON object.
func (v Value) IsObject() bool {
	_, ok := v.raw.(map[string]any)
	return ok
}

// NumberOr returns the numeric value, or def when the value is absent or
// not a number.
func (v Value) NumberOr(def float64) float64 {
	if f, ok := v.AsNumber(); ok {
		return f
	}
	return def
}

// StringOr returns the string value, or def when the value is absent or not
// a string.
func (v Value) StringOr(def string) string {
	if s, ok := v.AsString(); ok {
		return s
	}
	return def
}
