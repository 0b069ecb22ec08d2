package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/ag-ui/a2ui-go/pkg/encoding"
)

// FromAny converts a decoded JSON tree (as produced by json.Unmarshal into any)
// into a Value. Integer and json.Number inputs are accepted for convenience.
// Unsupported Go types become Null.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null{}
	case Value:
		return t
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(t)
	case int:
		return Number(t)
	case int32:
		return Number(t)
	case int64:
		return Number(t)
	case uint64:
		return Number(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case string:
		return String(t)
	case []any:
		out := make(Array, len(t))
		for i, e := range t {
			out[i] = FromAny(e)
		}
		return out
	case map[string]any:
		out := make(Map, len(t))
		for k, e := range t {
			out[k] = FromAny(e)
		}
		return out
	case []string:
		out := make(Array, len(t))
		for i, e := range t {
			out[i] = String(e)
		}
		return out
	}
	return Null{}
}

// ToAny converts v into plain Go values suitable for any JSON encoder.
func ToAny(v Value) any {
	switch t := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(t)
	case Number:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case String:
		return string(t)
	case Array:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToAny(e)
		}
		return out
	case Map:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = ToAny(e)
		}
		return out
	}
	return nil
}

// Parse decodes a JSON document into a Value.
func Parse(data []byte) (Value, error) {
	var x any
	if err := encoding.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("failed to parse value: %w", err)
	}
	return FromAny(x), nil
}

// Marshal encodes v as JSON with map keys sorted.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch t := v.(type) {
	case Array:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case Map:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := encoding.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := writeJSON(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		b, err := encoding.Marshal(ToAny(v))
		if err != nil {
			return fmt.Errorf("failed to marshal value: %w", err)
		}
		buf.Write(b)
		return nil
	}
}

func (v Null) MarshalJSON() ([]byte, error)   { return []byte("null"), nil }
func (v Bool) MarshalJSON() ([]byte, error)   { return Marshal(v) }
func (v Number) MarshalJSON() ([]byte, error) { return Marshal(v) }
func (v String) MarshalJSON() ([]byte, error) { return Marshal(v) }
func (v Array) MarshalJSON() ([]byte, error)  { return Marshal(v) }
func (v Map) MarshalJSON() ([]byte, error)    { return Marshal(v) }

// UnmarshalJSON decodes any JSON array into an Array.
func (v *Array) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	arr, ok := parsed.(Array)
	if !ok {
		return fmt.Errorf("expected JSON array, got %s", KindOf(parsed))
	}
	*v = arr
	return nil
}

// UnmarshalJSON decodes any JSON object into a Map.
func (v *Map) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	m, ok := parsed.(Map)
	if !ok {
		return fmt.Errorf("expected JSON object, got %s", KindOf(parsed))
	}
	*v = m
	return nil
}
