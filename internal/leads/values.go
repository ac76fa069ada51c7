package leads

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Value is a submitted form value: either a single string or an ordered list
// of strings (checkbox groups, multi-selects, repeated keys).
type Value struct {
	items []string
	list  bool
}

// Single wraps one string.
func Single(s string) Value {
	return Value{items: []string{s}}
}

// List wraps an ordered list of strings.
func List(items ...string) Value {
	return Value{items: append([]string(nil), items...), list: true}
}

// IsZero reports whether the value is absent.
func (v Value) IsZero() bool {
	return v.items == nil && !v.list
}

// IsList reports whether the value holds a list.
func (v Value) IsList() bool {
	return v.list
}

// String returns the single value, or the first list element.
func (v Value) String() string {
	if len(v.items) == 0 {
		return ""
	}
	return v.items[0]
}

// Strings returns a copy of every value in order.
func (v Value) Strings() []string {
	return append([]string(nil), v.items...)
}

// Truthy reports whether the value counts as provided: a non-empty string or
// a non-empty list.
func (v Value) Truthy() bool {
	if v.list {
		return len(v.items) > 0
	}
	return v.String() != ""
}

func (v Value) with(s string) Value {
	items := append(v.Strings(), s)
	return Value{items: items, list: true}
}

// MarshalJSON encodes a single value as a string and a list as an array.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.list {
		if v.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.items)
	}
	if v.items == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v.items[0])
}

// UnmarshalJSON accepts strings, arrays, booleans, numbers and objects.
// false and numeric zero decode as "" so they stay falsy; objects and nested
// arrays keep their compact JSON text; null decodes to the zero Value.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	if data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		items := make([]string, 0, len(raw))
		for _, elem := range raw {
			s, ok, err := scalarString(elem)
			if err != nil {
				return err
			}
			if ok {
				items = append(items, s)
			}
		}
		*v = Value{items: items, list: true}
		return nil
	}
	s, ok, err := scalarString(data)
	if err != nil {
		return err
	}
	if !ok {
		*v = Value{}
		return nil
	}
	*v = Single(s)
	return nil
}

func scalarString(data json.RawMessage) (string, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", false, nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return s, true, nil
	case 't':
		return "true", true, nil
	case 'f':
		return "", true, nil
	case 'n':
		return "", false, nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return "", false, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return buf.String(), true, nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return "", false, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		if f, err := n.Float64(); err == nil && f == 0 {
			return "", true, nil
		}
		return n.String(), true, nil
	}
}

// Values maps field names to values, preserving first-seen key order. The
// zero value is ready to use.
type Values struct {
	keys []string
	m    map[string]Value
}

// Add merges one occurrence of key: the first occurrence takes the slot and
// later occurrences append, turning the slot into a list.
func (v *Values) Add(key, value string) {
	if v.m == nil {
		v.m = make(map[string]Value)
	}
	existing, ok := v.m[key]
	if !ok {
		v.keys = append(v.keys, key)
		v.m[key] = Single(value)
		return
	}
	v.m[key] = existing.with(value)
}

// Set replaces the value for key, keeping its original position.
func (v *Values) Set(key string, value Value) {
	if v.m == nil {
		v.m = make(map[string]Value)
	}
	if _, ok := v.m[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.m[key] = value
}

// Get returns the value for key.
func (v Values) Get(key string) (Value, bool) {
	val, ok := v.m[key]
	return val, ok
}

// String returns the single (or first) value for key, or "".
func (v Values) String(key string) string {
	return v.m[key].String()
}

// Delete removes key.
func (v *Values) Delete(key string) {
	if _, ok := v.m[key]; !ok {
		return
	}
	delete(v.m, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the field names in first-seen order.
func (v Values) Keys() []string {
	return append([]string(nil), v.keys...)
}

// Len returns the number of distinct fields.
func (v Values) Len() int {
	return len(v.keys)
}

// MarshalJSON writes an object in key order.
func (v Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range v.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		val, err := v.m[key].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping key order. Null members are dropped.
func (v *Values) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrInvalidBody
	}
	out := Values{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		key, ok := tok.(string)
		if !ok {
			return ErrInvalidBody
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		var val Value
		if err := val.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		if val.IsZero() {
			continue
		}
		out.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	*v = out
	return nil
}

// LogValue renders the fields as a slog group in key order.
func (v Values) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(v.keys))
	for _, key := range v.keys {
		val := v.m[key]
		if val.IsList() {
			attrs = append(attrs, slog.String(key, strings.Join(val.items, ", ")))
			continue
		}
		attrs = append(attrs, slog.String(key, val.String()))
	}
	return slog.GroupValue(attrs...)
}
