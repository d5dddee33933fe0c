package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind is the JSON type held by a Value.
type Kind int

const (
	KindNull Kind = iota
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
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is an arbitrary JSON value: token properties and parameter
// values are open-ended on the wire. The zero Value is null.
// Numbers keep their literal text so big integers survive decoding.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []Value
	obj  map[string]Value
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// NumberValue wraps a number given by its literal text.
func NumberValue(n json.Number) Value { return Value{kind: KindNumber, num: n} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// ArrayValue wraps a list of values.
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// ObjectValue wraps a string-keyed map of values.
func ObjectValue(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindObject, obj: fields}
}

// Kind reports the JSON type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the number literal held by v.
func (v Value) AsNumber() (json.Number, bool) { return v.num, v.kind == KindNumber }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsArray returns the items held by v.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

// AsObject returns the fields held by v.
func (v Value) AsObject() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// Keys returns the object keys of v in sorted order, or nil.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalJSON decodes any JSON value.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	out, err := fromInterface(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// MarshalJSON encodes v back to JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toInterface())
}

func fromInterface(raw interface{}) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return BoolValue(x), nil
	case json.Number:
		return NumberValue(x), nil
	case string:
		return StringValue(x), nil
	case []interface{}:
		items := make([]Value, len(x))
		for i, item := range x {
			val, err := fromInterface(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = val
		}
		return ArrayValue(items...), nil
	case map[string]interface{}:
		fields := make(map[string]Value, len(x))
		for k, item := range x {
			val, err := fromInterface(item)
			if err != nil {
				return Value{}, err
			}
			fields[k] = val
		}
		return ObjectValue(fields), nil
	default:
		return Value{}, fmt.Errorf("unsupported json type %T", raw)
	}
}

func (v Value) toInterface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindArray:
		items := make([]interface{}, len(v.arr))
		for i, item := range v.arr {
			items[i] = item.toInterface()
		}
		return items
	case KindObject:
		fields := make(map[string]interface{}, len(v.obj))
		for k, item := range v.obj {
			fields[k] = item.toInterface()
		}
		return fields
	default:
		return nil
	}
}
