package dynamic

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is a script runtime value. The set of implementations is closed.
type Value interface {
	json.Marshaler
	isValue()
}

// String is a script string.
type String string

// Number is a script number.
type Number float64

// Boolean is a script boolean.
type Boolean bool

// Null is the script null.
type Null struct{}

// Undefined is the script undefined.
type Undefined struct{}

// ByteBuffer is a raw byte buffer (an ArrayBuffer in script terms).
type ByteBuffer []byte

// Host wraps a native Go value carried through the runtime unchanged.
type Host struct {
	V any
}

// Wrap returns v as a host value.
func Wrap(v any) *Host {
	return &Host{V: v}
}

// Unwrap returns the wrapped native value.
func (h *Host) Unwrap() any {
	if h == nil {
		return nil
	}
	return h.V
}

func (String) isValue()     {}
func (Number) isValue()     {}
func (Boolean) isValue()    {}
func (Null) isValue()       {}
func (Undefined) isValue()  {}
func (ByteBuffer) isValue() {}
func (*Host) isValue()      {}
func (*Array) isValue()     {}
func (*Object) isValue()    {}

func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// MarshalJSON renders the number like the script runtime's JSON.stringify:
// non-finite numbers become null.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(formatNumber(f)), nil
}

func (b Boolean) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatBool(bool(b))), nil
}

func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (Undefined) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalJSON encodes the buffer as a base64 string.
func (b ByteBuffer) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(b))
}

func (h *Host) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(h.Unwrap())
	if err != nil {
		return nil, fmt.Errorf("failed to encode host value %T: %w", h.Unwrap(), err)
	}
	return data, nil
}

// TypeName returns the runtime type name of v as used in diagnostics.
// Script values report their script type; native values report their Go type.
func TypeName(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case String:
		return "String"
	case Number:
		return "Number"
	case Boolean:
		return "Boolean"
	case Null:
		return "Null"
	case Undefined:
		return "Undefined"
	case ByteBuffer:
		return "ArrayBuffer"
	case *Array:
		return "Array"
	case *Object:
		return "Object"
	case *Host:
		return TypeName(x.Unwrap())
	default:
		return fmt.Sprintf("%T", v)
	}
}
