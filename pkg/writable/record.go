package writable

import (
	"fmt"
	"io"
)

// Record is a value of one of the Writable kinds.
type Record interface {
	Kind() Kind
	// Write serializes the record payload in the framework wire format.
	Write(w io.Writer) error
}

// Ordered is implemented by record kinds that support a total order.
// Only the scalar kinds of this package implement it.
type Ordered interface {
	Record
	ordered()
}

// ClassNamer lets records outside the built-in set report their class.
type ClassNamer interface {
	ClassName() string
}

// Text is a UTF-8 string record.
type Text string

func (Text) Kind() Kind { return KindText }

func (t Text) Write(w io.Writer) error {
	if err := writeVInt(w, int32(len(t))); err != nil {
		return err
	}
	_, err := io.WriteString(w, string(t))
	return err
}

// Bool is a boolean record.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

func (b Bool) Write(w io.Writer) error {
	if b {
		return writeByte(w, 1)
	}
	return writeByte(w, 0)
}

// Byte is a signed 8-bit record.
type Byte int8

func (Byte) Kind() Kind { return KindByte }

func (b Byte) Write(w io.Writer) error { return writeByte(w, byte(b)) }

// Int32 is a fixed-width 32-bit integer record.
type Int32 int32

func (Int32) Kind() Kind { return KindInt32 }

func (i Int32) Write(w io.Writer) error { return writeInt32(w, int32(i)) }

// Int64 is a fixed-width 64-bit integer record.
type Int64 int64

func (Int64) Kind() Kind { return KindInt64 }

func (i Int64) Write(w io.Writer) error { return writeInt64(w, int64(i)) }

// VInt32 is a 32-bit integer stored with the variable-length encoding.
type VInt32 int32

func (VInt32) Kind() Kind { return KindVInt32 }

func (i VInt32) Write(w io.Writer) error { return writeVInt(w, int32(i)) }

// VInt64 is a 64-bit integer stored with the variable-length encoding.
type VInt64 int64

func (VInt64) Kind() Kind { return KindVInt64 }

func (i VInt64) Write(w io.Writer) error { return writeVLong(w, int64(i)) }

// Float32 is a single precision record.
type Float32 float32

func (Float32) Kind() Kind { return KindFloat32 }

func (f Float32) Write(w io.Writer) error { return writeFloat32(w, float32(f)) }

// Float64 is a double precision record.
type Float64 float64

func (Float64) Kind() Kind { return KindFloat64 }

func (f Float64) Write(w io.Writer) error { return writeFloat64(w, float64(f)) }

// Bytes is a raw byte sequence record.
type Bytes []byte

func (Bytes) Kind() Kind { return KindBytes }

func (b Bytes) Write(w io.Writer) error {
	if err := writeInt32(w, int32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// Null is the empty record. It has no payload.
type Null struct{}

func (Null) Kind() Kind { return KindNull }

func (Null) Write(io.Writer) error { return nil }

func (Text) ordered()    {}
func (Bool) ordered()    {}
func (Byte) ordered()    {}
func (Int32) ordered()   {}
func (Int64) ordered()   {}
func (VInt32) ordered()  {}
func (VInt64) ordered()  {}
func (Float32) ordered() {}
func (Float64) ordered() {}
func (Bytes) ordered()   {}
func (Null) ordered()    {}

// Array is an ordered sequence of records. The framework expects the elements
// to share one kind, but nothing here enforces it.
type Array struct {
	Values []Record
}

// NewArray builds an array from the given values.
func NewArray(values ...Record) Array {
	return Array{Values: values}
}

func (Array) Kind() Kind { return KindArray }

// Len returns the number of elements.
func (a Array) Len() int { return len(a.Values) }

// Write emits the element count followed by each element payload.
// Element classes are not written.
func (a Array) Write(w io.Writer) error {
	if err := writeInt32(w, int32(len(a.Values))); err != nil {
		return err
	}
	for i, v := range a.Values {
		if v == nil {
			v = Null{}
		}
		if err := v.Write(w); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Opaque carries a record of a class unknown to this package.
// Payload holds its serialized form.
type Opaque struct {
	Class   string
	Payload []byte
}

func (Opaque) Kind() Kind { return KindOpaque }

// ClassName returns the class the payload was produced by.
func (o Opaque) ClassName() string { return o.Class }

func (o Opaque) Write(w io.Writer) error {
	_, err := w.Write(o.Payload)
	return err
}

// builtinKind reports the kind of records implemented by this package.
func builtinKind(r Record) (Kind, bool) {
	switch r.(type) {
	case Text, Bool, Byte, Int32, Int64, VInt32, VInt64, Float32, Float64,
		Bytes, Null, Array, *Map, *SortedMap:
		return r.Kind(), true
	default:
		return KindOpaque, false
	}
}

// IsBuiltin reports whether r is one of the record types of this package.
// Opaque is not considered built-in.
func IsBuiltin(r Record) bool {
	_, ok := builtinKind(r)
	return ok
}

// ClassName returns the framework class name of r, used in diagnostics and in
// map class tables. Records outside the built-in set report their Go type
// unless they implement ClassNamer.
func ClassName(r Record) string {
	if r == nil {
		return "<nil>"
	}
	if k, ok := builtinKind(r); ok {
		return k.ClassName()
	}
	if n, ok := r.(ClassNamer); ok {
		return n.ClassName()
	}
	return fmt.Sprintf("%T", r)
}
