package writable

import (
	"bytes"
	"fmt"
	"io"
	"math"
)

// Marshal returns the wire encoding of r.
func Marshal(r Record) ([]byte, error) {
	if r == nil {
		r = Null{}
	}
	var buf bytes.Buffer
	if err := r.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", ClassName(r), err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a single record of type t from data.
// Trailing bytes are an error.
func Unmarshal(data []byte, t Type) (Record, error) {
	rd := bytes.NewReader(data)
	rec, err := Read(rd, t)
	if err != nil {
		return nil, err
	}
	if rd.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after %s", rd.Len(), t)
	}
	return rec, nil
}

// Read decodes one record of type t from r.
func Read(r io.Reader, t Type) (Record, error) {
	switch t.Kind {
	case KindNull:
		return Null{}, nil

	case KindText:
		n, err := readVInt(r)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("negative text length: %d", n)
		}
		data, err := readN(r, int64(n))
		if err != nil {
			return nil, err
		}
		return Text(data), nil

	case KindBool:
		b, err := readByte(r)
		if err != nil {
			return nil, err
		}
		return Bool(b != 0), nil

	case KindByte:
		b, err := readByte(r)
		if err != nil {
			return nil, err
		}
		return Byte(int8(b)), nil

	case KindInt32:
		v, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		return Int32(v), nil

	case KindInt64:
		v, err := readInt64(r)
		if err != nil {
			return nil, err
		}
		return Int64(v), nil

	case KindVInt32:
		v, err := readVInt(r)
		if err != nil {
			return nil, err
		}
		return VInt32(v), nil

	case KindVInt64:
		v, err := readVLong(r)
		if err != nil {
			return nil, err
		}
		return VInt64(v), nil

	case KindFloat32:
		v, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		return Float32(math.Float32frombits(uint32(v))), nil

	case KindFloat64:
		v, err := readInt64(r)
		if err != nil {
			return nil, err
		}
		return Float64(math.Float64frombits(uint64(v))), nil

	case KindBytes:
		n, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("negative bytes length: %d", n)
		}
		data, err := readN(r, int64(n))
		if err != nil {
			return nil, err
		}
		return Bytes(data), nil

	case KindArray:
		if t.Elem == nil {
			return nil, ErrElementType
		}
		n, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("negative array length: %d", n)
		}
		values := make([]Record, 0, min(int(n), 1024))
		for i := int32(0); i < n; i++ {
			v, err := Read(r, *t.Elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			values = append(values, v)
		}
		return Array{Values: values}, nil

	case KindMap:
		entries, err := readMapEntries(r)
		if err != nil {
			return nil, err
		}
		m := NewMap()
		for _, e := range entries {
			m.Put(e.Key, e.Value)
		}
		return m, nil

	case KindSortedMap:
		entries, err := readMapEntries(r)
		if err != nil {
			return nil, err
		}
		m := NewSortedMap()
		for i, e := range entries {
			key, ok := e.Key.(Ordered)
			if !ok {
				return nil, fmt.Errorf("key %d: %s is not order-capable", i, ClassName(e.Key))
			}
			m.Put(key, e.Value)
		}
		return m, nil

	default:
		return nil, fmt.Errorf("cannot decode %s: %w", t, ErrUnknownClass)
	}
}
