package writable

import (
	"bytes"
	"fmt"
	"io"
)

const opaqueTag = "Opaque"

// WriteTagged writes r preceded by its type string, so that ReadTagged can
// decode it without knowing the type in advance. Opaque records keep their
// class name and payload.
func WriteTagged(w io.Writer, r Record) error {
	if r == nil {
		r = Null{}
	}

	if _, builtin := builtinKind(r); !builtin {
		if r.Kind() != KindOpaque {
			return fmt.Errorf("cannot tag record of class %s", ClassName(r))
		}
		var payload bytes.Buffer
		if err := r.Write(&payload); err != nil {
			return err
		}
		if err := writeUTF(w, opaqueTag); err != nil {
			return err
		}
		if err := writeUTF(w, ClassName(r)); err != nil {
			return err
		}
		return Bytes(payload.Bytes()).Write(w)
	}

	if err := writeUTF(w, TypeFor(r).String()); err != nil {
		return err
	}
	return r.Write(w)
}

// ReadTagged reads a record written by WriteTagged.
func ReadTagged(r io.Reader) (Record, error) {
	tag, err := readUTF(r)
	if err != nil {
		return nil, err
	}

	if tag == opaqueTag {
		class, err := readUTF(r)
		if err != nil {
			return nil, err
		}
		payload, err := Read(r, TypeOf(KindBytes))
		if err != nil {
			return nil, err
		}
		return Opaque{Class: class, Payload: payload.(Bytes)}, nil
	}

	t, err := ParseType(tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, tag)
	}
	return Read(r, t)
}

// MarshalTagged returns the tagged encoding of r.
func MarshalTagged(r Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTagged(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalTagged decodes a record produced by MarshalTagged.
func UnmarshalTagged(data []byte) (Record, error) {
	rd := bytes.NewReader(data)
	rec, err := ReadTagged(rd)
	if err != nil {
		return nil, err
	}
	if rd.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after tagged record", rd.Len())
	}
	return rec, nil
}
