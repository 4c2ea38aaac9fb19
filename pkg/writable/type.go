package writable

import (
	"fmt"
	"strings"
)

// Type describes how to decode a record. Elem is only set for arrays, whose
// element class is not present on the wire.
type Type struct {
	Kind Kind
	Elem *Type
}

// TypeOf returns the type of a non-array kind.
func TypeOf(k Kind) Type {
	return Type{Kind: k}
}

// ArrayOf returns the type of an array with the given element type.
func ArrayOf(elem Type) Type {
	return Type{Kind: KindArray, Elem: &elem}
}

// String renders the type in the syntax accepted by ParseType.
func (t Type) String() string {
	if t.Kind == KindArray {
		if t.Elem == nil {
			return "[]"
		}
		return "[" + t.Elem.String() + "]"
	}
	return t.Kind.String()
}

// TypeFor derives the decoding type of r. Arrays take the type of their first
// element; an empty array is typed as an array of Null.
func TypeFor(r Record) Type {
	if r == nil {
		return TypeOf(KindNull)
	}
	arr, ok := r.(Array)
	if !ok {
		return TypeOf(r.Kind())
	}
	if len(arr.Values) == 0 {
		return ArrayOf(TypeOf(KindNull))
	}
	return ArrayOf(TypeFor(arr.Values[0]))
}

// ParseType converts a type string to a Type.
// Supports kind names and aliases ("int32", "Text", "LongWritable") and
// arrays written as "[elem]", e.g. "[[text]]".
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)

	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elem, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return Type{}, err
		}
		return ArrayOf(elem), nil
	}

	k, err := ParseKind(typeStr)
	if err != nil {
		return Type{}, err
	}
	if k == KindArray {
		return Type{}, fmt.Errorf("array type needs an element type, e.g. [text]")
	}
	return TypeOf(k), nil
}
