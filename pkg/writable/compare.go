package writable

import (
	"bytes"
	"cmp"
	"slices"
	"strings"
)

// Compare orders two order-capable records. Records of different kinds are
// ordered by kind; within a kind the natural order of the value applies.
// Text and Bytes compare as unsigned byte sequences.
func Compare(a, b Ordered) int {
	if ka, kb := a.Kind(), b.Kind(); ka != kb {
		return cmp.Compare(ka, kb)
	}

	switch x := a.(type) {
	case Text:
		return strings.Compare(string(x), string(b.(Text)))
	case Bool:
		// false < true
		switch y := b.(Bool); {
		case x == y:
			return 0
		case !bool(x):
			return -1
		default:
			return 1
		}
	case Byte:
		return cmp.Compare(x, b.(Byte))
	case Int32:
		return cmp.Compare(x, b.(Int32))
	case Int64:
		return cmp.Compare(x, b.(Int64))
	case VInt32:
		return cmp.Compare(x, b.(VInt32))
	case VInt64:
		return cmp.Compare(x, b.(VInt64))
	case Float32:
		return cmp.Compare(x, b.(Float32))
	case Float64:
		return cmp.Compare(x, b.(Float64))
	case Bytes:
		return bytes.Compare(x, b.(Bytes))
	default:
		return 0
	}
}

// Equal reports whether two records have the same content.
// Map equality ignores entry order.
func Equal(a, b Record) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return contentKey(a) == contentKey(b)
}

// contentKey renders r into a string that is equal for records of equal
// content. Scalars use their class and wire bytes; containers recurse so that
// array element classes and map entry sets take part in the key.
func contentKey(r Record) string {
	var sb strings.Builder
	appendKey(&sb, r)
	return sb.String()
}

func appendKey(sb *strings.Builder, r Record) {
	if r == nil {
		r = Null{}
	}
	sb.WriteString(ClassName(r))
	sb.WriteByte(0)

	switch x := r.(type) {
	case Array:
		sb.WriteByte('[')
		for _, v := range x.Values {
			appendLenKey(sb, v)
		}
		sb.WriteByte(']')
	case *Map:
		keys := make([]string, 0, x.Len())
		for _, e := range x.entries {
			keys = append(keys, contentKey(e.Key)+"\x00"+contentKey(e.Value))
		}
		slices.Sort(keys)
		sb.WriteByte('{')
		for _, k := range keys {
			writeLen(sb, len(k))
			sb.WriteString(k)
		}
		sb.WriteByte('}')
	case *SortedMap:
		sb.WriteByte('{')
		for _, e := range x.entries {
			appendLenKey(sb, e.Key)
			appendLenKey(sb, e.Value)
		}
		sb.WriteByte('}')
	default:
		var buf bytes.Buffer
		if err := r.Write(&buf); err != nil {
			sb.WriteString(err.Error())
			return
		}
		sb.Write(buf.Bytes())
	}
}

func appendLenKey(sb *strings.Builder, r Record) {
	k := contentKey(r)
	writeLen(sb, len(k))
	sb.WriteString(k)
}

func writeLen(sb *strings.Builder, n int) {
	var buf bytes.Buffer
	_ = writeVLong(&buf, int64(n))
	sb.Write(buf.Bytes())
}
