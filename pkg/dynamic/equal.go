package dynamic

import (
	"bytes"
	"math"
	"reflect"
)

// Equal reports whether a and b have the same content. Object property order
// is ignored, NaN equals NaN and Null differs from Undefined.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Number:
		y, ok := b.(Number)
		if !ok {
			return false
		}
		if math.IsNaN(float64(x)) {
			return math.IsNaN(float64(y))
		}
		return x == y
	case ByteBuffer:
		y, ok := b.(ByteBuffer)
		return ok && bytes.Equal(x, y)
	case *Host:
		y, ok := b.(*Host)
		return ok && reflect.DeepEqual(x.Unwrap(), y.Unwrap())
	case *Array:
		y, ok := b.(*Array)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := range x.Len() {
			if !Equal(x.At(i), y.At(i)) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		equal := true
		x.Range(func(k string, v Value) bool {
			w, found := y.Get(k)
			equal = found && Equal(v, w)
			return equal
		})
		return equal
	default:
		return a == b
	}
}
