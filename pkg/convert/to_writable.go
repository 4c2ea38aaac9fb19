package convert

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"reflect"
	"slices"

	"github.com/aretw0/weft/pkg/dynamic"
	"github.com/aretw0/weft/pkg/writable"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// InferNumber narrows a script number to the smallest fitting record:
// integral values in int32 range become Int32, other integral values in int64
// range become Int64, everything else (fractions, NaN, infinities) Float64.
func InferNumber(f float64) writable.Ordered {
	if f == math.Trunc(f) {
		if f >= math.MinInt32 && f <= math.MaxInt32 {
			return writable.Int32(int32(f))
		}
		// 2^63 is the first float64 above MaxInt64.
		if f >= math.MinInt64 && f < 1<<63 {
			return writable.Int64(int64(f))
		}
	}
	return writable.Float64(f)
}

func orderedFunc(name string, match func(any) bool, do func(any) writable.Ordered) OrderedFunc {
	return OrderedFunc{
		Name:  name,
		Match: match,
		Do: func(_ *Dispatcher, v any, _ dynamic.Scope) (writable.Ordered, error) {
			return do(v), nil
		},
	}
}

var nullConverter = orderedFunc("null",
	func(v any) bool {
		switch v.(type) {
		case nil, dynamic.Null, dynamic.Undefined:
			return true
		}
		return false
	},
	func(any) writable.Ordered { return writable.Null{} },
)

// scalarConverters are shared by the plain and the order-capable lists,
// right after the null and passthrough converters.
var scalarConverters = []OrderedFunc{
	orderedFunc("text",
		func(v any) bool {
			switch v.(type) {
			case string, dynamic.String:
				return true
			}
			return false
		},
		func(v any) writable.Ordered {
			if s, ok := v.(dynamic.String); ok {
				return writable.Text(s)
			}
			return writable.Text(v.(string))
		},
	),
	orderedFunc("bool",
		func(v any) bool {
			switch v.(type) {
			case bool, dynamic.Boolean:
				return true
			}
			return false
		},
		func(v any) writable.Ordered {
			if b, ok := v.(dynamic.Boolean); ok {
				return writable.Bool(b)
			}
			return writable.Bool(v.(bool))
		},
	),
	orderedFunc("bytes",
		func(v any) bool {
			switch v.(type) {
			case []byte, dynamic.ByteBuffer:
				return true
			}
			return isByteArray(reflect.ValueOf(v))
		},
		func(v any) writable.Ordered {
			switch b := v.(type) {
			case dynamic.ByteBuffer:
				return writable.Bytes(bytes.Clone(b))
			case []byte:
				return writable.Bytes(bytes.Clone(b))
			}
			rv := reflect.ValueOf(v)
			out := make([]byte, rv.Len())
			for i := range out {
				out[i] = byte(rv.Index(i).Uint())
			}
			return writable.Bytes(out)
		},
	),
	orderedFunc("byte",
		func(v any) bool { _, ok := v.(int8); return ok },
		func(v any) writable.Ordered { return writable.Byte(v.(int8)) },
	),
	orderedFunc("float32",
		func(v any) bool { _, ok := v.(float32); return ok },
		func(v any) writable.Ordered { return writable.Float32(v.(float32)) },
	),
	orderedFunc("int32",
		func(v any) bool {
			switch v.(type) {
			case int16, int32:
				return true
			}
			return false
		},
		func(v any) writable.Ordered {
			if i, ok := v.(int16); ok {
				return writable.Int32(i)
			}
			return writable.Int32(v.(int32))
		},
	),
	orderedFunc("int64",
		func(v any) bool { _, ok := v.(int64); return ok },
		func(v any) writable.Ordered { return writable.Int64(v.(int64)) },
	),
	orderedFunc("vint32",
		func(v any) bool { _, ok := v.(dynamic.VarInt32); return ok },
		func(v any) writable.Ordered { return writable.VInt32(v.(dynamic.VarInt32)) },
	),
	orderedFunc("vint64",
		func(v any) bool { _, ok := v.(dynamic.VarInt64); return ok },
		func(v any) writable.Ordered { return writable.VInt64(v.(dynamic.VarInt64)) },
	),
	orderedFunc("int",
		func(v any) bool { _, ok := v.(int); return ok },
		func(v any) writable.Ordered {
			i := v.(int)
			if i >= math.MinInt32 && i <= math.MaxInt32 {
				return writable.Int32(int32(i))
			}
			return writable.Int64(int64(i))
		},
	),
	orderedFunc("number",
		func(v any) bool {
			switch v.(type) {
			case float64, dynamic.Number:
				return true
			}
			return false
		},
		func(v any) writable.Ordered {
			if n, ok := v.(dynamic.Number); ok {
				return InferNumber(float64(n))
			}
			return InferNumber(v.(float64))
		},
	),
}

func defaultOrderedWritable() []OrderedConverter {
	list := []OrderedConverter{
		nullConverter,
		OrderedFunc{
			Name:  "passthrough",
			Match: func(v any) bool { _, ok := v.(writable.Ordered); return ok },
			Do: func(_ *Dispatcher, v any, _ dynamic.Scope) (writable.Ordered, error) {
				return v.(writable.Ordered), nil
			},
		},
	}
	for _, c := range scalarConverters {
		list = append(list, c)
	}
	return list
}

func defaultWritable() []WritableConverter {
	list := []WritableConverter{
		plain(nullConverter),
		WritableFunc{
			Name:  "passthrough",
			Match: func(v any) bool { _, ok := v.(writable.Record); return ok },
			Do: func(_ *Dispatcher, v any, _ dynamic.Scope) (writable.Record, error) {
				return v.(writable.Record), nil
			},
		},
	}
	for _, c := range scalarConverters {
		list = append(list, plain(c))
	}
	return append(list,
		WritableFunc{Name: "sorted_map", Match: isSorted, Do: sortedMapFrom},
		WritableFunc{Name: "array", Match: isList, Do: arrayFrom},
		WritableFunc{Name: "map", Match: isAssociative, Do: mapFrom},
	)
}

// plain exposes an order-capable converter in the plain list.
func plain(c OrderedFunc) WritableFunc {
	return WritableFunc{
		Name:  c.Name,
		Match: c.Match,
		Do: func(d *Dispatcher, v any, scope dynamic.Scope) (writable.Record, error) {
			return c.Do(d, v, scope)
		},
	}
}

func isSorted(v any) bool {
	_, ok := v.(dynamic.SortedSource)
	return ok
}

func sortedMapFrom(d *Dispatcher, v any, scope dynamic.Scope) (writable.Record, error) {
	src := v.(dynamic.SortedSource).Source
	pairs, ok := entriesOf(unwrap(src))
	if !ok {
		return nil, &NoConverterError{Direction: ToWritable, TypeName: "Sorted(" + dynamic.TypeName(src) + ")"}
	}

	m := writable.NewSortedMap()
	for _, p := range pairs {
		key, err := d.ToOrderedWritable(p.key, scope)
		if err != nil {
			return nil, err
		}
		value, err := d.ToWritable(p.value, scope)
		if err != nil {
			return nil, err
		}
		m.Put(key, value)
	}
	return m, nil
}

var emptyStruct = reflect.TypeOf(struct{}{})

// isByteArray reports fixed-size byte arrays such as [16]byte.
func isByteArray(rv reflect.Value) bool {
	return rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8
}

// isSet reports Go sets, maps whose values carry no data.
func isSet(rv reflect.Value) bool {
	return rv.Kind() == reflect.Map && rv.Type().Elem() == emptyStruct
}

func isList(v any) bool {
	if _, ok := v.(*dynamic.Array); ok {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return isSet(rv)
	}
}

func arrayFrom(d *Dispatcher, v any, scope dynamic.Scope) (writable.Record, error) {
	var elems []any
	if arr, ok := v.(*dynamic.Array); ok {
		for _, e := range arr.Values() {
			elems = append(elems, e)
		}
	} else {
		rv := reflect.ValueOf(v)
		if isSet(rv) {
			for _, k := range sortedKeys(rv) {
				elems = append(elems, k.Interface())
			}
		} else {
			for i := range rv.Len() {
				elems = append(elems, rv.Index(i).Interface())
			}
		}
	}

	values := make([]writable.Record, 0, len(elems))
	for _, e := range elems {
		rec, err := d.ToWritable(e, scope)
		if err != nil {
			return nil, err
		}
		values = append(values, rec)
	}
	return writable.NewArray(values...), nil
}

type pair struct {
	key, value any
}

func isAssociative(v any) bool {
	_, ok := entriesOf(v)
	return ok
}

func mapFrom(d *Dispatcher, v any, scope dynamic.Scope) (writable.Record, error) {
	pairs, _ := entriesOf(v)
	m := writable.NewMap()
	for _, p := range pairs {
		key, err := d.ToWritable(p.key, scope)
		if err != nil {
			return nil, err
		}
		value, err := d.ToWritable(p.value, scope)
		if err != nil {
			return nil, err
		}
		m.Put(key, value)
	}
	return m, nil
}

// entriesOf lists the entries of an associative value: objects and ordered
// maps in their own order, Go maps sorted by key.
func entriesOf(v any) ([]pair, bool) {
	switch m := v.(type) {
	case *dynamic.Object:
		var pairs []pair
		m.Range(func(k string, v dynamic.Value) bool {
			pairs = append(pairs, pair{key: dynamic.String(k), value: v})
			return true
		})
		return pairs, true
	case *orderedmap.OrderedMap[any, any]:
		return orderedPairs(m), true
	case *orderedmap.OrderedMap[string, any]:
		return orderedPairs(m), true
	case *orderedmap.OrderedMap[string, dynamic.Value]:
		return orderedPairs(m), true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || isSet(rv) {
		return nil, false
	}
	pairs := make([]pair, 0, rv.Len())
	for _, k := range sortedKeys(rv) {
		pairs = append(pairs, pair{key: k.Interface(), value: rv.MapIndex(k).Interface()})
	}
	return pairs, true
}

func orderedPairs[K comparable, V any](m *orderedmap.OrderedMap[K, V]) []pair {
	if m == nil {
		return nil
	}
	pairs := make([]pair, 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		pairs = append(pairs, pair{key: p.Key, value: p.Value})
	}
	return pairs
}

// sortedKeys returns the keys of a Go map in a deterministic order: keys are
// grouped as strings, signed, unsigned, floating point and anything else,
// then ordered by value, type name and printed form.
func sortedKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	slices.SortFunc(keys, compareKeys)
	return keys
}

const (
	keyString = iota
	keyInt
	keyUint
	keyFloat
	keyOther
)

func keyGroup(v reflect.Value) int {
	switch {
	case v.Kind() == reflect.String:
		return keyString
	case v.CanInt():
		return keyInt
	case v.CanUint():
		return keyUint
	case v.CanFloat():
		return keyFloat
	default:
		return keyOther
	}
}

func compareKeys(a, b reflect.Value) int {
	for a.Kind() == reflect.Interface {
		a = a.Elem()
	}
	for b.Kind() == reflect.Interface {
		b = b.Elem()
	}
	if !a.IsValid() || !b.IsValid() {
		return cmp.Compare(boolRank(a.IsValid()), boolRank(b.IsValid()))
	}

	ga, gb := keyGroup(a), keyGroup(b)
	if c := cmp.Compare(ga, gb); c != 0 {
		return c
	}
	c := 0
	switch ga {
	case keyString:
		c = cmp.Compare(a.String(), b.String())
	case keyInt:
		c = cmp.Compare(a.Int(), b.Int())
	case keyUint:
		c = cmp.Compare(a.Uint(), b.Uint())
	case keyFloat:
		c = cmp.Compare(a.Float(), b.Float())
	}
	if c != 0 {
		return c
	}
	// Equal values of different types ("k" and dynamic.String("k")) order by type name.
	if c := cmp.Compare(a.Type().String(), b.Type().String()); c != 0 {
		return c
	}
	return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
