package convert

import (
	"bytes"

	"github.com/aretw0/weft/pkg/dynamic"
	"github.com/aretw0/weft/pkg/writable"
)

func dynamicFunc(name string, match func(writable.Record) bool, do func(writable.Record) dynamic.Value) DynamicFunc {
	return DynamicFunc{
		Name:  name,
		Match: match,
		Do: func(_ *Dispatcher, r writable.Record, _ dynamic.Scope) (dynamic.Value, error) {
			return do(r), nil
		},
	}
}

func is[T writable.Record](r writable.Record) bool {
	_, ok := r.(T)
	return ok
}

// scalarDynamic covers the order-capable kinds. All numeric kinds widen to
// Number; Int64 values beyond 2^53 lose precision.
var scalarDynamic = []DynamicFunc{
	dynamicFunc("null", is[writable.Null], func(writable.Record) dynamic.Value {
		return dynamic.Null{}
	}),
	dynamicFunc("text", is[writable.Text], func(r writable.Record) dynamic.Value {
		return dynamic.String(r.(writable.Text))
	}),
	dynamicFunc("bool", is[writable.Bool], func(r writable.Record) dynamic.Value {
		return dynamic.Boolean(r.(writable.Bool))
	}),
	dynamicFunc("byte", is[writable.Byte], func(r writable.Record) dynamic.Value {
		return dynamic.Number(r.(writable.Byte))
	}),
	dynamicFunc("int32", is[writable.Int32], func(r writable.Record) dynamic.Value {
		return dynamic.Number(r.(writable.Int32))
	}),
	dynamicFunc("int64", is[writable.Int64], func(r writable.Record) dynamic.Value {
		return dynamic.Number(r.(writable.Int64))
	}),
	dynamicFunc("vint32", is[writable.VInt32], func(r writable.Record) dynamic.Value {
		return dynamic.Number(r.(writable.VInt32))
	}),
	dynamicFunc("vint64", is[writable.VInt64], func(r writable.Record) dynamic.Value {
		return dynamic.Number(r.(writable.VInt64))
	}),
	dynamicFunc("float32", is[writable.Float32], func(r writable.Record) dynamic.Value {
		return dynamic.Number(r.(writable.Float32))
	}),
	dynamicFunc("float64", is[writable.Float64], func(r writable.Record) dynamic.Value {
		return dynamic.Number(r.(writable.Float64))
	}),
	dynamicFunc("bytes", is[writable.Bytes], func(r writable.Record) dynamic.Value {
		return dynamic.ByteBuffer(bytes.Clone(r.(writable.Bytes)))
	}),
}

func defaultOrderedDynamic() []DynamicConverter {
	list := make([]DynamicConverter, 0, len(scalarDynamic))
	for _, c := range scalarDynamic {
		list = append(list, c)
	}
	return list
}

func defaultDynamic() []DynamicConverter {
	return append(defaultOrderedDynamic(),
		DynamicFunc{Name: "array", Match: is[writable.Array], Do: arrayToDynamic},
		DynamicFunc{Name: "map", Match: is[*writable.Map], Do: mapToDynamic},
		DynamicFunc{Name: "sorted_map", Match: is[*writable.SortedMap], Do: sortedMapToDynamic},
	)
}

func arrayToDynamic(d *Dispatcher, r writable.Record, scope dynamic.Scope) (dynamic.Value, error) {
	arr := r.(writable.Array)
	values := make([]dynamic.Value, 0, arr.Len())
	for _, e := range arr.Values {
		v, err := d.ToDynamic(e, scope)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return scope.NewArray(values), nil
}

func mapToDynamic(d *Dispatcher, r writable.Record, scope dynamic.Scope) (dynamic.Value, error) {
	obj := scope.NewObject()
	for _, e := range r.(*writable.Map).Entries() {
		key, err := d.ToDynamic(e.Key, scope)
		if err != nil {
			return nil, err
		}
		value, err := d.ToDynamic(e.Value, scope)
		if err != nil {
			return nil, err
		}
		obj.Set(dynamic.PropertyKey(key), value)
	}
	return obj, nil
}

func sortedMapToDynamic(d *Dispatcher, r writable.Record, scope dynamic.Scope) (dynamic.Value, error) {
	obj := scope.NewObject()
	for _, e := range r.(*writable.SortedMap).Entries() {
		key, err := d.OrderedToDynamic(e.Key, scope)
		if err != nil {
			return nil, err
		}
		value, err := d.ToDynamic(e.Value, scope)
		if err != nil {
			return nil, err
		}
		obj.Set(dynamic.PropertyKey(key), value)
	}
	return obj, nil
}
