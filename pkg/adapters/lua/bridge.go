// Package lua bridges gopher-lua values and dynamic values, so that Lua
// scripts can act as processing stages between record queues.
package lua

import (
	"fmt"
	"math"
	"slices"

	"github.com/aretw0/weft/pkg/dynamic"
	lua "github.com/yuin/gopher-lua"
)

// ToDynamic converts a Lua value to a dynamic value built by scope.
//
// Tables whose keys are exactly 1..n become arrays; other tables become
// objects with their keys in sorted order. An empty table is an empty object.
// Userdata comes back as a *dynamic.Host around its Value.
func ToDynamic(lv lua.LValue, scope dynamic.Scope) (dynamic.Value, error) {
	if scope == nil {
		scope = dynamic.Global
	}

	switch v := lv.(type) {
	case *lua.LNilType:
		return dynamic.Null{}, nil
	case lua.LBool:
		return dynamic.Boolean(v), nil
	case lua.LNumber:
		return dynamic.Number(v), nil
	case lua.LString:
		return dynamic.String(v), nil
	case *lua.LUserData:
		if dv, ok := v.Value.(dynamic.Value); ok {
			return dv, nil
		}
		return dynamic.Wrap(v.Value), nil
	case *lua.LTable:
		return tableToDynamic(v, scope)
	default:
		return nil, fmt.Errorf("cannot convert Lua %s to a dynamic value", lv.Type())
	}
}

func tableToDynamic(t *lua.LTable, scope dynamic.Scope) (dynamic.Value, error) {
	if n, ok := sequenceLen(t); ok {
		elems := make([]dynamic.Value, 0, n)
		for i := 1; i <= n; i++ {
			v, err := ToDynamic(t.RawGetInt(i), scope)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			elems = append(elems, v)
		}
		return scope.NewArray(elems), nil
	}

	type entry struct {
		key   string
		value lua.LValue
	}
	var (
		entries []entry
		keyErr  error
	)
	t.ForEach(func(k, v lua.LValue) {
		switch k.(type) {
		case lua.LString, lua.LNumber, lua.LBool:
			key, err := ToDynamic(k, scope)
			if err != nil {
				keyErr = err
				return
			}
			entries = append(entries, entry{key: dynamic.PropertyKey(key), value: v})
		default:
			keyErr = fmt.Errorf("unsupported table key of type %s", k.Type())
		}
	})
	if keyErr != nil {
		return nil, keyErr
	}
	slices.SortFunc(entries, func(a, b entry) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		}
		return 0
	})

	obj := scope.NewObject()
	for _, e := range entries {
		v, err := ToDynamic(e.value, scope)
		if err != nil {
			return nil, fmt.Errorf("[%q]: %w", e.key, err)
		}
		obj.Set(e.key, v)
	}
	return obj, nil
}

// sequenceLen reports whether the keys of t are exactly 1..n for some n > 0.
func sequenceLen(t *lua.LTable) (int, bool) {
	count, maxKey, indexed := 0, 0.0, true
	t.ForEach(func(k, _ lua.LValue) {
		count++
		n, ok := k.(lua.LNumber)
		if !ok || float64(n) != math.Trunc(float64(n)) || n < 1 {
			indexed = false
			return
		}
		maxKey = max(maxKey, float64(n))
	})
	// Distinct integer keys >= 1 whose maximum equals their count are 1..count.
	if !indexed || count == 0 || maxKey != float64(count) {
		return 0, false
	}
	return count, true
}

// FromDynamic converts a dynamic value to a Lua value owned by L.
// Null and Undefined become nil, byte buffers become strings and host values
// become userdata.
func FromDynamic(L *lua.LState, v dynamic.Value) lua.LValue {
	switch x := v.(type) {
	case nil, dynamic.Null, dynamic.Undefined:
		return lua.LNil
	case dynamic.String:
		return lua.LString(x)
	case dynamic.Number:
		return lua.LNumber(x)
	case dynamic.Boolean:
		return lua.LBool(x)
	case dynamic.ByteBuffer:
		return lua.LString(x)
	case *dynamic.Array:
		t := L.CreateTable(x.Len(), 0)
		for i, e := range x.Values() {
			t.RawSetInt(i+1, FromDynamic(L, e))
		}
		return t
	case *dynamic.Object:
		t := L.CreateTable(0, x.Len())
		x.Range(func(k string, e dynamic.Value) bool {
			t.RawSetString(k, FromDynamic(L, e))
			return true
		})
		return t
	case *dynamic.Host:
		ud := L.NewUserData()
		ud.Value = x.Unwrap()
		return ud
	default:
		return lua.LNil
	}
}
