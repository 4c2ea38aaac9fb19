package lua

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/weft/pkg/dynamic"
	lua "github.com/yuin/gopher-lua"
)

// ModuleName is the global table scripts use to reach the helpers.
const ModuleName = "weft"

// Script is a compiled Lua chunk whose entry function transforms one value.
// An LState is not goroutine safe, so calls are serialized.
type Script struct {
	mu    sync.Mutex
	state *lua.LState
	entry *lua.LFunction
	scope dynamic.Scope
}

// NewState creates a Lua state with the weft helper module installed:
//
//	weft.sorted(t)  -- request a SortedMapWritable for table t
//	weft.vint(n)    -- request a VIntWritable
//	weft.vlong(n)   -- request a VLongWritable
//	weft.bytes(s)   -- request a BytesWritable from string s
func NewState(scope dynamic.Scope) *lua.LState {
	if scope == nil {
		scope = dynamic.Global
	}
	L := lua.NewState()

	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"sorted": func(L *lua.LState) int {
			v, err := ToDynamic(L.CheckTable(1), scope)
			if err != nil {
				L.RaiseError("%s", err.Error())
				return 0
			}
			// An array-shaped table still sorts by its indices.
			if arr, ok := v.(*dynamic.Array); ok {
				obj := scope.NewObject()
				for i, e := range arr.Values() {
					obj.Set(dynamic.PropertyKey(dynamic.Number(i+1)), e)
				}
				v = obj
			}
			return pushHost(L, dynamic.Sorted(v))
		},
		"vint": func(L *lua.LState) int {
			return pushHost(L, dynamic.VarInt32(L.CheckInt(1)))
		},
		"vlong": func(L *lua.LState) int {
			return pushHost(L, dynamic.VarInt64(L.CheckInt64(1)))
		},
		"bytes": func(L *lua.LState) int {
			ud := L.NewUserData()
			ud.Value = dynamic.ByteBuffer(L.CheckString(1))
			L.Push(ud)
			return 1
		},
	})
	L.SetGlobal(ModuleName, mod)
	return L
}

func pushHost(L *lua.LState, v any) int {
	ud := L.NewUserData()
	ud.Value = dynamic.Wrap(v)
	L.Push(ud)
	return 1
}

// Compile loads src and looks up the global function named entry.
func Compile(src, entry string, scope dynamic.Scope) (*Script, error) {
	if scope == nil {
		scope = dynamic.Global
	}
	L := NewState(scope)
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to load script: %w", err)
	}

	fn, ok := L.GetGlobal(entry).(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("script does not define function %q", entry)
	}
	return &Script{state: L, entry: fn, scope: scope}, nil
}

// Call runs the entry function with v and converts its first result.
// A nil result means the script dropped the value, reported as a nil Value.
func (s *Script) Call(ctx context.Context, v dynamic.Value) (dynamic.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.SetContext(ctx)
	defer s.state.RemoveContext()

	if err := s.state.CallByParam(lua.P{Fn: s.entry, NRet: 1, Protect: true}, FromDynamic(s.state, v)); err != nil {
		return nil, fmt.Errorf("script failed: %w", err)
	}
	ret := s.state.Get(-1)
	s.state.Pop(1)

	if ret == lua.LNil {
		return nil, nil
	}
	return ToDynamic(ret, s.scope)
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Close()
}

// Eval runs a chunk and converts the value it returns. A chunk that returns
// nothing evaluates to Null.
func Eval(src string, scope dynamic.Scope) (dynamic.Value, error) {
	if scope == nil {
		scope = dynamic.Global
	}
	L := NewState(scope)
	defer L.Close()

	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("failed to run script: %w", err)
	}
	if L.GetTop() == 0 {
		return dynamic.Null{}, nil
	}
	return ToDynamic(L.Get(-1), scope)
}
