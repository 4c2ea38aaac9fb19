package dynamic

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Scope is the runtime context new containers are created in.
type Scope interface {
	NewArray(elems []Value) *Array
	NewObject() *Object
}

// Global is the scope used when a caller does not provide one.
var Global = NewScope("global")

type scope struct {
	name string
}

// NewScope returns a standard scope. The name is only used for display.
func NewScope(name string) Scope {
	return &scope{name: name}
}

func (s *scope) String() string { return s.name }

func (s *scope) NewArray(elems []Value) *Array {
	a := &Array{scope: s, elems: make([]Value, 0, len(elems))}
	a.Append(elems...)
	return a
}

func (s *scope) NewObject() *Object {
	return &Object{scope: s, props: orderedmap.New[string, Value]()}
}

// Array is a script array.
type Array struct {
	scope Scope
	elems []Value
}

// Scope returns the scope the array was created in.
func (a *Array) Scope() Scope { return a.scope }

// Len returns the number of elements.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.elems)
}

// At returns element i, or Undefined when i is out of range.
func (a *Array) At(i int) Value {
	if i < 0 || i >= a.Len() {
		return Undefined{}
	}
	return a.elems[i]
}

// Append adds values to the end of the array. Nil values are stored as Undefined.
func (a *Array) Append(values ...Value) {
	for _, v := range values {
		if v == nil {
			v = Undefined{}
		}
		a.elems = append(a.elems, v)
	}
}

// Values returns a copy of the elements.
func (a *Array) Values() []Value {
	if a == nil {
		return nil
	}
	return append([]Value(nil), a.elems...)
}

func (a *Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range a.Values() {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Object is a script object. Properties enumerate in insertion order;
// setting an existing property keeps its position.
type Object struct {
	scope Scope
	props *orderedmap.OrderedMap[string, Value]
}

// Scope returns the scope the object was created in.
func (o *Object) Scope() Scope { return o.scope }

// Set assigns a property. Nil values are stored as Undefined.
func (o *Object) Set(key string, v Value) {
	if v == nil {
		v = Undefined{}
	}
	if o.props == nil {
		o.props = orderedmap.New[string, Value]()
	}
	o.props.Set(key, v)
}

// Get returns a property value.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil || o.props == nil {
		return nil, false
	}
	return o.props.Get(key)
}

// Delete removes a property.
func (o *Object) Delete(key string) {
	if o.props != nil {
		o.props.Delete(key)
	}
}

// Len returns the number of properties.
func (o *Object) Len() int {
	if o == nil || o.props == nil {
		return 0
	}
	return o.props.Len()
}

// Keys returns the property names in enumeration order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Range(func(k string, _ Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Range calls fn for each property in enumeration order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil || o.props == nil {
		return
	}
	for pair := o.props.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

func (o *Object) MarshalJSON() ([]byte, error) {
	if o.Len() == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(o.props)
}
