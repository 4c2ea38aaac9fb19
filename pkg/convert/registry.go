package convert

import (
	"github.com/aretw0/weft/pkg/dynamic"
	"github.com/aretw0/weft/pkg/writable"
)

// WritableConverter converts dynamic or native values to Writable records.
type WritableConverter interface {
	CanConvert(v any) bool
	Convert(d *Dispatcher, v any, scope dynamic.Scope) (writable.Record, error)
}

// OrderedConverter converts dynamic or native values to order-capable records.
type OrderedConverter interface {
	CanConvert(v any) bool
	Convert(d *Dispatcher, v any, scope dynamic.Scope) (writable.Ordered, error)
}

// DynamicConverter converts Writable records to dynamic values.
type DynamicConverter interface {
	CanConvert(r writable.Record) bool
	Convert(d *Dispatcher, r writable.Record, scope dynamic.Scope) (dynamic.Value, error)
}

// Lists are the converter lists of a Registry, in lookup order.
type Lists struct {
	Writable        []WritableConverter
	OrderedWritable []OrderedConverter
	Dynamic         []DynamicConverter
	OrderedDynamic  []DynamicConverter
}

func (l Lists) clone() Lists {
	return Lists{
		Writable:        append([]WritableConverter(nil), l.Writable...),
		OrderedWritable: append([]OrderedConverter(nil), l.OrderedWritable...),
		Dynamic:         append([]DynamicConverter(nil), l.Dynamic...),
		OrderedDynamic:  append([]DynamicConverter(nil), l.OrderedDynamic...),
	}
}

// Registry is an immutable set of converter lists. The first converter of a
// list that accepts a value handles it.
type Registry struct {
	lists Lists
}

// NewRegistry builds a registry from copies of the given lists.
func NewRegistry(lists Lists) *Registry {
	return &Registry{lists: lists.clone()}
}

// DefaultRegistry returns the built-in converters.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

var defaultRegistry = NewRegistry(Lists{
	Writable:        defaultWritable(),
	OrderedWritable: defaultOrderedWritable(),
	Dynamic:         defaultDynamic(),
	OrderedDynamic:  defaultOrderedDynamic(),
})

// Lists returns copies of the registry lists, suitable for building an
// extended registry.
func (r *Registry) Lists() Lists {
	return r.lists.clone()
}

func (r *Registry) FindWritable(v any) (WritableConverter, bool) {
	for _, c := range r.lists.Writable {
		if c.CanConvert(v) {
			return c, true
		}
	}
	return nil, false
}

func (r *Registry) FindOrderedWritable(v any) (OrderedConverter, bool) {
	for _, c := range r.lists.OrderedWritable {
		if c.CanConvert(v) {
			return c, true
		}
	}
	return nil, false
}

func (r *Registry) FindDynamic(rec writable.Record) (DynamicConverter, bool) {
	for _, c := range r.lists.Dynamic {
		if c.CanConvert(rec) {
			return c, true
		}
	}
	return nil, false
}

func (r *Registry) FindOrderedDynamic(rec writable.Ordered) (DynamicConverter, bool) {
	for _, c := range r.lists.OrderedDynamic {
		if c.CanConvert(rec) {
			return c, true
		}
	}
	return nil, false
}

// Describe returns the names of the converters of each list, keyed by
// direction. Converters without a name are listed by Go type.
func (r *Registry) Describe() map[Direction][]string {
	out := make(map[Direction][]string, 4)
	for _, c := range r.lists.Writable {
		out[ToWritable] = append(out[ToWritable], converterName(c))
	}
	for _, c := range r.lists.OrderedWritable {
		out[ToOrderedWritable] = append(out[ToOrderedWritable], converterName(c))
	}
	for _, c := range r.lists.Dynamic {
		out[ToDynamic] = append(out[ToDynamic], converterName(c))
	}
	for _, c := range r.lists.OrderedDynamic {
		out[OrderedToDynamic] = append(out[OrderedToDynamic], converterName(c))
	}
	return out
}

// WritableFunc adapts a pair of functions to WritableConverter.
type WritableFunc struct {
	Name  string
	Match func(v any) bool
	Do    func(d *Dispatcher, v any, scope dynamic.Scope) (writable.Record, error)
}

func (f WritableFunc) CanConvert(v any) bool { return f.Match(v) }

func (f WritableFunc) Convert(d *Dispatcher, v any, scope dynamic.Scope) (writable.Record, error) {
	return f.Do(d, v, scope)
}

func (f WritableFunc) String() string { return f.Name }

// OrderedFunc adapts a pair of functions to OrderedConverter.
type OrderedFunc struct {
	Name  string
	Match func(v any) bool
	Do    func(d *Dispatcher, v any, scope dynamic.Scope) (writable.Ordered, error)
}

func (f OrderedFunc) CanConvert(v any) bool { return f.Match(v) }

func (f OrderedFunc) Convert(d *Dispatcher, v any, scope dynamic.Scope) (writable.Ordered, error) {
	return f.Do(d, v, scope)
}

func (f OrderedFunc) String() string { return f.Name }

// DynamicFunc adapts a pair of functions to DynamicConverter.
type DynamicFunc struct {
	Name  string
	Match func(r writable.Record) bool
	Do    func(d *Dispatcher, r writable.Record, scope dynamic.Scope) (dynamic.Value, error)
}

func (f DynamicFunc) CanConvert(r writable.Record) bool { return f.Match(r) }

func (f DynamicFunc) Convert(d *Dispatcher, r writable.Record, scope dynamic.Scope) (dynamic.Value, error) {
	return f.Do(d, r, scope)
}

func (f DynamicFunc) String() string { return f.Name }

type namer interface{ String() string }

func converterName(c any) string {
	if n, ok := c.(namer); ok && n.String() != "" {
		return n.String()
	}
	return dynamic.TypeName(c)
}
