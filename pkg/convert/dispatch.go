package convert

import (
	"time"

	"github.com/aretw0/weft/pkg/dynamic"
	"github.com/aretw0/weft/pkg/writable"
)

// Event describes one top-level conversion.
type Event struct {
	Direction Direction
	// TypeName is the runtime type of the source value.
	TypeName string
	Duration time.Duration
	Err      error
}

// Observer is notified after every top-level conversion. Conversions of
// nested elements are not reported.
type Observer interface {
	ObserveConversion(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) ObserveConversion(e Event) { f(e) }

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithObserver sets the conversion observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// Dispatcher selects converters from a Registry.
type Dispatcher struct {
	registry *Registry
	observer Observer
	// nested shares the registry but has no observer. Converters receive it,
	// so recursion into container elements is never observed.
	nested *Dispatcher
}

// NewDispatcher creates a dispatcher over reg, or over DefaultRegistry when
// reg is nil.
func NewDispatcher(reg *Registry, opts ...Option) *Dispatcher {
	if reg == nil {
		reg = DefaultRegistry()
	}
	d := &Dispatcher{registry: reg}
	for _, opt := range opts {
		opt(d)
	}

	if d.observer == nil {
		d.nested = d
	} else {
		d.nested = &Dispatcher{registry: reg}
		d.nested.nested = d.nested
	}
	return d
}

// Registry returns the registry the dispatcher looks converters up in.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// ToWritable converts a dynamic or native value to a Writable record.
// Host values are unwrapped first. A nil scope means dynamic.Global.
func (d *Dispatcher) ToWritable(v any, scope dynamic.Scope) (writable.Record, error) {
	start := time.Now()
	v = unwrap(v)
	scope = orGlobal(scope)

	var (
		rec writable.Record
		err error
	)
	if conv, ok := d.registry.FindWritable(v); ok {
		rec, err = conv.Convert(d.nested, v, scope)
	} else {
		err = &NoConverterError{Direction: ToWritable, TypeName: dynamic.TypeName(v)}
	}

	d.observe(ToWritable, dynamic.TypeName(v), start, err)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ToOrderedWritable converts a dynamic or native value to an order-capable
// record, suitable as a sorted map key.
func (d *Dispatcher) ToOrderedWritable(v any, scope dynamic.Scope) (writable.Ordered, error) {
	start := time.Now()
	v = unwrap(v)
	scope = orGlobal(scope)

	var (
		rec writable.Ordered
		err error
	)
	if conv, ok := d.registry.FindOrderedWritable(v); ok {
		rec, err = conv.Convert(d.nested, v, scope)
	} else {
		err = &NoConverterError{Direction: ToOrderedWritable, TypeName: dynamic.TypeName(v)}
	}

	d.observe(ToOrderedWritable, dynamic.TypeName(v), start, err)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ToDynamic converts a Writable record to a dynamic value built by scope.
// A nil record converts to Null. Opaque records no converter accepts come
// back unchanged, wrapped in a *dynamic.Host.
func (d *Dispatcher) ToDynamic(r writable.Record, scope dynamic.Scope) (dynamic.Value, error) {
	start := time.Now()
	scope = orGlobal(scope)
	if r == nil {
		r = writable.Null{}
	}

	var (
		v   dynamic.Value
		err error
	)
	if conv, ok := d.registry.FindDynamic(r); ok {
		v, err = conv.Convert(d.nested, r, scope)
	} else if r.Kind() == writable.KindOpaque {
		v = dynamic.Wrap(r)
	} else {
		err = &NoConverterError{Direction: ToDynamic, TypeName: writable.ClassName(r)}
	}

	d.observe(ToDynamic, writable.ClassName(r), start, err)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// OrderedToDynamic converts an order-capable record to a dynamic value.
func (d *Dispatcher) OrderedToDynamic(r writable.Ordered, scope dynamic.Scope) (dynamic.Value, error) {
	start := time.Now()
	scope = orGlobal(scope)
	if r == nil {
		r = writable.Null{}
	}

	var (
		v   dynamic.Value
		err error
	)
	if conv, ok := d.registry.FindOrderedDynamic(r); ok {
		v, err = conv.Convert(d.nested, r, scope)
	} else {
		err = &NoConverterError{Direction: OrderedToDynamic, TypeName: writable.ClassName(r)}
	}

	d.observe(OrderedToDynamic, writable.ClassName(r), start, err)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (d *Dispatcher) observe(dir Direction, typeName string, start time.Time, err error) {
	if d.observer == nil {
		return
	}
	d.observer.ObserveConversion(Event{
		Direction: dir,
		TypeName:  typeName,
		Duration:  time.Since(start),
		Err:       err,
	})
}

func unwrap(v any) any {
	for {
		h, ok := v.(*dynamic.Host)
		if !ok {
			return v
		}
		v = h.Unwrap()
	}
}

func orGlobal(scope dynamic.Scope) dynamic.Scope {
	if scope == nil {
		return dynamic.Global
	}
	return scope
}
