package weft

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/weft/pkg/convert"
	"github.com/aretw0/weft/pkg/dynamic"
	"github.com/aretw0/weft/pkg/observability"
	"github.com/aretw0/weft/pkg/writable"
)

// Engine is the high-level entry point for the weft library.
// It wraps a convert.Dispatcher and the Writable wire codec behind a
// simplified API.
type Engine struct {
	dispatcher *convert.Dispatcher
	registry   *convert.Registry
	observer   convert.Observer
	scope      dynamic.Scope
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
// Failed conversions are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry replaces the built-in converter registry.
func WithRegistry(reg *convert.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithObserver registers a conversion observer, such as observability.Metrics.
func WithObserver(o convert.Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithScope sets the scope dynamic values are created in (default: dynamic.Global).
func WithScope(scope dynamic.Scope) Option {
	return func(e *Engine) {
		e.scope = scope
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.scope == nil {
		eng.scope = dynamic.Global
	}
	if eng.registry == nil {
		eng.registry = convert.DefaultRegistry()
	}

	observer := observability.NewAggregator(observability.NewLogger(eng.logger), eng.observer)
	eng.dispatcher = convert.NewDispatcher(eng.registry, convert.WithObserver(observer))
	return eng
}

// Scope returns the scope new dynamic values are created in.
func (e *Engine) Scope() dynamic.Scope { return e.scope }

// Dispatcher returns the underlying dispatcher.
func (e *Engine) Dispatcher() *convert.Dispatcher { return e.dispatcher }

// ToWritable converts a dynamic or native value to a Writable record.
func (e *Engine) ToWritable(v any) (writable.Record, error) {
	return e.dispatcher.ToWritable(v, e.scope)
}

// ToOrderedWritable converts a value to an order-capable record.
func (e *Engine) ToOrderedWritable(v any) (writable.Ordered, error) {
	return e.dispatcher.ToOrderedWritable(v, e.scope)
}

// ToDynamic converts a Writable record to a dynamic value.
func (e *Engine) ToDynamic(r writable.Record) (dynamic.Value, error) {
	return e.dispatcher.ToDynamic(r, e.scope)
}

// OrderedToDynamic converts an order-capable record to a dynamic value.
func (e *Engine) OrderedToDynamic(r writable.Ordered) (dynamic.Value, error) {
	return e.dispatcher.OrderedToDynamic(r, e.scope)
}

// Encode converts v and returns the wire bytes of the record together with the
// type needed to decode them.
func (e *Engine) Encode(v any) ([]byte, writable.Type, error) {
	rec, err := e.ToWritable(v)
	if err != nil {
		return nil, writable.Type{}, err
	}
	data, err := writable.Marshal(rec)
	if err != nil {
		return nil, writable.Type{}, err
	}
	return data, writable.TypeFor(rec), nil
}

// Decode reads a record of type t from data and converts it to a dynamic value.
func (e *Engine) Decode(data []byte, t writable.Type) (dynamic.Value, error) {
	rec, err := writable.Unmarshal(data, t)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", t, err)
	}
	return e.ToDynamic(rec)
}

// EncodeTagged converts v and writes it in the self-describing tagged form.
func (e *Engine) EncodeTagged(w io.Writer, v any) error {
	rec, err := e.ToWritable(v)
	if err != nil {
		return err
	}
	return writable.WriteTagged(w, rec)
}

// DecodeTagged reads one tagged record from data and converts it.
func (e *Engine) DecodeTagged(data []byte) (dynamic.Value, error) {
	rec, err := writable.ReadTagged(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode tagged record: %w", err)
	}
	return e.ToDynamic(rec)
}
