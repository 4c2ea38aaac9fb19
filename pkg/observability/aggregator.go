package observability

import (
	"log/slog"

	"github.com/aretw0/weft/pkg/convert"
)

// Aggregator combines multiple observers into one.
type Aggregator struct {
	observers []convert.Observer
}

// NewAggregator creates an aggregator over the given observers. Nil entries
// are skipped.
func NewAggregator(observers ...convert.Observer) *Aggregator {
	a := &Aggregator{}
	for _, o := range observers {
		a.Add(o)
	}
	return a
}

// Add registers another observer. It must not be called concurrently with
// ObserveConversion.
func (a *Aggregator) Add(o convert.Observer) {
	if o != nil {
		a.observers = append(a.observers, o)
	}
}

// ObserveConversion forwards the event to every observer in order.
func (a *Aggregator) ObserveConversion(e convert.Event) {
	for _, o := range a.observers {
		o.ObserveConversion(e)
	}
}

// Logger reports failed conversions at debug level.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a logging observer.
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) ObserveConversion(e convert.Event) {
	if e.Err == nil || l.logger == nil {
		return
	}
	l.logger.Debug("conversion failed",
		"direction", string(e.Direction),
		"type", e.TypeName,
		"err", e.Err,
	)
}
