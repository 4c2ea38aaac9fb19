package convert

import (
	"errors"
	"fmt"
)

// Direction names one of the four conversion paths.
type Direction string

const (
	ToWritable        Direction = "to_writable"
	ToOrderedWritable Direction = "to_ordered_writable"
	ToDynamic         Direction = "to_dynamic"
	OrderedToDynamic  Direction = "ordered_to_dynamic"
)

// Directions lists every conversion path.
func Directions() []Direction {
	return []Direction{ToWritable, ToOrderedWritable, ToDynamic, OrderedToDynamic}
}

// ErrNoConverter matches every *NoConverterError.
var ErrNoConverter = errors.New("no converter found")

// NoConverterError reports a value no registered converter accepts.
type NoConverterError struct {
	Direction Direction
	// TypeName is the runtime type of the rejected value: a dynamic type
	// name, a Go type or a Writable class name.
	TypeName string
}

func (e *NoConverterError) Error() string {
	switch e.Direction {
	case ToDynamic:
		return fmt.Sprintf("No Writable to dynamic-value converter found for class: %s", e.TypeName)
	case ToOrderedWritable:
		return fmt.Sprintf("No dynamic-value to WritableComparable converter found for class: %s", e.TypeName)
	case OrderedToDynamic:
		return fmt.Sprintf("No WritableComparable to dynamic-value converter found for class: %s", e.TypeName)
	default:
		return fmt.Sprintf("No dynamic-value to Writable converter found for class: %s", e.TypeName)
	}
}

func (e *NoConverterError) Is(target error) bool {
	return target == ErrNoConverter
}
