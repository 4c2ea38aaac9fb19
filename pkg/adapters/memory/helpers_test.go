package memory_test

import (
	"io"

	"github.com/aretw0/weft/pkg/writable"
)

// customRecord is neither built-in nor opaque.
type customRecord struct{}

func (customRecord) Kind() writable.Kind  { return writable.KindText }
func (customRecord) Write(io.Writer) error { return nil }
