package ports

import (
	"context"
	"errors"

	"github.com/aretw0/weft/pkg/writable"
)

// ErrQueueEmpty is returned by Pop when no record is waiting.
var ErrQueueEmpty = errors.New("queue is empty")

// RecordQueue defines a FIFO of Writable records.
// Records travel in their tagged wire form, so any built-in or opaque record
// comes out as it went in.
type RecordQueue interface {
	// Push appends a record to the tail of the queue.
	Push(ctx context.Context, rec writable.Record) error

	// Pop removes and returns the record at the head of the queue.
	// Returns ErrQueueEmpty if the queue has no records.
	Pop(ctx context.Context) (writable.Record, error)

	// Requeue puts a popped record back at the head of the queue, so the
	// next Pop returns it again.
	Requeue(ctx context.Context, rec writable.Record) error

	// Len returns the number of waiting records.
	Len(ctx context.Context) (int, error)
}
