package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/writable"
)

// Queue implements ports.RecordQueue in memory.
// Records are kept in their tagged wire form, so a popped record never shares
// memory with the pushed one. Safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	items [][]byte
}

// NewQueue creates an empty in-memory queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push encodes the record and appends it to the queue.
func (q *Queue) Push(ctx context.Context, rec writable.Record) error {
	data, err := writable.MarshalTagged(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, data)
	return nil
}

// Pop removes the oldest record. A record that fails to decode stays at the
// head of the queue.
func (q *Queue) Pop(ctx context.Context) (writable.Record, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, ports.ErrQueueEmpty
	}

	rec, err := writable.UnmarshalTagged(q.items[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	q.items[0] = nil
	q.items = q.items[1:]
	return rec, nil
}

// Requeue puts the record back at the head of the queue.
func (q *Queue) Requeue(ctx context.Context, rec writable.Record) error {
	data, err := writable.MarshalTagged(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([][]byte{data}, q.items...)
	return nil
}

// Len returns the number of queued records.
func (q *Queue) Len(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items), nil
}
