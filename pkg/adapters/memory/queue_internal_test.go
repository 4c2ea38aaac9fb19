package memory

import (
	"context"
	"testing"

	"github.com/aretw0/weft/pkg/writable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_UndecodableRecordStays(t *testing.T) {
	ctx := context.Background()
	q := NewQueue()
	q.items = append(q.items, []byte{0x00, 0x03, 'B', 'a', 'd'})

	_, err := q.Pop(ctx)
	assert.ErrorContains(t, err, "failed to decode record")

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "the record is not lost")

	require.NoError(t, q.Requeue(ctx, writable.Text("first")))
	rec, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, writable.Text("first"), rec)
}
