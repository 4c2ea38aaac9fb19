package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/writable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRecordQueueContract runs a suite of tests to verify that a RecordQueue
// implementation adheres to the defined interface contract.
// The queue must be empty when the suite starts.
func RunRecordQueueContract(t *testing.T, queue RecordQueue) {
	ctx := context.Background()

	t.Run("Pop Empty", func(t *testing.T) {
		_, err := queue.Pop(ctx)
		assert.ErrorIs(t, err, ErrQueueEmpty)

		n, err := queue.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("FIFO Order", func(t *testing.T) {
		require.NoError(t, queue.Push(ctx, writable.Text("first")))
		require.NoError(t, queue.Push(ctx, writable.Int64(2)))
		require.NoError(t, queue.Push(ctx, writable.Null{}))

		n, err := queue.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		for _, want := range []writable.Record{writable.Text("first"), writable.Int64(2), writable.Null{}} {
			got, err := queue.Pop(ctx)
			require.NoError(t, err)
			assert.True(t, writable.Equal(want, got), "want %v, got %v", want, got)
		}

		_, err = queue.Pop(ctx)
		assert.ErrorIs(t, err, ErrQueueEmpty)
	})

	t.Run("Containers Survive", func(t *testing.T) {
		m := writable.NewMap()
		m.Put(writable.Text("xs"), writable.Bytes{1, 2})
		sm := writable.NewSortedMap()
		sm.Put(writable.Int32(2), writable.Bool(true))
		sm.Put(writable.Int32(1), m)
		arr := writable.NewArray(writable.NewArray(writable.Float32(1.5)))

		for _, rec := range []writable.Record{sm, arr} {
			require.NoError(t, queue.Push(ctx, rec))
			got, err := queue.Pop(ctx)
			require.NoError(t, err)
			assert.True(t, writable.Equal(rec, got), "record %s changed in transit", writable.ClassName(rec))
		}
	})

	t.Run("Opaque Records", func(t *testing.T) {
		op := writable.Opaque{Class: "com.example.Point", Payload: []byte{0, 1, 2}}
		require.NoError(t, queue.Push(ctx, op))

		got, err := queue.Pop(ctx)
		require.NoError(t, err)
		assert.Equal(t, "com.example.Point", writable.ClassName(got))
		assert.True(t, writable.Equal(op, got))
	})

	t.Run("Requeue Returns To Head", func(t *testing.T) {
		require.NoError(t, queue.Push(ctx, writable.Int32(1)))
		require.NoError(t, queue.Push(ctx, writable.Int32(2)))

		first, err := queue.Pop(ctx)
		require.NoError(t, err)
		require.NoError(t, queue.Requeue(ctx, first))

		for _, want := range []writable.Record{writable.Int32(1), writable.Int32(2)} {
			got, err := queue.Pop(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("Isolation", func(t *testing.T) {
		buf := writable.Bytes{7, 7}
		require.NoError(t, queue.Push(ctx, buf))
		buf[0] = 0

		got, err := queue.Pop(ctx)
		require.NoError(t, err)
		assert.Equal(t, writable.Bytes{7, 7}, got, "queued records must not alias caller memory")
	})
}

// RunStageLockerContract verifies that a StageLocker gives out one lock per
// key at a time.
func RunStageLockerContract(t *testing.T, locker StageLocker) {
	ctx := context.Background()

	t.Run("Exclusive", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "stage-a", time.Minute)
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, "stage-a", time.Minute)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		other, err := locker.Lock(ctx, "stage-b", time.Minute)
		require.NoError(t, err)
		require.NoError(t, other(ctx))

		require.NoError(t, unlock(ctx))
	})

	t.Run("Released", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "stage-c", time.Minute)
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			next, err := locker.Lock(waitCtx, "stage-c", time.Minute)
			if err == nil {
				err = next(ctx)
			}
			done <- err
		}()

		time.Sleep(50 * time.Millisecond)
		require.NoError(t, unlock(ctx))
		assert.NoError(t, <-done)
	})
}
