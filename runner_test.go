package weft_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/convert"
	"github.com/aretw0/weft/pkg/dynamic"
	"github.com/aretw0/weft/pkg/writable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_TransformsAndDrops(t *testing.T) {
	ctx := context.Background()
	eng := weft.New()
	source, sink := memory.NewQueue(), memory.NewQueue()

	for _, n := range []int32{1, 2, 3, 4} {
		require.NoError(t, source.Push(ctx, writable.Int32(n)))
	}

	// Drop odd numbers, scale even ones past the Int32 range.
	runner := weft.NewRunner(source, sink, func(_ context.Context, v dynamic.Value) (dynamic.Value, error) {
		n := v.(dynamic.Number)
		if int(n)%2 == 1 {
			return nil, nil
		}
		return n * 1e10, nil
	})

	res, err := runner.Run(ctx, eng)
	require.NoError(t, err)
	assert.Equal(t, weft.Result{Moved: 2, Dropped: 2}, res)

	first, err := sink.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, writable.Int64(2e10), first)
	second, err := sink.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, writable.Int64(4e10), second)
}

func TestRunner_StopsOnError(t *testing.T) {
	ctx := context.Background()
	source, sink := memory.NewQueue(), memory.NewQueue()
	require.NoError(t, source.Push(ctx, writable.Text("a")))
	require.NoError(t, source.Push(ctx, writable.Text("b")))

	boom := errors.New("boom")
	runner := weft.NewRunner(source, sink, func(_ context.Context, v dynamic.Value) (dynamic.Value, error) {
		if v == dynamic.String("b") {
			return nil, boom
		}
		return v, nil
	})

	res, err := runner.Run(ctx, weft.New())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, res.Moved)

	n, err := sink.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := source.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, writable.Text("b"), left, "failed record goes back to the source")
}

func TestRunner_UnconvertibleResultIsRequeued(t *testing.T) {
	ctx := context.Background()
	source, sink := memory.NewQueue(), memory.NewQueue()
	require.NoError(t, source.Push(ctx, writable.Int32(1)))
	require.NoError(t, source.Push(ctx, writable.Int32(2)))

	runner := weft.NewRunner(source, sink, func(context.Context, dynamic.Value) (dynamic.Value, error) {
		return dynamic.Wrap(os.Stdin), nil
	})
	res, err := runner.Run(ctx, weft.New())
	assert.ErrorIs(t, err, convert.ErrNoConverter)
	assert.Equal(t, weft.Result{}, res)

	n, err := source.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	head, err := source.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, writable.Int32(1), head, "source order is kept")

	n, err = sink.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRunner_DeadLetter(t *testing.T) {
	ctx := context.Background()
	source, sink, dead := memory.NewQueue(), memory.NewQueue(), memory.NewQueue()
	for _, s := range []string{"ok", "bad", "fine"} {
		require.NoError(t, source.Push(ctx, writable.Text(s)))
	}

	runner := weft.NewRunner(source, sink, func(_ context.Context, v dynamic.Value) (dynamic.Value, error) {
		if v == dynamic.String("bad") {
			return nil, errors.New("rejected")
		}
		return v, nil
	})
	runner.DeadLetter = dead

	res, err := runner.Run(ctx, weft.New())
	require.NoError(t, err)
	assert.Equal(t, weft.Result{Moved: 2, DeadLettered: 1}, res)

	rec, err := dead.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, writable.Text("bad"), rec)

	n, err := source.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := weft.NewRunner(memory.NewQueue(), memory.NewQueue(), nil)
	_, err := runner.Run(ctx, weft.New())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_RequiresQueues(t *testing.T) {
	_, err := weft.NewRunner(nil, memory.NewQueue(), nil).Run(context.Background(), weft.New())
	assert.Error(t, err)
}

func TestRunner_HoldsStageLock(t *testing.T) {
	ctx := context.Background()
	locker := memory.NewLocker()
	source, sink := memory.NewQueue(), memory.NewQueue()
	require.NoError(t, source.Push(ctx, writable.Int32(1)))

	runner := weft.NewRunner(source, sink, func(ctx context.Context, v dynamic.Value) (dynamic.Value, error) {
		// The stage lock is held while records flow.
		busy, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err := locker.Lock(busy, "orders", time.Minute)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		return v, nil
	})
	runner.Locker = locker
	runner.LockKey = "orders"

	res, err := runner.Run(ctx, weft.New())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Moved)

	unlock, err := locker.Lock(ctx, "orders", time.Minute)
	require.NoError(t, err, "lock is released after Run")
	require.NoError(t, unlock(ctx))
}

func TestRunner_LockNeedsKey(t *testing.T) {
	runner := weft.NewRunner(memory.NewQueue(), memory.NewQueue(), nil)
	runner.Locker = memory.NewLocker()
	_, err := runner.Run(context.Background(), weft.New())
	assert.ErrorContains(t, err, "lock key")
}
