package weft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/weft/pkg/dynamic"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/writable"
)

// Transform rewrites one record, seen as a dynamic value, on its way between
// two queues. Returning a nil value drops the record.
type Transform func(ctx context.Context, v dynamic.Value) (dynamic.Value, error)

// Runner moves records from a source queue to a sink queue, converting each
// one to a dynamic value, applying the transform and converting the result
// back. This allows a scripted processing stage to sit between two queues.
type Runner struct {
	Source    ports.RecordQueue
	Sink      ports.RecordQueue
	Transform Transform
	Logger    *slog.Logger

	// Locker, when set, makes Run hold the LockKey lock while it drains the
	// source, so concurrent stages on one queue take turns.
	Locker  ports.StageLocker
	LockKey string
	LockTTL time.Duration

	// DeadLetter, when set, receives records that fail to convert, transform
	// or push, and Run carries on with the next one. Without it a failed
	// record is put back at the head of the source and Run stops.
	DeadLetter ports.RecordQueue
}

// DefaultLockTTL is used when a Runner with a Locker has no LockTTL.
const DefaultLockTTL = time.Minute

// NewRunner creates a Runner. A nil transform forwards records unchanged
// (after a round trip through the dynamic model).
func NewRunner(source, sink ports.RecordQueue, transform Transform) *Runner {
	return &Runner{
		Source:    source,
		Sink:      sink,
		Transform: transform,
	}
}

// Result summarizes one Run.
type Result struct {
	Moved        int
	Dropped      int
	DeadLettered int
}

// Run drains the source queue. It stops when the source is empty, the context
// is canceled or a record fails; records handled before the failure stay in
// the sink and the failed record is not lost (see DeadLetter).
func (r *Runner) Run(ctx context.Context, engine *Engine) (Result, error) {
	var res Result
	if r.Source == nil || r.Sink == nil {
		return res, fmt.Errorf("runner needs both a source and a sink queue")
	}
	logger := r.Logger
	if logger == nil {
		logger = engine.logger
	}

	if r.Locker != nil {
		if r.LockKey == "" {
			return res, fmt.Errorf("runner with a locker needs a lock key")
		}
		ttl := r.LockTTL
		if ttl <= 0 {
			ttl = DefaultLockTTL
		}
		unlock, err := r.Locker.Lock(ctx, r.LockKey, ttl)
		if err != nil {
			return res, fmt.Errorf("failed to lock %s: %w", r.LockKey, err)
		}
		logger.Debug("stage lock acquired", "key", r.LockKey, "ttl", ttl)
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to release stage lock", "key", r.LockKey, "err", err)
			}
		}()
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rec, err := r.Source.Pop(ctx)
		if errors.Is(err, ports.ErrQueueEmpty) {
			return res, nil
		}
		if err != nil {
			return res, fmt.Errorf("failed to pop record: %w", err)
		}

		index := res.Moved + res.Dropped + res.DeadLettered
		dropped, err := r.process(ctx, engine, rec, index)
		switch {
		case err == nil && dropped:
			logger.Debug("record dropped", "index", index)
			res.Dropped++
		case err == nil:
			res.Moved++
		default:
			// The record must survive the failure somewhere.
			keep := context.WithoutCancel(ctx)
			if r.DeadLetter != nil {
				if perr := r.DeadLetter.Push(keep, rec); perr != nil {
					return res, errors.Join(err, fmt.Errorf("failed to dead-letter record %d: %w", index, perr))
				}
				logger.Warn("record dead-lettered", "index", index, "err", err)
				res.DeadLettered++
				continue
			}
			if rerr := r.Source.Requeue(keep, rec); rerr != nil {
				return res, errors.Join(err, fmt.Errorf("failed to requeue record %d: %w", index, rerr))
			}
			return res, err
		}
	}
}

// process moves one record to the sink, or reports that the transform
// dropped it.
func (r *Runner) process(ctx context.Context, engine *Engine, rec writable.Record, index int) (bool, error) {
	v, err := engine.ToDynamic(rec)
	if err != nil {
		return false, fmt.Errorf("record %d: %w", index, err)
	}

	if r.Transform != nil {
		v, err = r.Transform(ctx, v)
		if err != nil {
			return false, fmt.Errorf("record %d: transform failed: %w", index, err)
		}
		if v == nil {
			return true, nil
		}
	}

	out, err := engine.ToWritable(v)
	if err != nil {
		return false, fmt.Errorf("record %d: %w", index, err)
	}
	if err := r.Sink.Push(ctx, out); err != nil {
		return false, fmt.Errorf("failed to push record %d: %w", index, err)
	}
	return false, nil
}
