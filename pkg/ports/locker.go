package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken with StageLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// StageLocker coordinates processing stages running in separate processes.
// A stage holding the lock for a source queue is its only consumer, so the
// sink receives records in source order.
type StageLocker interface {
	// Lock blocks until the lock for key is held or ctx is done. The lock
	// expires after ttl even if the returned UnlockFunc is never called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
