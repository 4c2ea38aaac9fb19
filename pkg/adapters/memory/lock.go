package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/weft/pkg/ports"
)

// Locker implements ports.StageLocker within one process. Locks expire after
// their ttl like the Redis ones do.
type Locker struct {
	mu   sync.Mutex
	held map[string]*lease
}

type lease struct {
	until time.Time
	freed chan struct{}
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{
		held: make(map[string]*lease),
	}
}

// Lock waits until key is free or its holder's lease has expired.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	for {
		l.mu.Lock()
		cur, ok := l.held[key]
		now := time.Now()
		if !ok || (!cur.until.IsZero() && now.After(cur.until)) {
			mine := &lease{freed: make(chan struct{})}
			if ttl > 0 {
				mine.until = now.Add(ttl)
			}
			l.held[key] = mine
			l.mu.Unlock()
			return l.unlock(key, mine), nil
		}
		l.mu.Unlock()

		var timer *time.Timer
		var expired <-chan time.Time
		if !cur.until.IsZero() {
			timer = time.NewTimer(cur.until.Sub(now))
			expired = timer.C
		}

		select {
		case <-ctx.Done():
			err := ctx.Err()
			if timer != nil {
				timer.Stop()
			}
			return nil, err
		case <-cur.freed:
		case <-expired:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func (l *Locker) unlock(key string, mine *lease) ports.UnlockFunc {
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.held[key] == mine {
				delete(l.held, key)
			}
			close(mine.freed)
		})
		return nil
	}
}
