package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/writable"
	backend "github.com/redis/go-redis/v9"
)

// Queue implements ports.RecordQueue on a Redis list.
// Records are stored in their tagged wire form; Push appends with RPUSH and
// Pop takes from the head with LPOP.
type Queue struct {
	client *backend.Client
	name   string
	prefix string
	ttl    time.Duration
	block  time.Duration
}

type Option func(*Queue)

// WithTTL refreshes the expiration of the list on every push.
func WithTTL(ttl time.Duration) Option {
	return func(q *Queue) {
		q.ttl = ttl
	}
}

// WithPrefix sets the key prefix for queues.
func WithPrefix(prefix string) Option {
	return func(q *Queue) {
		q.prefix = prefix
	}
}

// WithBlock makes Pop wait up to d for a record (BLPOP) instead of
// returning ports.ErrQueueEmpty right away.
func WithBlock(d time.Duration) Option {
	return func(q *Queue) {
		q.block = d
	}
}

// Dial creates a client for the given server.
func Dial(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// New creates a Redis queue with its own client.
func New(address, password string, db int, name string, opts ...Option) *Queue {
	return NewFromClient(Dial(address, password, db), name, opts...)
}

// NewFromClient creates a Redis queue from an existing client.
func NewFromClient(client *backend.Client, name string, opts ...Option) *Queue {
	q := &Queue{
		client: client,
		name:   name,
		prefix: "weft:queue:",
	}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Key returns the Redis key of the list.
func (q *Queue) Key() string {
	return q.prefix + q.name
}

// Push appends the record to the list.
func (q *Queue) Push(ctx context.Context, rec writable.Record) error {
	data, err := writable.MarshalTagged(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	pipe := q.client.Pipeline()
	pipe.RPush(ctx, q.Key(), data)
	if q.ttl > 0 {
		pipe.Expire(ctx, q.Key(), q.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push to redis: %w", err)
	}
	return nil
}

// Pop removes the record at the head of the list.
func (q *Queue) Pop(ctx context.Context) (writable.Record, error) {
	var (
		data []byte
		err  error
	)
	if q.block > 0 {
		var res []string
		res, err = q.client.BLPop(ctx, q.block, q.Key()).Result()
		if err == nil {
			// BLPOP replies with the key and the element.
			data = []byte(res[1])
		}
	} else {
		data, err = q.client.LPop(ctx, q.Key()).Bytes()
	}

	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ports.ErrQueueEmpty
		}
		return nil, fmt.Errorf("failed to pop from redis: %w", err)
	}

	rec, err := writable.UnmarshalTagged(data)
	if err != nil {
		// Leave the undecodable element where it was.
		if perr := q.client.LPush(context.WithoutCancel(ctx), q.Key(), data).Err(); perr != nil {
			return nil, fmt.Errorf("failed to decode record: %w (and restore it: %v)", err, perr)
		}
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec, nil
}

// Requeue puts the record back at the head of the list (LPUSH).
func (q *Queue) Requeue(ctx context.Context, rec writable.Record) error {
	data, err := writable.MarshalTagged(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := q.client.LPush(ctx, q.Key(), data).Err(); err != nil {
		return fmt.Errorf("failed to requeue to redis: %w", err)
	}
	return nil
}

// Len returns the length of the list.
func (q *Queue) Len(ctx context.Context) (int, error) {
	n, err := q.client.LLen(ctx, q.Key()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read queue length: %w", err)
	}
	return int(n), nil
}

// Close closes the redis client.
func (q *Queue) Close() error {
	return q.client.Close()
}
