package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunStageLockerContract(t, redis.NewLocker(client, "", redis.WithPollInterval(10*time.Millisecond)))
}

func TestRedisLocker_KeyAndTTL(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()
	locker := redis.NewLocker(client, "test:lock:")

	unlock, err := locker.Lock(ctx, "stage-1", 30*time.Second)
	require.NoError(t, err)

	assert.True(t, mr.Exists("test:lock:stage-1"))
	assert.Equal(t, 30*time.Second, mr.TTL("test:lock:stage-1"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:stage-1"))
}

func TestRedisLocker_UnlockKeepsForeignLock(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()
	locker := redis.NewLocker(client, "")

	unlock, err := locker.Lock(ctx, "stage-1", time.Minute)
	require.NoError(t, err)

	// Simulate expiry followed by another holder.
	require.NoError(t, mr.Set("weft:lock:stage-1", "someone-else"))
	require.NoError(t, unlock(ctx))

	got, err := mr.Get("weft:lock:stage-1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
