package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/shared/constants"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

type locker interface {
	Acquire(ctx context.Context, keys ...string) (func(), error)
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func lockers(t *testing.T, wait time.Duration) map[string]locker {
	_, client := setupTestRedis(t)
	return map[string]locker{
		"local": NewLocalLocker(wait),
		"redis": NewRedisLocker(client, time.Minute, wait, logger.NewNopLogger()),
	}
}

func TestLocker_TimesOutWhileHeld(t *testing.T) {
	for name, l := range lockers(t, 50*time.Millisecond) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			release, err := l.Acquire(ctx, "device:1", "product:2")
			require.NoError(t, err)

			_, err = l.Acquire(ctx, "product:2")
			assert.ErrorIs(t, err, association.ErrLockTimeout)

			// disjoint keys are independent
			other, err := l.Acquire(ctx, "device:3")
			require.NoError(t, err)
			other()

			release()
			release()

			again, err := l.Acquire(ctx, "product:2", "device:1")
			require.NoError(t, err)
			again()
		})
	}
}

func TestLocker_ZeroWaitFailsFast(t *testing.T) {
	for name, l := range lockers(t, 0) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			free, err := l.Acquire(ctx, "device:5")
			require.NoError(t, err, "a free key is taken without waiting")

			start := time.Now()
			_, err = l.Acquire(ctx, "device:5")
			assert.ErrorIs(t, err, association.ErrLockTimeout)
			assert.Less(t, time.Since(start), time.Second)
			assert.NoError(t, ctx.Err())
			free()
		})
	}
}

func TestLocker_MutualExclusion(t *testing.T) {
	for name, l := range lockers(t, 5*time.Second) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var inside, maxInside int32
			var wg sync.WaitGroup

			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					release, err := l.Acquire(ctx, "device:9", "product:9")
					if !assert.NoError(t, err) {
						return
					}
					n := atomic.AddInt32(&inside, 1)
					for {
						m := atomic.LoadInt32(&maxInside)
						if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
							break
						}
					}
					time.Sleep(2 * time.Millisecond)
					atomic.AddInt32(&inside, -1)
					release()
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), atomic.LoadInt32(&maxInside))
		})
	}
}

func TestLocalLocker_ContextCanceled(t *testing.T) {
	l := NewLocalLocker(time.Second)
	release, err := l.Acquire(context.Background(), "device:1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, "device:1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisLocker_ReleaseChecksToken(t *testing.T) {
	mr, client := setupTestRedis(t)
	l := NewRedisLocker(client, time.Minute, 20*time.Millisecond, logger.NewNopLogger())
	key := constants.RedisLockPrefix + "device:1"

	release, err := l.Acquire(context.Background(), "device:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))
	ttl := mr.TTL(key)
	assert.Greater(t, ttl, time.Duration(0))

	// another holder took over after expiry
	mr.FastForward(2 * time.Minute)
	require.NoError(t, mr.Set(key, "someone-else"))

	release()
	value, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}

func TestNormalizeKeys(t *testing.T) {
	assert.Equal(t,
		[]string{"device:1", "product:1", "product:2"},
		normalizeKeys([]string{"product:2", "device:1", "", "product:1", "device:1"}),
	)
}
