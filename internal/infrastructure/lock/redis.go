package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/shared/constants"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// releaseScript deletes the key only while it still carries the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var errBusy = errors.New("lock is held")

// RedisLocker is a cross-process lock using SET NX PX with a random token per acquisition
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
	logger logger.Interface
}

// NewRedisLocker creates a Redis backed locker. Keys expire after ttl if never released.
func NewRedisLocker(client redis.UniversalClient, ttl, wait time.Duration, log logger.Interface) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
		logger: log,
	}
}

// Acquire takes every key in sorted order, polling with exponential backoff until the wait elapses
func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	acquired := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.acquireOne(ctx, l.redisKey(key), token, time.Until(deadline)); err != nil {
			l.release(acquired, token)
			return nil, err
		}
		acquired = append(acquired, key)
	}

	var once sync.Once
	return func() { once.Do(func() { l.release(acquired, token) }) }, nil
}

func (l *RedisLocker) acquireOne(ctx context.Context, key, token string, wait time.Duration) error {
	try := func() (bool, error) {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return false, backoff.Permanent(fmt.Errorf("failed to acquire lock %s: %w", key, err))
		}
		if !ok {
			return false, errBusy
		}
		return true, nil
	}

	var err error
	if wait <= 0 {
		// budget spent; backoff treats a zero max elapsed time as unlimited
		_, err = try()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Unwrap()
		}
	} else {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 10 * time.Millisecond
		b.MaxInterval = 200 * time.Millisecond
		_, err = backoff.Retry(ctx, try, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(wait))
	}

	if errors.Is(err, errBusy) {
		return association.ErrLockTimeout
	}
	return err
}

func (l *RedisLocker) release(keys []string, token string) {
	// release even when the caller's context is already done
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := len(keys) - 1; i >= 0; i-- {
		key := l.redisKey(keys[i])
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warnw("failed to release lock", "key", key, "error", err)
		}
	}
}

func (l *RedisLocker) redisKey(key string) string {
	return constants.RedisLockPrefix + key
}
