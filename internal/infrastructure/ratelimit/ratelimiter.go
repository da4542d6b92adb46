// Package ratelimit implements a Redis backed sliding window limiter.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/devicehub/devicehub/internal/shared/biztime"
	"github.com/devicehub/devicehub/internal/shared/constants"
)

type Config struct {
	RequestsPerMinute int
	RequestsPerHour   int
}

// Enabled reports whether any window has a limit
func (c Config) Enabled() bool {
	return c.RequestsPerMinute > 0 || c.RequestsPerHour > 0
}

type RedisRateLimiter struct {
	client redis.UniversalClient
	config Config
}

func NewRedisRateLimiter(client redis.UniversalClient, config Config) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, config: config}
}

// Allow records one request for key and reports whether every window still has room
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := biztime.NowUTC()

	windows := []struct {
		duration time.Duration
		limit    int
	}{
		{time.Minute, l.config.RequestsPerMinute},
		{time.Hour, l.config.RequestsPerHour},
	}

	for _, window := range windows {
		if window.limit <= 0 {
			continue
		}

		allowed, err := l.checkWindow(ctx, key, window.duration, window.limit, now)
		if err != nil {
			return false, err
		}
		if !allowed {
			return false, nil
		}
	}

	return true, nil
}

func (l *RedisRateLimiter) checkWindow(ctx context.Context, key string, window time.Duration, limit int, now time.Time) (bool, error) {
	redisKey := l.getKey(key, window)
	windowStart := now.Add(-window).UnixNano()
	nowNano := now.UnixNano()

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	zcard := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowNano), Member: strconv.FormatInt(nowNano, 10) + ":" + uuid.NewString()})
	pipe.Expire(ctx, redisKey, window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	return zcard.Val() < int64(limit), nil
}

// Reset clears every window for key
func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	pattern := fmt.Sprintf("%s%s:*", constants.RedisRateLimitPrefix, key)

	iter := l.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := l.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %w", err)
	}
	return nil
}

func (l *RedisRateLimiter) getKey(identifier string, window time.Duration) string {
	return fmt.Sprintf("%s%s:%s", constants.RedisRateLimitPrefix, identifier, window.String())
}
