// Package cache stores the latest consistency report in memory or in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/shared/constants"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// MemoryReportCache keeps the latest report in process
type MemoryReportCache struct {
	mu     sync.RWMutex
	report *association.Report
}

func NewMemoryReportCache() *MemoryReportCache {
	return &MemoryReportCache{}
}

func (c *MemoryReportCache) Save(_ context.Context, report *association.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = report
	return nil
}

// Load returns nil, nil before the first Save
func (c *MemoryReportCache) Load(context.Context) (*association.Report, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.report, nil
}

// RedisReportCache shares the latest report between instances.
// The report is stored as JSON under a single key and expires after ttl.
type RedisReportCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger logger.Interface
}

func NewRedisReportCache(client redis.UniversalClient, ttl time.Duration, log logger.Interface) *RedisReportCache {
	return &RedisReportCache{client: client, ttl: ttl, logger: log}
}

func (c *RedisReportCache) Save(ctx context.Context, report *association.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal consistency report: %w", err)
	}
	if err := c.client.Set(ctx, constants.RedisReportKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store consistency report: %w", err)
	}
	c.logger.Debugw("consistency report stored", "key", constants.RedisReportKey, "violations", len(report.Violations))
	return nil
}

// Load returns nil, nil when no report is stored or it expired
func (c *RedisReportCache) Load(ctx context.Context) (*association.Report, error) {
	data, err := c.client.Get(ctx, constants.RedisReportKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load consistency report: %w", err)
	}

	var report association.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal consistency report: %w", err)
	}
	return &report, nil
}
