package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleReport() *association.Report {
	pid := uint(4)
	return &association.Report{
		Violations: []association.Violation{
			association.NewDeviceProductNotFound(1, "probe", 9),
			association.NewProductDeviceAssociationMismatch(3, "line", 2, "cam", &pid),
		},
		DeviceCount:  2,
		ProductCount: 1,
		CheckedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:     1500 * time.Millisecond,
	}
}

func TestRedisReportCache(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	c := NewRedisReportCache(client, time.Minute, logger.NewNopLogger())

	empty, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)

	want := sampleReport()
	require.NoError(t, c.Save(ctx, want))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Violations, got.Violations)
	assert.True(t, want.CheckedAt.Equal(got.CheckedAt))
	assert.Equal(t, want.Duration, got.Duration)
	assert.Equal(t, association.KindProductDeviceAssociationMismatch, got.Violations[1].Kind)

	mr.FastForward(2 * time.Minute)
	expired, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestRedisReportCache_CorruptPayload(t *testing.T) {
	mr, client := setupTestRedis(t)
	c := NewRedisReportCache(client, time.Minute, logger.NewNopLogger())
	require.NoError(t, mr.Set("devicehub:consistency:report", "{not json"))

	_, err := c.Load(context.Background())
	assert.Error(t, err)
}

func TestMemoryReportCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryReportCache()

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := sampleReport()
	require.NoError(t, c.Save(ctx, want))
	got, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, want, got)
}
