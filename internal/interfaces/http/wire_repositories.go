package http

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/collectors"

	assocUsecases "github.com/devicehub/devicehub/internal/application/association/usecases"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/infrastructure/cache"
	"github.com/devicehub/devicehub/internal/infrastructure/lock"
	"github.com/devicehub/devicehub/internal/infrastructure/metrics"
	"github.com/devicehub/devicehub/internal/infrastructure/repository"
	"github.com/devicehub/devicehub/internal/infrastructure/repository/memory"
	sharedConfig "github.com/devicehub/devicehub/internal/shared/config"
	"github.com/devicehub/devicehub/internal/shared/db"
)

// locker is satisfied by both the in-process and the Redis pair lock
type locker interface {
	Acquire(ctx context.Context, keys ...string) (func(), error)
}

// infrastructure holds the storage side of the container.
type infrastructure struct {
	devices  device.Repository
	products product.Repository
	txMgr    db.Transactor
	locker   locker
	metrics  *metrics.Metrics
	reports  assocUsecases.ReportCache
}

// ============================================================
// Section 1: Infrastructure - Redis, repositories, locks, report cache, metrics
// ============================================================

func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log
	infra := &infrastructure{}

	if cfg.Redis.Enabled && c.redis == nil {
		client, err := initRedis(cfg, log)
		if err != nil {
			return err
		}
		c.redis = client
		c.ownRedis = true
	}

	if cfg.Database.Driver == sharedConfig.DriverMemory {
		store := memory.NewStore()
		infra.devices = memory.NewDeviceRepository(store)
		infra.products = memory.NewProductRepository(store)
		infra.txMgr = store
		log.Warnw("using in-memory storage, data is lost on restart")
	} else {
		if c.db == nil {
			c.closeRedis()
			return fmt.Errorf("database driver %q requires a database connection", cfg.Database.Driver)
		}
		infra.devices = repository.NewDeviceRepository(c.db, log)
		infra.products = repository.NewProductRepository(c.db, log)
		infra.txMgr = db.NewTransactionManager(c.db)
	}

	if c.redis != nil {
		infra.locker = lock.NewRedisLocker(c.redis, cfg.Consistency.LockTTL, cfg.Consistency.LockWait, log)
		infra.reports = cache.NewRedisReportCache(c.redis, cfg.Consistency.ReportTTL, log)
	} else {
		infra.locker = lock.NewLocalLocker(cfg.Consistency.LockWait)
		infra.reports = cache.NewMemoryReportCache()
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	infra.metrics = metrics.New(c.registry)

	c.infra = infra
	return nil
}
