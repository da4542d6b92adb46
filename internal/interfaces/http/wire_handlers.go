package http

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	assocUsecases "github.com/devicehub/devicehub/internal/application/association/usecases"
	"github.com/devicehub/devicehub/internal/infrastructure/auth"
	"github.com/devicehub/devicehub/internal/infrastructure/scheduler"
	"github.com/devicehub/devicehub/internal/interfaces/http/handlers/consistency"
	devicehandlers "github.com/devicehub/devicehub/internal/interfaces/http/handlers/device"
	"github.com/devicehub/devicehub/internal/interfaces/http/handlers/health"
	producthandlers "github.com/devicehub/devicehub/internal/interfaces/http/handlers/product"
	"github.com/devicehub/devicehub/internal/interfaces/http/middleware"
)

// reconcileTimeout bounds one scheduled reconciliation run
const reconcileTimeout = 5 * time.Minute

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	deviceHandler      *devicehandlers.Handler
	productHandler     *producthandlers.Handler
	consistencyHandler *consistency.Handler
	healthHandler      *health.Handler
}

// ============================================================
// Section 3: Handlers, middlewares and the reconciliation scheduler
// ============================================================

func (c *Container) initHandlers() error {
	cfg := c.cfg
	log := c.log
	ucs := c.ucs

	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, log)

	checks := map[string]health.Checker{}
	if c.db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if c.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		}
	}

	c.hdlrs = &allHandlers{
		deviceHandler: devicehandlers.NewHandler(
			ucs.createDevice,
			ucs.getDevice,
			ucs.listDevices,
			ucs.updateDevice,
			ucs.deleteDevice,
			ucs.associate,
			ucs.disassociate,
			ucs.verify,
			log,
		),
		productHandler: producthandlers.NewHandler(
			ucs.createProduct,
			ucs.getProduct,
			ucs.listProducts,
			ucs.updateProduct,
			ucs.deleteProduct,
			ucs.listLinkedDevices,
			log,
		),
		consistencyHandler: consistency.NewHandler(ucs.check, ucs.reconcile, log),
		healthHandler:      health.NewHandler(checks, log),
	}

	if !cfg.Consistency.ReconcileEnabled {
		log.Infow("background reconciliation disabled")
		return nil
	}

	manager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		return err
	}
	job := assocUsecases.NewReconcileJob(ucs.reconcile, cfg.Consistency.AutoRepair)
	if err := manager.RegisterReconcileJob(job, cfg.Consistency.ReconcileInterval, reconcileTimeout); err != nil {
		return err
	}
	c.schedulerManager = manager
	return nil
}

func (c *Container) metricsHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
