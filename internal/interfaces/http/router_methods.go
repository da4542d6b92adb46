package http

import (
	"github.com/gin-gonic/gin"

	"github.com/devicehub/devicehub/internal/infrastructure/ratelimit"
	"github.com/devicehub/devicehub/internal/interfaces/http/middleware"
	"github.com/devicehub/devicehub/internal/interfaces/http/routes"
	"github.com/devicehub/devicehub/internal/shared/utils"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	utils.RegisterBindingValidators()

	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.Logger(c.log))
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	c.engine.Use(middleware.SecurityHeaders())

	routes.SetupSystemRoutes(c.engine, &routes.SystemRouteConfig{
		HealthHandler:  c.hdlrs.healthHandler,
		MetricsHandler: c.metricsHandler(),
	})

	routes.SetupDeviceRoutes(c.engine, &routes.DeviceRouteConfig{
		DeviceHandler: c.hdlrs.deviceHandler,
	})

	routes.SetupProductRoutes(c.engine, &routes.ProductRouteConfig{
		ProductHandler: c.hdlrs.productHandler,
	})

	routes.SetupAdminRoutes(c.engine, &routes.AdminRouteConfig{
		ConsistencyHandler: c.hdlrs.consistencyHandler,
		AuthMiddleware:     c.authMiddleware,
		RateLimit:          c.adminRateLimit(),
	})
}

// adminRateLimit is nil without Redis or when both admin windows are zero
func (c *Container) adminRateLimit() gin.HandlerFunc {
	limits := ratelimit.Config{
		RequestsPerMinute: c.cfg.Server.AdminRatePerMinute,
		RequestsPerHour:   c.cfg.Server.AdminRatePerHour,
	}
	if c.redis == nil || !limits.Enabled() {
		return nil
	}
	return middleware.RateLimit(ratelimit.NewRedisRateLimiter(c.redis, limits), c.log)
}
