package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/devicehub/devicehub/internal/interfaces/http/handlers/consistency"
	"github.com/devicehub/devicehub/internal/interfaces/http/middleware"
)

// AdminRouteConfig holds dependencies for admin routes.
type AdminRouteConfig struct {
	ConsistencyHandler *consistency.Handler
	AuthMiddleware     *middleware.AuthMiddleware
	// RateLimit is optional
	RateLimit gin.HandlerFunc
}

// SetupAdminRoutes configures the admin-only consistency routes.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	admin := engine.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())
	if cfg.RateLimit != nil {
		admin.Use(cfg.RateLimit)
	}
	{
		c := admin.Group("/consistency")
		c.POST("/check", cfg.ConsistencyHandler.Check)
		c.POST("/repair", cfg.ConsistencyHandler.Repair)
		c.GET("/report", cfg.ConsistencyHandler.Report)
	}
}
