package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devicehub/devicehub/internal/interfaces/http/handlers/health"
)

// SystemRouteConfig holds dependencies for health and metrics routes.
type SystemRouteConfig struct {
	HealthHandler  *health.Handler
	MetricsHandler http.Handler
}

// SetupSystemRoutes configures /health and /metrics.
func SetupSystemRoutes(engine *gin.Engine, cfg *SystemRouteConfig) {
	engine.GET("/health", cfg.HealthHandler.Health)
	if cfg.MetricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}
}
