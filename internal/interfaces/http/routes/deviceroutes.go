package routes

import (
	"github.com/gin-gonic/gin"

	devicehandlers "github.com/devicehub/devicehub/internal/interfaces/http/handlers/device"
)

// DeviceRouteConfig holds dependencies for device routes.
type DeviceRouteConfig struct {
	DeviceHandler *devicehandlers.Handler
}

// SetupDeviceRoutes configures device CRUD and association routes.
func SetupDeviceRoutes(engine *gin.Engine, cfg *DeviceRouteConfig) {
	devices := engine.Group("/devices")
	{
		devices.POST("", cfg.DeviceHandler.CreateDevice)
		devices.GET("", cfg.DeviceHandler.ListDevices)
		devices.GET("/:id", cfg.DeviceHandler.GetDevice)
		devices.PATCH("/:id", cfg.DeviceHandler.UpdateDevice)
		devices.DELETE("/:id", cfg.DeviceHandler.DeleteDevice)

		devices.POST("/:id/associate", cfg.DeviceHandler.Associate)
		devices.POST("/:id/disassociate", cfg.DeviceHandler.Disassociate)
		devices.GET("/:id/verify", cfg.DeviceHandler.Verify)
	}
}
