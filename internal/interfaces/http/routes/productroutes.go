package routes

import (
	"github.com/gin-gonic/gin"

	producthandlers "github.com/devicehub/devicehub/internal/interfaces/http/handlers/product"
)

// ProductRouteConfig holds dependencies for product routes.
type ProductRouteConfig struct {
	ProductHandler *producthandlers.Handler
}

// SetupProductRoutes configures product routes.
func SetupProductRoutes(engine *gin.Engine, cfg *ProductRouteConfig) {
	products := engine.Group("/products")
	{
		products.POST("", cfg.ProductHandler.CreateProduct)
		products.GET("", cfg.ProductHandler.ListProducts)
		products.GET("/:id", cfg.ProductHandler.GetProduct)
		products.PATCH("/:id", cfg.ProductHandler.UpdateProduct)
		products.DELETE("/:id", cfg.ProductHandler.DeleteProduct)
		products.GET("/:id/devices", cfg.ProductHandler.ListLinkedDevices)
	}
}
