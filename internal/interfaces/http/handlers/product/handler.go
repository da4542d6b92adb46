// Package product provides HTTP handlers for products and the devices they list.
package product

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devicehub/devicehub/internal/application/product/usecases"
	"github.com/devicehub/devicehub/internal/shared/logger"
	"github.com/devicehub/devicehub/internal/shared/utils"
)

// Handler handles HTTP requests for products.
type Handler struct {
	createUC  createProductUseCase
	getUC     getProductUseCase
	listUC    listProductsUseCase
	updateUC  updateProductUseCase
	deleteUC  deleteProductUseCase
	devicesUC listLinkedDevicesUseCase
	logger    logger.Interface
}

// NewHandler creates a new product Handler.
func NewHandler(
	createUC createProductUseCase,
	getUC getProductUseCase,
	listUC listProductsUseCase,
	updateUC updateProductUseCase,
	deleteUC deleteProductUseCase,
	devicesUC listLinkedDevicesUseCase,
	log logger.Interface,
) *Handler {
	return &Handler{
		createUC:  createUC,
		getUC:     getUC,
		listUC:    listUC,
		updateUC:  updateUC,
		deleteUC:  deleteUC,
		devicesUC: devicesUC,
		logger:    log,
	}
}

// CreateProductRequest represents a request to create a product.
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required,max=100" example:"Thermostats"`
	Code        string `json:"code" binding:"required,max=50" example:"THERMO"`
	DeviceType  string `json:"device_type" binding:"required,devicetype" example:"sensor"`
	Description string `json:"description,omitempty" example:"**Indoor** units"`
}

// UpdateProductRequest represents a partial product update.
type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=100"`
	Code        *string `json:"code,omitempty" binding:"omitempty,max=50"`
	Description *string `json:"description,omitempty"`
	DeviceType  *string `json:"device_type,omitempty" binding:"omitempty,devicetype"`
}

// CreateProduct handles POST /products
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create product", "error", err, "ip", c.ClientIP())
		utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), usecases.CreateProductCommand{
		Name:        req.Name,
		Code:        req.Code,
		DeviceType:  req.DeviceType,
		Description: req.Description,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Product created successfully")
}

// GetProduct handles GET /products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "product")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getUC.Execute(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListProducts handles GET /products
func (h *Handler) ListProducts(c *gin.Context) {
	pagination := utils.ParsePagination(c)

	result, err := h.listUC.Execute(c.Request.Context(), usecases.ListProductsQuery{
		DeviceType: c.Query("device_type"),
		Search:     c.Query("search"),
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Products, result.Total, result.Page, result.PageSize)
}

// UpdateProduct handles PATCH /products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "product")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update product", "product_id", id, "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
		return
	}

	result, err := h.updateUC.Execute(c.Request.Context(), usecases.UpdateProductCommand{
		ID:          id,
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		DeviceType:  req.DeviceType,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Product updated successfully", result)
}

// DeleteProduct handles DELETE /products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "product")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.deleteUC.Execute(c.Request.Context(), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// ListLinkedDevices handles GET /products/:id/devices
func (h *Handler) ListLinkedDevices(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "product")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	pagination := utils.ParsePagination(c)

	result, err := h.devicesUC.Execute(c.Request.Context(), id, pagination.Page, pagination.PageSize)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Devices, result.Total, result.Page, result.PageSize)
}
