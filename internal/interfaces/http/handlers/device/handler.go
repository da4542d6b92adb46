// Package device provides HTTP handlers for devices and their product association.
package device

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	assocdto "github.com/devicehub/devicehub/internal/application/association/dto"
	"github.com/devicehub/devicehub/internal/application/device/usecases"
	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
	"github.com/devicehub/devicehub/internal/shared/utils"
)

// Handler handles HTTP requests for devices.
type Handler struct {
	createUC       createDeviceUseCase
	getUC          getDeviceUseCase
	listUC         listDevicesUseCase
	updateUC       updateDeviceUseCase
	deleteUC       deleteDeviceUseCase
	associateUC    associateUseCase
	disassociateUC disassociateUseCase
	verifyUC       verifyUseCase
	logger         logger.Interface
}

// NewHandler creates a new device Handler.
func NewHandler(
	createUC createDeviceUseCase,
	getUC getDeviceUseCase,
	listUC listDevicesUseCase,
	updateUC updateDeviceUseCase,
	deleteUC deleteDeviceUseCase,
	associateUC associateUseCase,
	disassociateUC disassociateUseCase,
	verifyUC verifyUseCase,
	log logger.Interface,
) *Handler {
	return &Handler{
		createUC:       createUC,
		getUC:          getUC,
		listUC:         listUC,
		updateUC:       updateUC,
		deleteUC:       deleteUC,
		associateUC:    associateUC,
		disassociateUC: disassociateUC,
		verifyUC:       verifyUC,
		logger:         log,
	}
}

// CreateDeviceRequest represents a request to register a device.
type CreateDeviceRequest struct {
	Name         string `json:"name" binding:"required,max=100" example:"Boiler probe"`
	SerialNumber string `json:"serial_number" binding:"required,max=64" example:"SN-0001"`
	DeviceType   string `json:"device_type" binding:"required,devicetype" example:"sensor"`
}

// UpdateDeviceRequest represents a partial device update.
type UpdateDeviceRequest struct {
	Name       *string `json:"name,omitempty" binding:"omitempty,max=100"`
	Status     *string `json:"status,omitempty" binding:"omitempty,devicestatus"`
	DeviceType *string `json:"device_type,omitempty" binding:"omitempty,devicetype"`
}

// AssociateRequest names the product a device is linked to.
type AssociateRequest struct {
	ProductID uint `json:"product_id" binding:"required,gt=0" example:"1"`
}

// DisassociateRequest optionally names the product the caller believes holds the device.
type DisassociateRequest struct {
	ProductID *uint `json:"product_id,omitempty" binding:"omitempty,gt=0"`
}

// CreateDevice handles POST /devices
func (h *Handler) CreateDevice(c *gin.Context) {
	var req CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create device", "error", err, "ip", c.ClientIP())
		utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), usecases.CreateDeviceCommand{
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		DeviceType:   req.DeviceType,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Device created successfully")
}

// GetDevice handles GET /devices/:id
func (h *Handler) GetDevice(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "device")
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

// ListDevices handles GET /devices
func (h *Handler) ListDevices(c *gin.Context) {
	pagination := utils.ParsePagination(c)
	productID, err := utils.ParseOptionalUintQuery(c, "product_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listUC.Execute(c.Request.Context(), usecases.ListDevicesQuery{
		DeviceType: c.Query("device_type"),
		Status:     c.Query("status"),
		ProductID:  productID,
		Search:     c.Query("search"),
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Devices, result.Total, result.Page, result.PageSize)
}

// UpdateDevice handles PATCH /devices/:id
func (h *Handler) UpdateDevice(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "device")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update device", "device_id", id, "error", err)
		utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
		return
	}

	result, err := h.updateUC.Execute(c.Request.Context(), usecases.UpdateDeviceCommand{
		ID:         id,
		Name:       req.Name,
		Status:     req.Status,
		DeviceType: req.DeviceType,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device updated successfully", result)
}

// DeleteDevice handles DELETE /devices/:id
func (h *Handler) DeleteDevice(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "device")
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

// Associate handles POST /devices/:id/associate
func (h *Handler) Associate(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "device")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req AssociateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
		return
	}

	result, err := h.associateUC.Execute(c.Request.Context(), id, req.ProductID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, probeMessage(result, "Device associated"), assocdto.ToVerifyResultDTO(result))
}

// Disassociate handles POST /devices/:id/disassociate. The body is optional.
func (h *Handler) Disassociate(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "device")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req DisassociateRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		// chunked bodies report ContentLength -1, so only an empty stream counts as no body
		if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
			utils.ErrorResponseWithError(c, utils.ValidationErrorFrom(err))
			return
		}
	}

	result, err := h.disassociateUC.Execute(c.Request.Context(), id, req.ProductID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, probeMessage(result, "Device disassociated"), assocdto.ToVerifyResultDTO(result))
}

// Verify handles GET /devices/:id/verify?action=associate|disassociate&product_id=
func (h *Handler) Verify(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "device")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	action, err := association.NewAction(c.DefaultQuery("action", string(association.ActionAssociate)))
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("action must be associate or disassociate"))
		return
	}

	productID, err := utils.ParseOptionalUintQuery(c, "product_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.verifyUC.Execute(c.Request.Context(), id, productID, action)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", assocdto.ToVerifyResultDTO(result))
}

// probeMessage reports a committed write whose probe still found issues
func probeMessage(result *association.VerifyResult, done string) string {
	if result != nil && !result.OK {
		return done + " but verification found issues"
	}
	return done
}
