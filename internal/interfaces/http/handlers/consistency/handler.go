// Package consistency exposes the association checker and repair engine to administrators.
package consistency

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devicehub/devicehub/internal/application/association/dto"
	"github.com/devicehub/devicehub/internal/application/association/usecases"
	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/shared/logger"
	"github.com/devicehub/devicehub/internal/shared/utils"
)

type checkUseCase interface {
	Execute(ctx context.Context) (*association.Report, error)
	Latest(ctx context.Context) (*association.Report, error)
}

type reconcileUseCase interface {
	Execute(ctx context.Context, repair bool) (*usecases.ReconcileResult, error)
}

// Handler handles the admin consistency endpoints.
type Handler struct {
	checkUC     checkUseCase
	reconcileUC reconcileUseCase
	logger      logger.Interface
}

func NewHandler(checkUC checkUseCase, reconcileUC reconcileUseCase, log logger.Interface) *Handler {
	return &Handler{
		checkUC:     checkUC,
		reconcileUC: reconcileUC,
		logger:      log,
	}
}

// Check handles POST /admin/consistency/check
func (h *Handler) Check(c *gin.Context) {
	report, err := h.checkUC.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("consistency check failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", dto.ToReportDTO(report))
}

// Repair handles POST /admin/consistency/repair: check, repair what is repairable, check again.
// A repair batch cut short still returns what it did before the error.
func (h *Handler) Repair(c *gin.Context) {
	result, err := h.reconcileUC.Execute(c.Request.Context(), true)
	if err != nil {
		h.logger.Errorw("consistency repair failed", "error", err)
		if result == nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "repair interrupted: "+err.Error(),
			dto.ToReconcileDTO(result.Before, result.Repair, result.After))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", dto.ToReconcileDTO(result.Before, result.Repair, result.After))
}

// Report handles GET /admin/consistency/report
func (h *Handler) Report(c *gin.Context) {
	report, err := h.checkUC.Latest(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", dto.ToReportDTO(report))
}
