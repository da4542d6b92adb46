// Package health reports liveness of the service and its backing stores.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devicehub/devicehub/internal/shared/biztime"
	"github.com/devicehub/devicehub/internal/shared/logger"
	"github.com/devicehub/devicehub/internal/shared/utils"
)

const checkTimeout = 2 * time.Second

// Checker pings one dependency
type Checker func(ctx context.Context) error

type Handler struct {
	checks map[string]Checker
	logger logger.Interface
}

// NewHandler creates a health handler. A nil checker is left out.
func NewHandler(checks map[string]Checker, log logger.Interface) *Handler {
	active := make(map[string]Checker, len(checks))
	for name, check := range checks {
		if check != nil {
			active[name] = check
		}
	}
	return &Handler{checks: active, logger: log}
}

type statusResponse struct {
	Status     string            `json:"status"`
	Time       string            `json:"time"`
	Components map[string]string `json:"components,omitempty"`
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	resp := statusResponse{Status: "ok", Time: biztime.Format(biztime.NowUTC())}
	if len(h.checks) > 0 {
		resp.Components = make(map[string]string, len(h.checks))
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warnw("health check failed", "component", name, "error", err)
			resp.Components[name] = "down"
			resp.Status = "degraded"
			continue
		}
		resp.Components[name] = "up"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	utils.SuccessResponse(c, status, "", resp)
}
