package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devicehub/devicehub/internal/shared/constants"
	"github.com/devicehub/devicehub/internal/shared/logger"
	"github.com/devicehub/devicehub/internal/shared/utils"
)

// Limiter decides whether one more request for key fits its windows
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit keys requests by authenticated subject, falling back to client IP.
// A limiter error lets the request through.
func RateLimit(limiter Limiter, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(constants.ContextKeySubject)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warnw("rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}
		if !allowed {
			log.Warnw("rate limit exceeded", "key", key, "path", c.Request.URL.Path)
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}
