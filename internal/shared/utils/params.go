package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devicehub/devicehub/internal/shared/errors"
)

// ParseUintParam parses a positive numeric id from a URL path parameter.
// entityName is used in error messages (e.g., "device").
func ParseUintParam(c *gin.Context, paramName, entityName string) (uint, error) {
	raw := c.Param(paramName)
	if raw == "" {
		return 0, errors.NewValidationError(entityName + " ID is required")
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, errors.NewValidationError(fmt.Sprintf("invalid %s ID: %q", entityName, raw))
	}
	return uint(n), nil
}

// ParseOptionalUintQuery parses an optional positive numeric query parameter
func ParseOptionalUintQuery(c *gin.Context, key string) (*uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid %s: %q", key, raw))
	}
	v := uint(n)
	return &v, nil
}
