package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/constants"
	apperrors "github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
	"github.com/devicehub/devicehub/internal/shared/services/markdown"
)

// Locker serializes writers touching the same device or product
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// lockKeys returns the product key followed by the keys of the given devices
func lockKeys(productID uint, devices []*device.Device) []string {
	keys := make([]string, 0, len(devices)+1)
	keys = append(keys, fmt.Sprintf("%s%d", constants.LockPrefixProduct, productID))
	for _, d := range devices {
		keys = append(keys, fmt.Sprintf("%s%d", constants.LockPrefixDevice, d.ID()))
	}
	return keys
}

func acquire(ctx context.Context, locker Locker, keys ...string) (func(), error) {
	release, err := locker.Acquire(ctx, keys...)
	if errors.Is(err, association.ErrLockTimeout) {
		return nil, apperrors.NewUnavailableError("product is being changed by another operation, try again")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire product lock: %w", err)
	}
	return release, nil
}

func toAppError(err error) error {
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		return apperrors.NewNotFoundError("product not found")
	case errors.Is(err, product.ErrProductCodeExists):
		return apperrors.NewConflictError("product code already exists")
	case errors.Is(err, product.ErrVersionConflict), errors.Is(err, device.ErrVersionConflict):
		return apperrors.NewConflictError("product was modified concurrently, try again")
	}
	return err
}

// describe renders the markdown description, logging instead of failing on render errors
func describe(r markdown.Renderer, log logger.Interface, p *product.Product) string {
	if r == nil || p.Description() == "" {
		return ""
	}
	out, err := r.ToHTMLSanitized(p.Description())
	if err != nil {
		log.Warnw("failed to render product description", "product_id", p.ID(), "error", err)
		return ""
	}
	return out
}

func notFound(id uint) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("product %d not found", id))
}
