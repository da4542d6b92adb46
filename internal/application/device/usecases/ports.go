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
)

// Locker serializes writers touching the same device or product
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

func lockKeys(deviceID uint, productID *uint) []string {
	keys := []string{fmt.Sprintf("%s%d", constants.LockPrefixDevice, deviceID)}
	if productID != nil {
		keys = append(keys, fmt.Sprintf("%s%d", constants.LockPrefixProduct, *productID))
	}
	return keys
}

func acquire(ctx context.Context, locker Locker, keys ...string) (func(), error) {
	release, err := locker.Acquire(ctx, keys...)
	if errors.Is(err, association.ErrLockTimeout) {
		return nil, apperrors.NewUnavailableError("device is being changed by another operation, try again")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire device lock: %w", err)
	}
	return release, nil
}

// toAppError maps repository sentinels to application errors
func toAppError(err error) error {
	switch {
	case errors.Is(err, device.ErrDeviceNotFound):
		return apperrors.NewNotFoundError("device not found")
	case errors.Is(err, device.ErrSerialNumberExists):
		return apperrors.NewConflictError("device serial number already exists")
	case errors.Is(err, device.ErrVersionConflict), errors.Is(err, product.ErrVersionConflict):
		return apperrors.NewConflictError("device was modified concurrently, try again")
	}
	return err
}
