package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/domain/device"
	apperrors "github.com/devicehub/devicehub/internal/shared/errors"
)

const maxLockAttempts = 3

// lockDevice locks the device, the given products and the product the device currently references.
// When the device's pointer moved between the read and the acquisition the locks are taken again,
// up to maxLockAttempts times. The device is nil when it does not exist.
func lockDevice(
	ctx context.Context,
	locker Locker,
	deviceRepo device.Repository,
	deviceID uint,
	productIDs ...uint,
) (func(), *device.Device, error) {
	for attempt := 1; ; attempt++ {
		d, err := deviceRepo.GetByID(ctx, deviceID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get device: %w", err)
		}

		keys := []string{deviceLockKey(deviceID)}
		for _, pid := range productIDs {
			keys = append(keys, productLockKey(pid))
		}
		var before *uint
		if d != nil && d.ProductID() != nil {
			before = d.ProductID()
			keys = append(keys, productLockKey(*before))
		}

		release, err := acquire(ctx, locker, keys...)
		if err != nil {
			return nil, nil, err
		}
		if d == nil {
			return release, nil, nil
		}

		current, err := deviceRepo.GetByID(ctx, deviceID)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("failed to get device: %w", err)
		}
		if current == nil || samePointer(before, current.ProductID()) {
			return release, current, nil
		}
		release()
		if attempt == maxLockAttempts {
			return nil, nil, apperrors.NewUnavailableError("device association keeps changing, try again")
		}
	}
}

func acquire(ctx context.Context, locker Locker, keys ...string) (func(), error) {
	release, err := locker.Acquire(ctx, keys...)
	if err != nil {
		if errors.Is(err, association.ErrLockTimeout) {
			return nil, apperrors.NewUnavailableError("association is being changed by another operation, try again")
		}
		return nil, fmt.Errorf("failed to acquire association lock: %w", err)
	}
	return release, nil
}

func samePointer(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
