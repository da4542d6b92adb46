package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/db"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// DeleteDeviceUseCase removes a device together with its snapshot on the referenced product.
type DeleteDeviceUseCase struct {
	deviceRepo  device.Repository
	productRepo product.Repository
	txMgr       db.Transactor
	locker      Locker
	logger      logger.Interface
}

func NewDeleteDeviceUseCase(
	deviceRepo device.Repository,
	productRepo product.Repository,
	txMgr db.Transactor,
	locker Locker,
	logger logger.Interface,
) *DeleteDeviceUseCase {
	return &DeleteDeviceUseCase{
		deviceRepo:  deviceRepo,
		productRepo: productRepo,
		txMgr:       txMgr,
		locker:      locker,
		logger:      logger,
	}
}

func (uc *DeleteDeviceUseCase) Execute(ctx context.Context, id uint) error {
	uc.logger.Infow("executing delete device use case", "device_id", id)

	current, err := uc.deviceRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}
	if current == nil {
		return errors.NewNotFoundError(fmt.Sprintf("device %d not found", id))
	}

	release, err := acquire(ctx, uc.locker, lockKeys(id, current.ProductID())...)
	if err != nil {
		return err
	}
	defer release()

	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		d, err := uc.deviceRepo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get device: %w", err)
		}
		if d == nil {
			return errors.NewNotFoundError(fmt.Sprintf("device %d not found", id))
		}

		if pid := d.ProductID(); pid != nil {
			p, err := uc.productRepo.GetByID(txCtx, *pid)
			if err != nil {
				return fmt.Errorf("failed to get product: %w", err)
			}
			if p != nil && p.UnlinkDevice(id) {
				if err := uc.productRepo.Update(txCtx, p); err != nil {
					return fmt.Errorf("failed to remove device snapshot: %w", err)
				}
			}
		}

		if err := uc.deviceRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete device: %w", err)
		}
		return nil
	})
	if err != nil {
		if mapped := toAppError(err); errors.IsAppError(mapped) {
			return mapped
		}
		uc.logger.Errorw("failed to delete device", "device_id", id, "error", err)
		return err
	}

	uc.logger.Infow("device deleted successfully", "device_id", id)
	return nil
}
