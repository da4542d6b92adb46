package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/application/device/dto"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/biztime"
	"github.com/devicehub/devicehub/internal/shared/db"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// UpdateDeviceCommand represents a partial device update. Nil fields are left unchanged.
type UpdateDeviceCommand struct {
	ID         uint
	Name       *string
	Status     *string
	DeviceType *string
}

// UpdateDeviceUseCase applies a partial update and refreshes the device's snapshot on the
// product it references, in the same transaction.
type UpdateDeviceUseCase struct {
	deviceRepo  device.Repository
	productRepo product.Repository
	txMgr       db.Transactor
	locker      Locker
	logger      logger.Interface
}

func NewUpdateDeviceUseCase(
	deviceRepo device.Repository,
	productRepo product.Repository,
	txMgr db.Transactor,
	locker Locker,
	logger logger.Interface,
) *UpdateDeviceUseCase {
	return &UpdateDeviceUseCase{
		deviceRepo:  deviceRepo,
		productRepo: productRepo,
		txMgr:       txMgr,
		locker:      locker,
		logger:      logger,
	}
}

func (uc *UpdateDeviceUseCase) Execute(ctx context.Context, cmd UpdateDeviceCommand) (*dto.DeviceDTO, error) {
	uc.logger.Infow("executing update device use case", "device_id", cmd.ID)

	if cmd.Name != nil && len(*cmd.Name) > 100 {
		return nil, errors.NewValidationError("name cannot exceed 100 characters")
	}

	current, err := uc.deviceRepo.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	if current == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("device %d not found", cmd.ID))
	}

	release, err := acquire(ctx, uc.locker, lockKeys(cmd.ID, current.ProductID())...)
	if err != nil {
		return nil, err
	}
	defer release()

	var updated *device.Device
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		d, err := uc.deviceRepo.GetByID(txCtx, cmd.ID)
		if err != nil {
			return fmt.Errorf("failed to get device: %w", err)
		}
		if d == nil {
			return errors.NewNotFoundError(fmt.Sprintf("device %d not found", cmd.ID))
		}

		changed, err := applyDeviceChanges(d, cmd)
		if err != nil {
			return err
		}
		updated = d
		if !changed {
			return nil
		}

		if err := uc.deviceRepo.Update(txCtx, d); err != nil {
			return fmt.Errorf("failed to update device: %w", err)
		}
		return uc.refreshSnapshot(txCtx, d)
	})
	if err != nil {
		if mapped := toAppError(err); errors.IsAppError(mapped) {
			return nil, mapped
		}
		uc.logger.Errorw("failed to update device", "device_id", cmd.ID, "error", err)
		return nil, err
	}

	uc.logger.Infow("device updated successfully", "device_id", cmd.ID)
	return dto.ToDeviceDTO(updated), nil
}

func applyDeviceChanges(d *device.Device, cmd UpdateDeviceCommand) (bool, error) {
	var changed bool

	if cmd.Name != nil {
		c, err := d.UpdateName(*cmd.Name)
		if err != nil {
			return false, errors.NewValidationError(err.Error())
		}
		changed = changed || c
	}
	if cmd.Status != nil {
		s, err := device.NewStatus(*cmd.Status)
		if err != nil {
			return false, errors.NewValidationError(err.Error())
		}
		c, err := d.UpdateStatus(s)
		if err != nil {
			return false, errors.NewValidationError(err.Error())
		}
		changed = changed || c
	}
	if cmd.DeviceType != nil {
		t, err := device.NewDeviceType(*cmd.DeviceType)
		if err != nil {
			return false, errors.NewValidationError(err.Error())
		}
		c, err := d.UpdateDeviceType(t)
		if err != nil {
			return false, errors.NewValidationError(err.Error())
		}
		changed = changed || c
	}
	return changed, nil
}

// refreshSnapshot rewrites the display fields of the device's snapshot on its product.
// A product that does not list the device is left alone.
func (uc *UpdateDeviceUseCase) refreshSnapshot(ctx context.Context, d *device.Device) error {
	pid := d.ProductID()
	if pid == nil {
		return nil
	}
	p, err := uc.productRepo.GetByID(ctx, *pid)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil || !p.HasLinkedDevice(d.ID()) {
		return nil
	}
	if !p.LinkDevice(product.NewDeviceSnapshot(d, biztime.NowUTC())) {
		return nil
	}
	if err := uc.productRepo.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update product snapshot: %w", err)
	}
	return nil
}
