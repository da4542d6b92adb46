package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/application/device/dto"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// CreateDeviceCommand represents the input for registering a device.
type CreateDeviceCommand struct {
	Name         string
	SerialNumber string
	DeviceType   string
}

// CreateDeviceUseCase registers a new, unassociated device.
type CreateDeviceUseCase struct {
	repo   device.Repository
	logger logger.Interface
}

// NewCreateDeviceUseCase creates a new use case.
func NewCreateDeviceUseCase(repo device.Repository, logger logger.Interface) *CreateDeviceUseCase {
	return &CreateDeviceUseCase{repo: repo, logger: logger}
}

// Execute validates the command and persists the device.
func (uc *CreateDeviceUseCase) Execute(ctx context.Context, cmd CreateDeviceCommand) (*dto.DeviceDTO, error) {
	uc.logger.Infow("executing create device use case", "serial_number", cmd.SerialNumber, "device_type", cmd.DeviceType)

	deviceType, err := device.NewDeviceType(cmd.DeviceType)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if len(cmd.Name) > 100 {
		return nil, errors.NewValidationError("name cannot exceed 100 characters")
	}
	if len(cmd.SerialNumber) > 64 {
		return nil, errors.NewValidationError("serial_number cannot exceed 64 characters")
	}

	d, err := device.NewDevice(cmd.Name, cmd.SerialNumber, deviceType)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	exists, err := uc.repo.ExistsBySerialNumber(ctx, d.SerialNumber())
	if err != nil {
		uc.logger.Errorw("failed to check serial number", "serial_number", d.SerialNumber(), "error", err)
		return nil, fmt.Errorf("failed to check serial number: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError("device serial number already exists", d.SerialNumber())
	}

	if err := uc.repo.Create(ctx, d); err != nil {
		if mapped := toAppError(err); errors.IsAppError(mapped) {
			return nil, mapped
		}
		uc.logger.Errorw("failed to create device", "serial_number", d.SerialNumber(), "error", err)
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	uc.logger.Infow("device created successfully", "device_id", d.ID())
	return dto.ToDeviceDTO(d), nil
}
