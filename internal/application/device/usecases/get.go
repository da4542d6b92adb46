package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/application/device/dto"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

type GetDeviceUseCase struct {
	repo   device.Repository
	logger logger.Interface
}

func NewGetDeviceUseCase(repo device.Repository, logger logger.Interface) *GetDeviceUseCase {
	return &GetDeviceUseCase{repo: repo, logger: logger}
}

func (uc *GetDeviceUseCase) Execute(ctx context.Context, id uint) (*dto.DeviceDTO, error) {
	d, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		uc.logger.Errorw("failed to get device", "device_id", id, "error", err)
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	if d == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("device %d not found", id))
	}
	return dto.ToDeviceDTO(d), nil
}
