package device

import (
	"context"

	"github.com/devicehub/devicehub/internal/application/device/dto"
	"github.com/devicehub/devicehub/internal/application/device/usecases"
	"github.com/devicehub/devicehub/internal/domain/association"
)

type createDeviceUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateDeviceCommand) (*dto.DeviceDTO, error)
}

type getDeviceUseCase interface {
	Execute(ctx context.Context, id uint) (*dto.DeviceDTO, error)
}

type listDevicesUseCase interface {
	Execute(ctx context.Context, query usecases.ListDevicesQuery) (*usecases.ListDevicesResult, error)
}

type updateDeviceUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdateDeviceCommand) (*dto.DeviceDTO, error)
}

type deleteDeviceUseCase interface {
	Execute(ctx context.Context, id uint) error
}

type associateUseCase interface {
	Execute(ctx context.Context, deviceID, productID uint) (*association.VerifyResult, error)
}

type disassociateUseCase interface {
	Execute(ctx context.Context, deviceID uint, knownProductID *uint) (*association.VerifyResult, error)
}

type verifyUseCase interface {
	Execute(ctx context.Context, deviceID uint, productID *uint, action association.Action) (*association.VerifyResult, error)
}
