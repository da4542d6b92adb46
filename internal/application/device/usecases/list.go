package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/application/device/dto"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
	"github.com/devicehub/devicehub/internal/shared/utils"
)

// ListDevicesQuery represents the input for listing devices. Empty strings disable a filter.
type ListDevicesQuery struct {
	DeviceType string
	Status     string
	ProductID  *uint
	Search     string
	Page       int
	PageSize   int
}

// ListDevicesResult represents one page of devices.
type ListDevicesResult struct {
	Devices  []*dto.DeviceDTO `json:"devices"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

type ListDevicesUseCase struct {
	repo   device.Repository
	logger logger.Interface
}

func NewListDevicesUseCase(repo device.Repository, logger logger.Interface) *ListDevicesUseCase {
	return &ListDevicesUseCase{repo: repo, logger: logger}
}

// Execute lists devices ordered by id.
func (uc *ListDevicesUseCase) Execute(ctx context.Context, query ListDevicesQuery) (*ListDevicesResult, error) {
	p := utils.ValidatePagination(query.Page, query.PageSize)
	filter := device.ListFilter{
		ProductID: query.ProductID,
		Search:    query.Search,
		Page:      p.Page,
		PageSize:  p.PageSize,
	}

	if query.DeviceType != "" {
		t, err := device.NewDeviceType(query.DeviceType)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		filter.DeviceType = &t
	}
	if query.Status != "" {
		s, err := device.NewStatus(query.Status)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		filter.Status = &s
	}

	devices, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list devices", "error", err)
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	return &ListDevicesResult{
		Devices:  dto.ToDeviceDTOs(devices),
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}, nil
}
