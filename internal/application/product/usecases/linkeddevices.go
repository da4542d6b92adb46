package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/application/product/dto"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/logger"
	"github.com/devicehub/devicehub/internal/shared/utils"
)

type ListLinkedDevicesResult struct {
	Devices  []*dto.LinkedDeviceDTO `json:"devices"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}

// ListLinkedDevicesUseCase pages through the device snapshots a product holds, in list order.
type ListLinkedDevicesUseCase struct {
	repo   product.Repository
	logger logger.Interface
}

func NewListLinkedDevicesUseCase(repo product.Repository, logger logger.Interface) *ListLinkedDevicesUseCase {
	return &ListLinkedDevicesUseCase{repo: repo, logger: logger}
}

func (uc *ListLinkedDevicesUseCase) Execute(ctx context.Context, productID uint, page, pageSize int) (*ListLinkedDevicesResult, error) {
	p, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		uc.logger.Errorw("failed to get product", "product_id", productID, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, notFound(productID)
	}

	pg := utils.ValidatePagination(page, pageSize)
	linked := p.LinkedDevices()
	start, end := utils.ApplyPagination(len(linked), pg.Page, pg.PageSize)

	devices := dto.ToLinkedDeviceDTOs(linked[start:end])
	if devices == nil {
		devices = []*dto.LinkedDeviceDTO{}
	}
	return &ListLinkedDevicesResult{
		Devices:  devices,
		Total:    int64(len(linked)),
		Page:     pg.Page,
		PageSize: pg.PageSize,
	}, nil
}
