package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/application/product/dto"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
	"github.com/devicehub/devicehub/internal/shared/utils"
)

type ListProductsQuery struct {
	DeviceType string
	Search     string
	Page       int
	PageSize   int
}

type ListProductsResult struct {
	Products []*dto.ProductDTO `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

type ListProductsUseCase struct {
	repo   product.Repository
	logger logger.Interface
}

func NewListProductsUseCase(repo product.Repository, logger logger.Interface) *ListProductsUseCase {
	return &ListProductsUseCase{repo: repo, logger: logger}
}

// Execute lists products ordered by id. Descriptions are returned as markdown only.
func (uc *ListProductsUseCase) Execute(ctx context.Context, query ListProductsQuery) (*ListProductsResult, error) {
	p := utils.ValidatePagination(query.Page, query.PageSize)
	filter := product.ListFilter{Search: query.Search, Page: p.Page, PageSize: p.PageSize}

	if query.DeviceType != "" {
		t, err := device.NewDeviceType(query.DeviceType)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		filter.DeviceType = &t
	}

	products, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list products", "error", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	items := make([]*dto.ProductDTO, 0, len(products))
	for _, prod := range products {
		items = append(items, dto.ToProductDTO(prod, ""))
	}
	return &ListProductsResult{Products: items, Total: total, Page: p.Page, PageSize: p.PageSize}, nil
}
