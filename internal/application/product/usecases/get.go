package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/application/product/dto"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/logger"
	"github.com/devicehub/devicehub/internal/shared/services/markdown"
)

type GetProductUseCase struct {
	repo     product.Repository
	renderer markdown.Renderer
	logger   logger.Interface
}

func NewGetProductUseCase(repo product.Repository, renderer markdown.Renderer, logger logger.Interface) *GetProductUseCase {
	return &GetProductUseCase{repo: repo, renderer: renderer, logger: logger}
}

// Execute returns the product with its description rendered to HTML.
func (uc *GetProductUseCase) Execute(ctx context.Context, id uint) (*dto.ProductDTO, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		uc.logger.Errorw("failed to get product", "product_id", id, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, notFound(id)
	}
	return dto.ToProductDTO(p, describe(uc.renderer, uc.logger, p)), nil
}
