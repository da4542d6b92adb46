package product

import (
	"context"

	"github.com/devicehub/devicehub/internal/application/product/dto"
	"github.com/devicehub/devicehub/internal/application/product/usecases"
)

type createProductUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateProductCommand) (*dto.ProductDTO, error)
}

type getProductUseCase interface {
	Execute(ctx context.Context, id uint) (*dto.ProductDTO, error)
}

type listProductsUseCase interface {
	Execute(ctx context.Context, query usecases.ListProductsQuery) (*usecases.ListProductsResult, error)
}

type updateProductUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdateProductCommand) (*dto.ProductDTO, error)
}

type deleteProductUseCase interface {
	Execute(ctx context.Context, id uint) error
}

type listLinkedDevicesUseCase interface {
	Execute(ctx context.Context, productID uint, page, pageSize int) (*usecases.ListLinkedDevicesResult, error)
}
