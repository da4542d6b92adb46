package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/application/product/dto"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
	"github.com/devicehub/devicehub/internal/shared/services/markdown"
)

// CreateProductCommand represents the input for creating a product.
type CreateProductCommand struct {
	Name        string
	Code        string
	DeviceType  string
	Description string
}

type CreateProductUseCase struct {
	repo     product.Repository
	renderer markdown.Renderer
	logger   logger.Interface
}

func NewCreateProductUseCase(repo product.Repository, renderer markdown.Renderer, logger logger.Interface) *CreateProductUseCase {
	return &CreateProductUseCase{repo: repo, renderer: renderer, logger: logger}
}

// Execute validates the command and persists a product without linked devices.
func (uc *CreateProductUseCase) Execute(ctx context.Context, cmd CreateProductCommand) (*dto.ProductDTO, error) {
	uc.logger.Infow("executing create product use case", "code", cmd.Code, "device_type", cmd.DeviceType)

	deviceType, err := device.NewDeviceType(cmd.DeviceType)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if len(cmd.Name) > 100 {
		return nil, errors.NewValidationError("name cannot exceed 100 characters")
	}
	if len(cmd.Code) > 50 {
		return nil, errors.NewValidationError("code cannot exceed 50 characters")
	}

	p, err := product.NewProduct(cmd.Name, cmd.Code, deviceType, cmd.Description)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	exists, err := uc.repo.ExistsByCode(ctx, p.Code())
	if err != nil {
		uc.logger.Errorw("failed to check product code", "code", p.Code(), "error", err)
		return nil, fmt.Errorf("failed to check product code: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError("product code already exists", p.Code())
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		if mapped := toAppError(err); errors.IsAppError(mapped) {
			return nil, mapped
		}
		uc.logger.Errorw("failed to create product", "code", p.Code(), "error", err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	uc.logger.Infow("product created successfully", "product_id", p.ID())
	return dto.ToProductDTO(p, describe(uc.renderer, uc.logger, p)), nil
}
