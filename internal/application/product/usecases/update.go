package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/application/product/dto"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/db"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
	"github.com/devicehub/devicehub/internal/shared/services/markdown"
)

// UpdateProductCommand represents a partial product update. Nil fields are left unchanged.
type UpdateProductCommand struct {
	ID          uint
	Name        *string
	Code        *string
	Description *string
	DeviceType  *string
}

// UpdateProductUseCase applies a partial update. A renamed or recoded product rewrites the
// denormalized name and code on every device pointing at it, in the same transaction.
type UpdateProductUseCase struct {
	productRepo product.Repository
	deviceRepo  device.Repository
	txMgr       db.Transactor
	locker      Locker
	renderer    markdown.Renderer
	logger      logger.Interface
}

func NewUpdateProductUseCase(
	productRepo product.Repository,
	deviceRepo device.Repository,
	txMgr db.Transactor,
	locker Locker,
	renderer markdown.Renderer,
	logger logger.Interface,
) *UpdateProductUseCase {
	return &UpdateProductUseCase{
		productRepo: productRepo,
		deviceRepo:  deviceRepo,
		txMgr:       txMgr,
		locker:      locker,
		renderer:    renderer,
		logger:      logger,
	}
}

func (uc *UpdateProductUseCase) Execute(ctx context.Context, cmd UpdateProductCommand) (*dto.ProductDTO, error) {
	uc.logger.Infow("executing update product use case", "product_id", cmd.ID)

	if cmd.Name != nil && len(*cmd.Name) > 100 {
		return nil, errors.NewValidationError("name cannot exceed 100 characters")
	}
	if cmd.Code != nil && len(*cmd.Code) > 50 {
		return nil, errors.NewValidationError("code cannot exceed 50 characters")
	}

	pointing, err := uc.deviceRepo.ListByProductID(ctx, cmd.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product devices: %w", err)
	}
	release, err := acquire(ctx, uc.locker, lockKeys(cmd.ID, pointing)...)
	if err != nil {
		return nil, err
	}
	defer release()

	var updated *product.Product
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		p, err := uc.productRepo.GetByID(txCtx, cmd.ID)
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}
		if p == nil {
			return notFound(cmd.ID)
		}
		devices, err := uc.deviceRepo.ListByProductID(txCtx, cmd.ID)
		if err != nil {
			return fmt.Errorf("failed to list product devices: %w", err)
		}

		changed, err := uc.applyChanges(txCtx, p, cmd, len(devices))
		if err != nil {
			return err
		}
		updated = p
		if !changed {
			return nil
		}

		if err := uc.productRepo.Update(txCtx, p); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		for _, d := range devices {
			if !d.AssignProduct(p.ID(), p.Name(), p.Code()) {
				continue
			}
			if err := uc.deviceRepo.Update(txCtx, d); err != nil {
				return fmt.Errorf("failed to update device %d: %w", d.ID(), err)
			}
		}
		return nil
	})
	if err != nil {
		if mapped := toAppError(err); errors.IsAppError(mapped) {
			return nil, mapped
		}
		uc.logger.Errorw("failed to update product", "product_id", cmd.ID, "error", err)
		return nil, err
	}

	uc.logger.Infow("product updated successfully", "product_id", cmd.ID)
	return dto.ToProductDTO(updated, describe(uc.renderer, uc.logger, updated)), nil
}

func (uc *UpdateProductUseCase) applyChanges(ctx context.Context, p *product.Product, cmd UpdateProductCommand, pointing int) (bool, error) {
	var changed bool

	if cmd.Name != nil {
		c, err := p.UpdateName(*cmd.Name)
		if err != nil {
			return false, errors.NewValidationError(err.Error())
		}
		changed = changed || c
	}

	if cmd.Code != nil {
		prev := p.Code()
		c, err := p.UpdateCode(*cmd.Code)
		if err != nil {
			return false, errors.NewValidationError(err.Error())
		}
		if c {
			exists, err := uc.productRepo.ExistsByCode(ctx, p.Code())
			if err != nil {
				return false, fmt.Errorf("failed to check product code: %w", err)
			}
			if exists {
				return false, errors.NewConflictError("product code already exists", p.Code(), prev)
			}
		}
		changed = changed || c
	}

	if cmd.Description != nil {
		changed = p.UpdateDescription(*cmd.Description) || changed
	}

	if cmd.DeviceType != nil {
		t, err := device.NewDeviceType(*cmd.DeviceType)
		if err != nil {
			return false, errors.NewValidationError(err.Error())
		}
		if t != p.DeviceType() && pointing > 0 {
			return false, errors.NewValidationError(product.ErrTypeChangeWithLinkedDevices.Error())
		}
		c, err := p.UpdateDeviceType(t)
		if err != nil {
			return false, errors.NewValidationError(err.Error())
		}
		changed = changed || c
	}
	return changed, nil
}
