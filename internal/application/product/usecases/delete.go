package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/db"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// DeleteProductUseCase removes a product and clears the forward pointer of every device
// referencing it, in the same transaction.
type DeleteProductUseCase struct {
	productRepo product.Repository
	deviceRepo  device.Repository
	txMgr       db.Transactor
	locker      Locker
	logger      logger.Interface
}

func NewDeleteProductUseCase(
	productRepo product.Repository,
	deviceRepo device.Repository,
	txMgr db.Transactor,
	locker Locker,
	logger logger.Interface,
) *DeleteProductUseCase {
	return &DeleteProductUseCase{
		productRepo: productRepo,
		deviceRepo:  deviceRepo,
		txMgr:       txMgr,
		locker:      locker,
		logger:      logger,
	}
}

func (uc *DeleteProductUseCase) Execute(ctx context.Context, id uint) error {
	uc.logger.Infow("executing delete product use case", "product_id", id)

	pointing, err := uc.deviceRepo.ListByProductID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list product devices: %w", err)
	}
	release, err := acquire(ctx, uc.locker, lockKeys(id, pointing)...)
	if err != nil {
		return err
	}
	defer release()

	var cleared int
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		p, err := uc.productRepo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}
		if p == nil {
			return notFound(id)
		}

		devices, err := uc.deviceRepo.ListByProductID(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to list product devices: %w", err)
		}
		for _, d := range devices {
			if !d.ClearProduct() {
				continue
			}
			if err := uc.deviceRepo.Update(txCtx, d); err != nil {
				return fmt.Errorf("failed to clear device %d: %w", d.ID(), err)
			}
			cleared++
		}

		if err := uc.productRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
	if err != nil {
		if mapped := toAppError(err); errors.IsAppError(mapped) {
			return mapped
		}
		uc.logger.Errorw("failed to delete product", "product_id", id, "error", err)
		return err
	}

	uc.logger.Infow("product deleted successfully", "product_id", id, "devices_cleared", cleared)
	return nil
}
