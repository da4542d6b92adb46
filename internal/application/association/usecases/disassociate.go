package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/db"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// DisassociateDeviceUseCase removes a device/product link from both sides
type DisassociateDeviceUseCase struct {
	deviceRepo  device.Repository
	productRepo product.Repository
	txMgr       db.Transactor
	locker      Locker
	verifier    *VerifyAssociationUseCase
	metrics     Metrics
	retry       RetryPolicy
	logger      logger.Interface
}

func NewDisassociateDeviceUseCase(
	deviceRepo device.Repository,
	productRepo product.Repository,
	txMgr db.Transactor,
	locker Locker,
	verifier *VerifyAssociationUseCase,
	metrics Metrics,
	retry RetryPolicy,
	logger logger.Interface,
) *DisassociateDeviceUseCase {
	return &DisassociateDeviceUseCase{
		deviceRepo:  deviceRepo,
		productRepo: productRepo,
		txMgr:       txMgr,
		locker:      locker,
		verifier:    verifier,
		metrics:     metrics,
		retry:       retry,
		logger:      logger,
	}
}

// Execute clears the device's pointer and removes its snapshot from knownProductID and from the product
// the device currently references. An unassociated device without a known product is left untouched.
func (uc *DisassociateDeviceUseCase) Execute(ctx context.Context, deviceID uint, knownProductID *uint) (*association.VerifyResult, error) {
	uc.logger.Infow("executing disassociate device use case",
		"device_id", deviceID,
		"known_product_id", knownProductID,
	)

	var extra []uint
	if knownProductID != nil {
		extra = append(extra, *knownProductID)
	}
	release, d, err := lockDevice(ctx, uc.locker, uc.deviceRepo, deviceID, extra...)
	if err != nil {
		uc.logger.Errorw("failed to lock association", "device_id", deviceID, "error", err)
		return nil, err
	}
	defer release()
	if d == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("device %d not found", deviceID))
	}

	probeProduct := knownProductID
	if probeProduct == nil && d.ProductID() != nil {
		id := *d.ProductID()
		probeProduct = &id
	}

	err = retryOnConflict(ctx, uc.retry, func() error {
		return uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
			return uc.apply(txCtx, deviceID, knownProductID)
		})
	})
	uc.metrics.RecordSync(association.ActionDisassociate, err == nil)
	if err != nil {
		if !errors.IsAppError(err) {
			uc.logger.Errorw("failed to disassociate device", "device_id", deviceID, "error", err)
		}
		return nil, err
	}

	uc.logger.Infow("device disassociated", "device_id", deviceID, "product_id", probeProduct)
	return probe(ctx, uc.verifier, uc.metrics, uc.logger, association.ActionDisassociate, deviceID, probeProduct)
}

func (uc *DisassociateDeviceUseCase) apply(ctx context.Context, deviceID uint, knownProductID *uint) error {
	d, err := uc.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}
	if d == nil {
		return errors.NewNotFoundError(fmt.Sprintf("device %d not found", deviceID))
	}

	targets := productTargets(knownProductID, d.ProductID())
	if len(targets) == 0 {
		return nil
	}

	if d.ClearProduct() {
		if err := uc.deviceRepo.Update(ctx, d); err != nil {
			return association.NewSyncError(association.ActionDisassociate, deviceID, &targets[0], association.SideDevice, err)
		}
	}

	for _, pid := range targets {
		p, err := uc.productRepo.GetByID(ctx, pid)
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}
		if p == nil {
			uc.logger.Debugw("product already gone, nothing to unlink", "product_id", pid, "device_id", deviceID)
			continue
		}
		if !p.UnlinkDevice(deviceID) {
			continue
		}
		if err := uc.productRepo.Update(ctx, p); err != nil {
			return association.NewSyncError(association.ActionDisassociate, deviceID, &pid, association.SideProduct, err)
		}
	}
	return nil
}

func productTargets(known, current *uint) []uint {
	var out []uint
	if known != nil {
		out = append(out, *known)
	}
	if current != nil && (known == nil || *known != *current) {
		out = append(out, *current)
	}
	return out
}
