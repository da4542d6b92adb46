package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/biztime"
	"github.com/devicehub/devicehub/internal/shared/db"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// AssociateDeviceUseCase links a device to a product on both sides of the association
type AssociateDeviceUseCase struct {
	deviceRepo  device.Repository
	productRepo product.Repository
	txMgr       db.Transactor
	locker      Locker
	verifier    *VerifyAssociationUseCase
	metrics     Metrics
	retry       RetryPolicy
	logger      logger.Interface
}

func NewAssociateDeviceUseCase(
	deviceRepo device.Repository,
	productRepo product.Repository,
	txMgr db.Transactor,
	locker Locker,
	verifier *VerifyAssociationUseCase,
	metrics Metrics,
	retry RetryPolicy,
	logger logger.Interface,
) *AssociateDeviceUseCase {
	return &AssociateDeviceUseCase{
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

// Execute points the device at the product and stores a snapshot of the device in the product.
// A device linked to another product is moved. Re-associating the same pair only refreshes the snapshot.
// The returned probe result describes the committed state of the pair.
func (uc *AssociateDeviceUseCase) Execute(ctx context.Context, deviceID, productID uint) (*association.VerifyResult, error) {
	uc.logger.Infow("executing associate device use case",
		"device_id", deviceID,
		"product_id", productID,
	)

	release, d, err := lockDevice(ctx, uc.locker, uc.deviceRepo, deviceID, productID)
	if err != nil {
		uc.logger.Errorw("failed to lock association", "device_id", deviceID, "product_id", productID, "error", err)
		return nil, err
	}
	defer release()
	if d == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("device %d not found", deviceID))
	}

	err = retryOnConflict(ctx, uc.retry, func() error {
		return uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
			return uc.apply(txCtx, deviceID, productID)
		})
	})
	uc.metrics.RecordSync(association.ActionAssociate, err == nil)
	if err != nil {
		if !errors.IsAppError(err) {
			uc.logger.Errorw("failed to associate device",
				"device_id", deviceID,
				"product_id", productID,
				"error", err,
			)
		}
		return nil, err
	}

	uc.logger.Infow("device associated", "device_id", deviceID, "product_id", productID)
	return probe(ctx, uc.verifier, uc.metrics, uc.logger, association.ActionAssociate, deviceID, &productID)
}

func (uc *AssociateDeviceUseCase) apply(ctx context.Context, deviceID, productID uint) error {
	d, err := uc.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}
	if d == nil {
		return errors.NewNotFoundError(fmt.Sprintf("device %d not found", deviceID))
	}

	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return errors.NewNotFoundError(fmt.Sprintf("product %d not found", productID))
	}

	if !p.AcceptsDeviceType(d.DeviceType()) {
		return errors.NewValidationError(
			fmt.Sprintf("device type %s does not match product type %s", d.DeviceType(), p.DeviceType()),
			product.ErrDeviceTypeMismatch.Error(),
		)
	}

	if old := d.ProductID(); old != nil && *old != productID {
		previous, err := uc.productRepo.GetByID(ctx, *old)
		if err != nil {
			return fmt.Errorf("failed to get previous product: %w", err)
		}
		if previous != nil && previous.UnlinkDevice(deviceID) {
			if err := uc.productRepo.Update(ctx, previous); err != nil {
				return association.NewSyncError(association.ActionAssociate, deviceID, old, association.SideProduct, err)
			}
		}
	}

	if d.AssignProduct(p.ID(), p.Name(), p.Code()) {
		if err := uc.deviceRepo.Update(ctx, d); err != nil {
			return association.NewSyncError(association.ActionAssociate, deviceID, &productID, association.SideDevice, err)
		}
	}

	if p.LinkDevice(product.NewDeviceSnapshot(d, biztime.NowUTC())) {
		if err := uc.productRepo.Update(ctx, p); err != nil {
			return association.NewSyncError(association.ActionAssociate, deviceID, &productID, association.SideProduct, err)
		}
	}
	return nil
}

// probe runs the verification probe after a committed write and records a failed probe as a sync failure
func probe(
	ctx context.Context,
	verifier *VerifyAssociationUseCase,
	metrics Metrics,
	log logger.Interface,
	action association.Action,
	deviceID uint,
	productID *uint,
) (*association.VerifyResult, error) {
	result, err := verifier.Execute(ctx, deviceID, productID, action)
	if err != nil {
		log.Errorw("verification probe could not run", "action", action, "device_id", deviceID, "error", err)
		return nil, fmt.Errorf("failed to verify association: %w", err)
	}
	if !result.OK {
		metrics.RecordProbeFailure(action)
		syncErr := association.NewSyncError(action, deviceID, productID, result.Issues[0].Side, association.ErrVerificationFailed)
		log.Errorw("association left inconsistent",
			"error", syncErr,
			"device_id", deviceID,
			"product_id", productID,
			"side", syncErr.Side,
			"issues", result.Issues,
		)
	}
	return result, nil
}
