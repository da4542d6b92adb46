package usecases

import (
	"context"
	"fmt"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/biztime"
	"github.com/devicehub/devicehub/internal/shared/db"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

// RepairConsistencyUseCase fixes the violations the forward pointer can settle.
//
// DeviceNotInProductLinkedList: the product gets a snapshot of the device.
// ProductDeviceAssociationMismatch: a device without a pointer adopts the listing product,
// a device pointing elsewhere keeps its pointer and the stale snapshot is removed.
// Every other kind is skipped.
type RepairConsistencyUseCase struct {
	deviceRepo  device.Repository
	productRepo product.Repository
	txMgr       db.Transactor
	locker      Locker
	metrics     Metrics
	retry       RetryPolicy
	logger      logger.Interface
}

func NewRepairConsistencyUseCase(
	deviceRepo device.Repository,
	productRepo product.Repository,
	txMgr db.Transactor,
	locker Locker,
	metrics Metrics,
	retry RetryPolicy,
	logger logger.Interface,
) *RepairConsistencyUseCase {
	return &RepairConsistencyUseCase{
		deviceRepo:  deviceRepo,
		productRepo: productRepo,
		txMgr:       txMgr,
		locker:      locker,
		metrics:     metrics,
		retry:       retry,
		logger:      logger,
	}
}

// Execute repairs each violation independently. A failed item is recorded and the batch continues.
// The error is only set when ctx ends, together with the partial result.
func (uc *RepairConsistencyUseCase) Execute(ctx context.Context, violations []association.Violation) (*association.RepairResult, error) {
	uc.logger.Infow("executing repair consistency use case", "violations", len(violations))

	result := &association.RepairResult{}
	for _, v := range violations {
		if err := ctx.Err(); err != nil {
			uc.logger.Warnw("repair batch interrupted", "processed", result.Total(), "error", err)
			return result, err
		}

		outcome, err := uc.repairOne(ctx, v)
		uc.metrics.RecordRepair(v.Kind, outcome)

		switch outcome {
		case association.RepairOutcomeRepaired:
			uc.logger.Infow("violation repaired", "kind", v.Kind, "device_id", v.DeviceID, "product_id", v.ProductID)
			result.Repaired = append(result.Repaired, v)
		case association.RepairOutcomeSkipped:
			result.Skipped = append(result.Skipped, v)
		default:
			uc.logger.Errorw("failed to repair violation",
				"kind", v.Kind,
				"device_id", v.DeviceID,
				"product_id", v.ProductID,
				"error", err,
			)
			result.Failed = append(result.Failed, association.RepairFailure{Violation: v, Error: err.Error()})
		}
	}

	uc.logger.Infow("repair batch completed",
		"repaired", len(result.Repaired),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
	)
	return result, nil
}

type repairFunc func(ctx context.Context, d *device.Device, p *product.Product) (bool, error)

func (uc *RepairConsistencyUseCase) repairOne(ctx context.Context, v association.Violation) (association.RepairOutcome, error) {
	var fix repairFunc
	switch v.Kind {
	case association.KindDeviceNotInProductLinkedList:
		fix = uc.addMissingSnapshot
	case association.KindProductDeviceAssociationMismatch:
		fix = uc.resolveListingMismatch
	default:
		return association.RepairOutcomeSkipped, nil
	}

	release, err := acquire(ctx, uc.locker, deviceLockKey(v.DeviceID), productLockKey(v.ProductID))
	if err != nil {
		return association.RepairOutcomeFailed, err
	}
	defer release()

	var applied bool
	err = retryOnConflict(ctx, uc.retry, func() error {
		return uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
			d, err := uc.deviceRepo.GetByID(txCtx, v.DeviceID)
			if err != nil {
				return fmt.Errorf("failed to get device: %w", err)
			}
			p, err := uc.productRepo.GetByID(txCtx, v.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get product: %w", err)
			}
			if d == nil || p == nil {
				applied = false
				return nil
			}
			applied, err = fix(txCtx, d, p)
			return err
		})
	})
	if err != nil {
		return association.RepairOutcomeFailed, err
	}
	if !applied {
		uc.logger.Debugw("violation no longer applies", "kind", v.Kind, "device_id", v.DeviceID, "product_id", v.ProductID)
		return association.RepairOutcomeSkipped, nil
	}
	return association.RepairOutcomeRepaired, nil
}

func (uc *RepairConsistencyUseCase) addMissingSnapshot(ctx context.Context, d *device.Device, p *product.Product) (bool, error) {
	if !d.IsAssociatedWith(p.ID()) || !p.AcceptsDeviceType(d.DeviceType()) || p.HasLinkedDevice(d.ID()) {
		return false, nil
	}
	p.LinkDevice(product.NewDeviceSnapshot(d, biztime.NowUTC()))
	if err := uc.productRepo.Update(ctx, p); err != nil {
		return false, fmt.Errorf("failed to update product: %w", err)
	}
	return true, nil
}

func (uc *RepairConsistencyUseCase) resolveListingMismatch(ctx context.Context, d *device.Device, p *product.Product) (bool, error) {
	if !p.HasLinkedDevice(d.ID()) || d.IsAssociatedWith(p.ID()) {
		return false, nil
	}

	// a listing of a device the product cannot accept is dropped like any other stale listing
	if !d.IsAssociated() && p.AcceptsDeviceType(d.DeviceType()) {
		d.AssignProduct(p.ID(), p.Name(), p.Code())
		if err := uc.deviceRepo.Update(ctx, d); err != nil {
			return false, fmt.Errorf("failed to update device: %w", err)
		}
		return true, nil
	}

	p.UnlinkDevice(d.ID())
	if err := uc.productRepo.Update(ctx, p); err != nil {
		return false, fmt.Errorf("failed to update product: %w", err)
	}
	return true, nil
}
