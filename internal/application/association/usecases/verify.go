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

// VerifyAssociationUseCase spot checks one device/product pair after a synchronizer call
type VerifyAssociationUseCase struct {
	deviceRepo  device.Repository
	productRepo product.Repository
	txMgr       db.Transactor
	logger      logger.Interface
}

func NewVerifyAssociationUseCase(
	deviceRepo device.Repository,
	productRepo product.Repository,
	txMgr db.Transactor,
	logger logger.Interface,
) *VerifyAssociationUseCase {
	return &VerifyAssociationUseCase{
		deviceRepo:  deviceRepo,
		productRepo: productRepo,
		txMgr:       txMgr,
		logger:      logger,
	}
}

// Execute checks that both sides reflect the action.
//
// associate: the device must reference productID (or nothing when productID is nil) and the product must
// hold a snapshot of the device. disassociate: the device must reference nothing and, when productID is
// given, the product must no longer list the device.
// Inconsistencies are reported in the result, only repository failures and a missing device are errors.
func (uc *VerifyAssociationUseCase) Execute(
	ctx context.Context,
	deviceID uint,
	productID *uint,
	action association.Action,
) (*association.VerifyResult, error) {
	result := association.NewVerifyResult()

	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		d, err := uc.deviceRepo.GetByID(txCtx, deviceID)
		if err != nil {
			return fmt.Errorf("failed to get device: %w", err)
		}
		if d == nil {
			return errors.NewNotFoundError(fmt.Sprintf("device %d not found", deviceID))
		}

		var p *product.Product
		if productID != nil {
			p, err = uc.productRepo.GetByID(txCtx, *productID)
			if err != nil {
				return fmt.Errorf("failed to get product: %w", err)
			}
		}

		switch action {
		case association.ActionAssociate:
			checkAssociated(result, d, productID, p)
		case association.ActionDisassociate:
			checkDisassociated(result, d, productID, p)
		default:
			return errors.NewValidationError(fmt.Sprintf("unknown verify action %q", action))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.OK {
		uc.logger.Warnw("association verification failed",
			"action", action,
			"device_id", deviceID,
			"product_id", productID,
			"issues", result.Issues,
		)
	}
	return result, nil
}

func checkAssociated(result *association.VerifyResult, d *device.Device, productID *uint, p *product.Product) {
	actual := d.ProductID()
	switch {
	case productID == nil && actual != nil:
		result.AddIssue(association.SideDevice, "device %d references product %d, expected no product", d.ID(), *actual)
	case productID != nil && actual == nil:
		result.AddIssue(association.SideDevice, "device %d references no product, expected product %d", d.ID(), *productID)
	case productID != nil && *actual != *productID:
		result.AddIssue(association.SideDevice, "device %d references product %d, expected product %d", d.ID(), *actual, *productID)
	}

	if productID == nil {
		return
	}
	if p == nil {
		result.AddIssue(association.SideProduct, "product %d not found", *productID)
		return
	}
	if !p.HasLinkedDevice(d.ID()) {
		result.AddIssue(association.SideProduct, "product %d has no snapshot of device %d", p.ID(), d.ID())
	}
}

func checkDisassociated(result *association.VerifyResult, d *device.Device, productID *uint, p *product.Product) {
	if actual := d.ProductID(); actual != nil {
		result.AddIssue(association.SideDevice, "device %d still references product %d", d.ID(), *actual)
	}
	if productID != nil && p != nil && p.HasLinkedDevice(d.ID()) {
		result.AddIssue(association.SideProduct, "product %d still lists device %d", p.ID(), d.ID())
	}
}
