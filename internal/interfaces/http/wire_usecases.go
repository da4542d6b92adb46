package http

import (
	assocUsecases "github.com/devicehub/devicehub/internal/application/association/usecases"
	deviceUsecases "github.com/devicehub/devicehub/internal/application/device/usecases"
	productUsecases "github.com/devicehub/devicehub/internal/application/product/usecases"
	"github.com/devicehub/devicehub/internal/shared/services/markdown"
)

// allUseCases holds every use case instance used by the handlers and the scheduler.
type allUseCases struct {
	// Device
	createDevice *deviceUsecases.CreateDeviceUseCase
	getDevice    *deviceUsecases.GetDeviceUseCase
	listDevices  *deviceUsecases.ListDevicesUseCase
	updateDevice *deviceUsecases.UpdateDeviceUseCase
	deleteDevice *deviceUsecases.DeleteDeviceUseCase

	// Product
	createProduct     *productUsecases.CreateProductUseCase
	getProduct        *productUsecases.GetProductUseCase
	listProducts      *productUsecases.ListProductsUseCase
	updateProduct     *productUsecases.UpdateProductUseCase
	deleteProduct     *productUsecases.DeleteProductUseCase
	listLinkedDevices *productUsecases.ListLinkedDevicesUseCase

	// Association
	associate    *assocUsecases.AssociateDeviceUseCase
	disassociate *assocUsecases.DisassociateDeviceUseCase
	verify       *assocUsecases.VerifyAssociationUseCase
	check        *assocUsecases.CheckConsistencyUseCase
	repair       *assocUsecases.RepairConsistencyUseCase
	reconcile    *assocUsecases.ReconcileConsistencyUseCase
}

// ============================================================
// Section 2: Use cases
// ============================================================

func (c *Container) initUseCases() {
	cfg := c.cfg
	log := c.log
	infra := c.infra
	renderer := markdown.NewRenderer()

	retry := assocUsecases.DefaultRetryPolicy()
	if cfg.Consistency.SyncMaxRetries > 0 {
		retry.MaxTries = uint(cfg.Consistency.SyncMaxRetries)
	}

	verify := assocUsecases.NewVerifyAssociationUseCase(infra.devices, infra.products, infra.txMgr, log)
	check := assocUsecases.NewCheckConsistencyUseCase(
		infra.devices, infra.products, infra.txMgr, infra.reports, infra.metrics, cfg.Consistency.ScanPageSize, log,
	)
	repair := assocUsecases.NewRepairConsistencyUseCase(
		infra.devices, infra.products, infra.txMgr, infra.locker, infra.metrics, retry, log,
	)

	c.ucs = &allUseCases{
		createDevice: deviceUsecases.NewCreateDeviceUseCase(infra.devices, log),
		getDevice:    deviceUsecases.NewGetDeviceUseCase(infra.devices, log),
		listDevices:  deviceUsecases.NewListDevicesUseCase(infra.devices, log),
		updateDevice: deviceUsecases.NewUpdateDeviceUseCase(infra.devices, infra.products, infra.txMgr, infra.locker, log),
		deleteDevice: deviceUsecases.NewDeleteDeviceUseCase(infra.devices, infra.products, infra.txMgr, infra.locker, log),

		createProduct:     productUsecases.NewCreateProductUseCase(infra.products, renderer, log),
		getProduct:        productUsecases.NewGetProductUseCase(infra.products, renderer, log),
		listProducts:      productUsecases.NewListProductsUseCase(infra.products, log),
		updateProduct:     productUsecases.NewUpdateProductUseCase(infra.products, infra.devices, infra.txMgr, infra.locker, renderer, log),
		deleteProduct:     productUsecases.NewDeleteProductUseCase(infra.products, infra.devices, infra.txMgr, infra.locker, log),
		listLinkedDevices: productUsecases.NewListLinkedDevicesUseCase(infra.products, log),

		associate:    assocUsecases.NewAssociateDeviceUseCase(infra.devices, infra.products, infra.txMgr, infra.locker, verify, infra.metrics, retry, log),
		disassociate: assocUsecases.NewDisassociateDeviceUseCase(infra.devices, infra.products, infra.txMgr, infra.locker, verify, infra.metrics, retry, log),
		verify:       verify,
		check:        check,
		repair:       repair,
		reconcile:    assocUsecases.NewReconcileConsistencyUseCase(check, repair, log),
	}
}

// Reconcile returns the check-and-repair use case for command line entry points
func (c *Container) Reconcile() *assocUsecases.ReconcileConsistencyUseCase {
	return c.ucs.reconcile
}
