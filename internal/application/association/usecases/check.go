package usecases

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/biztime"
	"github.com/devicehub/devicehub/internal/shared/db"
	"github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

const (
	defaultScanPageSize = 200
	// upper bound for a shared scan once it no longer follows any caller's cancellation
	scanTimeout = 5 * time.Minute
)

// CheckConsistencyUseCase scans every device and product and reports association violations
type CheckConsistencyUseCase struct {
	deviceRepo  device.Repository
	productRepo product.Repository
	txMgr       db.Transactor
	cache       ReportCache
	metrics     Metrics
	pageSize    int
	logger      logger.Interface

	group singleflight.Group
}

func NewCheckConsistencyUseCase(
	deviceRepo device.Repository,
	productRepo product.Repository,
	txMgr db.Transactor,
	cache ReportCache,
	metrics Metrics,
	pageSize int,
	logger logger.Interface,
) *CheckConsistencyUseCase {
	if pageSize <= 0 {
		pageSize = defaultScanPageSize
	}
	return &CheckConsistencyUseCase{
		deviceRepo:  deviceRepo,
		productRepo: productRepo,
		txMgr:       txMgr,
		cache:       cache,
		metrics:     metrics,
		pageSize:    pageSize,
		logger:      logger,
	}
}

// Execute runs a full scan. Concurrent callers share the scan in flight; a caller
// giving up returns its own context error and leaves the scan running for the rest.
// Violations are data: the error is only set when a repository read fails.
func (uc *CheckConsistencyUseCase) Execute(ctx context.Context) (*association.Report, error) {
	ch := uc.group.DoChan("check", func() (any, error) {
		scanCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), scanTimeout)
		defer cancel()
		return uc.scan(scanCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			uc.logger.Debugw("joined consistency check in flight")
		}
		return res.Val.(*association.Report).Clone(), nil
	}
}

// Latest returns the last stored report
func (uc *CheckConsistencyUseCase) Latest(ctx context.Context) (*association.Report, error) {
	if uc.cache == nil {
		return nil, errors.NewNotFoundError("no consistency report available")
	}
	report, err := uc.cache.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load consistency report: %w", err)
	}
	if report == nil {
		return nil, errors.NewNotFoundError("no consistency report available")
	}
	return report, nil
}

func (uc *CheckConsistencyUseCase) scan(ctx context.Context) (*association.Report, error) {
	start := time.Now()
	uc.logger.Infow("starting consistency check", "page_size", uc.pageSize)

	var devices []*device.Device
	var products []*product.Product

	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if devices, err = uc.loadDevices(txCtx); err != nil {
			return err
		}
		products, err = uc.loadProducts(txCtx)
		return err
	})
	if err != nil {
		uc.logger.Errorw("consistency check failed", "error", err)
		return nil, err
	}

	report := &association.Report{
		Violations:   association.Detect(devices, products),
		DeviceCount:  len(devices),
		ProductCount: len(products),
		CheckedAt:    biztime.NowUTC(),
		Duration:     time.Since(start),
	}

	if uc.cache != nil {
		if err := uc.cache.Save(ctx, report); err != nil {
			uc.logger.Warnw("failed to store consistency report", "error", err)
		}
	}
	uc.metrics.RecordCheck(report)

	if report.Consistent() {
		uc.logger.Infow("consistency check passed",
			"devices", report.DeviceCount,
			"products", report.ProductCount,
			"duration", report.Duration,
		)
	} else {
		uc.logger.Warnw("consistency check found violations",
			"violations", len(report.Violations),
			"devices", report.DeviceCount,
			"products", report.ProductCount,
			"duration", report.Duration,
		)
		for _, v := range report.Violations {
			uc.logger.Debugw("violation", "kind", v.Kind, "device_id", v.DeviceID, "product_id", v.ProductID, "message", v.Message)
		}
	}
	return report, nil
}

func (uc *CheckConsistencyUseCase) loadDevices(ctx context.Context) ([]*device.Device, error) {
	var all []*device.Device
	for page := 1; ; page++ {
		batch, total, err := uc.deviceRepo.List(ctx, device.ListFilter{Page: page, PageSize: uc.pageSize})
		if err != nil {
			return nil, fmt.Errorf("failed to list devices: %w", err)
		}
		all = append(all, batch...)
		if len(batch) < uc.pageSize || int64(len(all)) >= total {
			return all, nil
		}
	}
}

func (uc *CheckConsistencyUseCase) loadProducts(ctx context.Context) ([]*product.Product, error) {
	var all []*product.Product
	for page := 1; ; page++ {
		batch, total, err := uc.productRepo.List(ctx, product.ListFilter{Page: page, PageSize: uc.pageSize})
		if err != nil {
			return nil, fmt.Errorf("failed to list products: %w", err)
		}
		all = append(all, batch...)
		if len(batch) < uc.pageSize || int64(len(all)) >= total {
			return all, nil
		}
	}
}
