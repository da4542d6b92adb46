package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/infrastructure/repository/memory"
)

func TestRepair_DeviceListedTwiceConverges(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)
	d := f.addDevice(t, "twice", device.DeviceTypeSensor)
	p1 := f.addProduct(t, "first", device.DeviceTypeSensor)
	p2 := f.addProduct(t, "second", device.DeviceTypeSensor)
	f.listOnly(t, p1.ID(), d.ID())
	f.listOnly(t, p2.ID(), d.ID())

	report, err := f.check.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, report.Violations, 2)

	result, err := f.repair.Execute(ctx, report.Violations)
	require.NoError(t, err)
	assert.Len(t, result.Repaired, 2)

	assert.Equal(t, p1.ID(), *f.device(t, d.ID()).ProductID(), "first listing product is adopted")
	assert.True(t, f.product(t, p1.ID()).HasLinkedDevice(d.ID()))
	assert.False(t, f.product(t, p2.ID()).HasLinkedDevice(d.ID()), "second listing is stale")

	again, err := f.check.Execute(ctx)
	require.NoError(t, err)
	assert.Empty(t, again.Violations)
}

func TestRepair_ListingOfWrongTypeIsDropped(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)
	d := f.addDevice(t, "stray", device.DeviceTypeSensor)
	cameras := f.addProduct(t, "cameras", device.DeviceTypeCamera)
	f.listOnly(t, cameras.ID(), d.ID())

	_, err := f.associate.Execute(ctx, d.ID(), cameras.ID())
	require.Error(t, err, "the pair cannot be associated")

	result, err := f.reconcile.Execute(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []association.Kind{association.KindProductDeviceAssociationMismatch}, kindsOf(result.Before))
	require.Len(t, result.Repair.Repaired, 1)
	require.NotNil(t, result.After)
	assert.Empty(t, result.After.Violations)

	assert.Nil(t, f.device(t, d.ID()).ProductID())
	assert.False(t, f.product(t, cameras.ID()).HasLinkedDevice(d.ID()))
}

func TestRepair_StaleViolationsAreSkipped(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)
	d := f.addDevice(t, "fixed", device.DeviceTypeSensor)
	p := f.addProduct(t, "fixed", device.DeviceTypeSensor)
	f.pointOnly(t, d.ID(), p.ID())

	report, err := f.check.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)

	// fixed by a synchronizer call after the check
	_, err = f.associate.Execute(ctx, d.ID(), p.ID())
	require.NoError(t, err)
	version := f.product(t, p.ID()).Version()

	stale := append(report.Violations,
		association.NewProductDeviceAssociationMismatch(p.ID(), "fixed", d.ID(), "fixed", nil),
		association.NewDeviceNotInProductLinkedList(404, "gone", p.ID(), "fixed"),
	)
	result, err := f.repair.Execute(ctx, stale)
	require.NoError(t, err)
	assert.Empty(t, result.Repaired)
	assert.Empty(t, result.Failed)
	assert.Len(t, result.Skipped, 3)
	assert.Equal(t, version, f.product(t, p.ID()).Version())
	assert.Equal(t, 3, f.metrics.repairs[association.RepairOutcomeSkipped])
}

func TestRepair_UnrepairableKindsAreSkipped(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)

	violations := []association.Violation{
		association.NewDeviceProductNotFound(1, "a", 2),
		association.NewDeviceProductTypeMismatch(1, "a", "sensor", 2, "b", "camera"),
		association.NewProductLinkedDeviceNotFound(2, "b", 1, "a"),
	}
	result, err := f.repair.Execute(ctx, violations)
	require.NoError(t, err)
	assert.Len(t, result.Skipped, 3)
	assert.Equal(t, 3, result.Total())
}

// selectiveProducts fails updates of a single product
type selectiveProducts struct {
	product.Repository
	failID uint
}

func (r *selectiveProducts) Update(ctx context.Context, p *product.Product) error {
	if p.ID() == r.failID {
		return errors.New("write rejected")
	}
	return r.Repository.Update(ctx, p)
}

func TestRepair_FailedItemDoesNotStopBatch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	devices := memory.NewDeviceRepository(store)
	products := &selectiveProducts{Repository: memory.NewProductRepository(store)}
	f := newFixture(t, devices, products, store)

	broken := f.addProduct(t, "broken", device.DeviceTypeSensor)
	healthy := f.addProduct(t, "healthy", device.DeviceTypeSensor)
	d1 := f.addDevice(t, "d1", device.DeviceTypeSensor)
	d2 := f.addDevice(t, "d2", device.DeviceTypeSensor)
	f.pointOnly(t, d1.ID(), broken.ID())
	f.pointOnly(t, d2.ID(), healthy.ID())
	products.failID = broken.ID()

	report, err := f.check.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, report.Violations, 2)

	result, err := f.repair.Execute(ctx, report.Violations)
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, d1.ID(), result.Failed[0].Violation.DeviceID)
	assert.Contains(t, result.Failed[0].Error, "write rejected")
	require.Len(t, result.Repaired, 1)
	assert.Equal(t, d2.ID(), result.Repaired[0].DeviceID)
	assert.Equal(t, 1, f.metrics.repairs[association.RepairOutcomeFailed])
	assert.Equal(t, 1, f.metrics.repairs[association.RepairOutcomeRepaired])
}

func TestRepair_CanceledContextReturnsPartialResult(t *testing.T) {
	f := newMemoryFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	violations := []association.Violation{association.NewDeviceProductNotFound(1, "a", 2)}
	result, err := f.repair.Execute(ctx, violations)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Zero(t, result.Total())
}

func TestReconcile_RepairsAndRechecks(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)
	d := f.addDevice(t, "loose", device.DeviceTypeActuator)
	p := f.addProduct(t, "valves", device.DeviceTypeActuator)
	f.pointOnly(t, d.ID(), p.ID())
	f.pointOnly(t, f.addDevice(t, "lost", device.DeviceTypeActuator).ID(), 8080)

	result, err := f.reconcile.Execute(ctx, true)
	require.NoError(t, err)
	assert.Len(t, result.Before.Violations, 2)
	require.NotNil(t, result.Repair)
	assert.Len(t, result.Repair.Repaired, 1)
	require.NotNil(t, result.After)
	assert.Equal(t, []association.Kind{association.KindDeviceProductNotFound}, kindsOf(result.After))
	assert.Same(t, result.After, result.Final())
	assert.Equal(t, 2, f.metrics.checks)
}

func TestReconcile_CheckOnly(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)
	d := f.addDevice(t, "loose", device.DeviceTypeActuator)
	p := f.addProduct(t, "valves", device.DeviceTypeActuator)
	f.pointOnly(t, d.ID(), p.ID())

	result, err := f.reconcile.Execute(ctx, false)
	require.NoError(t, err)
	assert.Len(t, result.Before.Violations, 1)
	assert.Nil(t, result.Repair)
	assert.Nil(t, result.After)
	assert.Same(t, result.Before, result.Final())
	assert.False(t, f.product(t, p.ID()).HasLinkedDevice(d.ID()))
}

func TestReconcileJob_ReturnsRepairedCount(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)
	d := f.addDevice(t, "loose", device.DeviceTypeActuator)
	p := f.addProduct(t, "valves", device.DeviceTypeActuator)
	f.pointOnly(t, d.ID(), p.ID())

	n, err := NewReconcileJob(f.reconcile, false).Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = NewReconcileJob(f.reconcile, true).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
