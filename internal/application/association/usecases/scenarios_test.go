package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/domain/device"
)

// runScenarioSuite runs the end-to-end association scenarios against any backing store
func runScenarioSuite(t *testing.T, newFixture func(t *testing.T) *fixture) {
	ctx := context.Background()

	t.Run("listed device without pointer adopts the product", func(t *testing.T) {
		f := newFixture(t)
		d1 := f.addDevice(t, "D1", device.DeviceTypeSensor)
		p1 := f.addProduct(t, "P1", device.DeviceTypeSensor)
		f.listOnly(t, p1.ID(), d1.ID())

		report, err := f.check.Execute(ctx)
		require.NoError(t, err)
		require.Equal(t, []association.Kind{association.KindProductDeviceAssociationMismatch}, kindsOf(report))
		assert.Nil(t, report.Violations[0].DeviceProductID)

		result, err := f.repair.Execute(ctx, report.Violations)
		require.NoError(t, err)
		assert.Len(t, result.Repaired, 1)

		stored := f.device(t, d1.ID())
		require.NotNil(t, stored.ProductID())
		assert.Equal(t, p1.ID(), *stored.ProductID())
		require.NotNil(t, stored.ProductName())
		assert.Equal(t, "P1", *stored.ProductName())

		again, err := f.check.Execute(ctx)
		require.NoError(t, err)
		assert.Empty(t, again.Violations)
	})

	t.Run("pointer without snapshot gets a snapshot", func(t *testing.T) {
		f := newFixture(t)
		d2 := f.addDevice(t, "D2", device.DeviceTypeCamera)
		p2 := f.addProduct(t, "P2", device.DeviceTypeCamera)
		f.pointOnly(t, d2.ID(), p2.ID())

		report, err := f.check.Execute(ctx)
		require.NoError(t, err)
		require.Equal(t, []association.Kind{association.KindDeviceNotInProductLinkedList}, kindsOf(report))

		result, err := f.repair.Execute(ctx, report.Violations)
		require.NoError(t, err)
		assert.Len(t, result.Repaired, 1)

		snap, ok := f.product(t, p2.ID()).FindLinkedDevice(d2.ID())
		require.True(t, ok)
		assert.Equal(t, "D2", snap.Name)
		assert.Equal(t, device.DeviceTypeCamera, snap.DeviceType)

		again, err := f.check.Execute(ctx)
		require.NoError(t, err)
		assert.Empty(t, again.Violations)
	})

	t.Run("dangling pointer is surfaced and never repaired", func(t *testing.T) {
		f := newFixture(t)
		d3 := f.addDevice(t, "D3", device.DeviceTypeSensor)
		f.pointOnly(t, d3.ID(), 999)

		report, err := f.check.Execute(ctx)
		require.NoError(t, err)
		require.Equal(t, []association.Kind{association.KindDeviceProductNotFound}, kindsOf(report))

		result, err := f.repair.Execute(ctx, report.Violations)
		require.NoError(t, err)
		assert.Empty(t, result.Repaired)
		assert.Len(t, result.Skipped, 1)

		assert.Equal(t, uint(999), *f.device(t, d3.ID()).ProductID())
		again, err := f.check.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, kindsOf(report), kindsOf(again))
	})

	t.Run("type mismatch is surfaced and never repaired", func(t *testing.T) {
		f := newFixture(t)
		d4 := f.addDevice(t, "D4", device.DeviceTypeSensor)
		p4 := f.addProduct(t, "P4", device.DeviceTypeCamera)
		f.pointOnly(t, d4.ID(), p4.ID())

		result, err := f.reconcile.Execute(ctx, true)
		require.NoError(t, err)
		require.Equal(t, []association.Kind{association.KindDeviceProductTypeMismatch}, kindsOf(result.Before))
		assert.Nil(t, result.Repair, "nothing repairable")
		assert.False(t, f.product(t, p4.ID()).HasLinkedDevice(d4.ID()))
	})

	t.Run("associate then disassociate round trip", func(t *testing.T) {
		f := newFixture(t)
		d := f.addDevice(t, "RT", device.DeviceTypeGateway)
		p := f.addProduct(t, "RTP", device.DeviceTypeGateway)

		res, err := f.associate.Execute(ctx, d.ID(), p.ID())
		require.NoError(t, err)
		assert.True(t, res.OK)

		probe, err := f.verify.Execute(ctx, d.ID(), uintPtr(p.ID()), association.ActionAssociate)
		require.NoError(t, err)
		assert.True(t, probe.OK)

		res, err = f.disassociate.Execute(ctx, d.ID(), nil)
		require.NoError(t, err)
		assert.True(t, res.OK)

		assert.Nil(t, f.device(t, d.ID()).ProductID())
		assert.False(t, f.product(t, p.ID()).HasLinkedDevice(d.ID()))

		report, err := f.check.Execute(ctx)
		require.NoError(t, err)
		assert.Empty(t, report.Violations)
	})
}

func TestScenarios_Memory(t *testing.T) {
	runScenarioSuite(t, newMemoryFixture)
}
