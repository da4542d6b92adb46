package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/infrastructure/lock"
	"github.com/devicehub/devicehub/internal/infrastructure/repository/memory"
	apperrors "github.com/devicehub/devicehub/internal/shared/errors"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

type testEnv struct {
	devices  device.Repository
	products product.Repository
	create   *CreateDeviceUseCase
	get      *GetDeviceUseCase
	list     *ListDevicesUseCase
	update   *UpdateDeviceUseCase
	delete   *DeleteDeviceUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	devices := memory.NewDeviceRepository(store)
	products := memory.NewProductRepository(store)
	log := logger.NewNopLogger()
	locker := lock.NewLocalLocker(time.Second)

	return &testEnv{
		devices:  devices,
		products: products,
		create:   NewCreateDeviceUseCase(devices, log),
		get:      NewGetDeviceUseCase(devices, log),
		list:     NewListDevicesUseCase(devices, log),
		update:   NewUpdateDeviceUseCase(devices, products, store, locker, log),
		delete:   NewDeleteDeviceUseCase(devices, products, store, locker, log),
	}
}

// linked stores a product listing the device and points the device at it
func (e *testEnv) linked(t *testing.T, deviceID uint) *product.Product {
	t.Helper()
	ctx := context.Background()
	d, err := e.devices.GetByID(ctx, deviceID)
	require.NoError(t, err)

	p, err := product.NewProduct("Edge sensors", "EDGE", d.DeviceType(), "")
	require.NoError(t, err)
	p.LinkDevice(product.NewDeviceSnapshot(d, time.Now()))
	require.NoError(t, e.products.Create(ctx, p))

	d.AssignProduct(p.ID(), p.Name(), p.Code())
	require.NoError(t, e.devices.Update(ctx, d))
	return p
}

func strPtr(s string) *string { return &s }

func TestCreateDevice(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	created, err := env.create.Execute(ctx, CreateDeviceCommand{Name: " Boiler probe ", SerialNumber: "SN-1", DeviceType: "sensor"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Boiler probe", created.Name)
	assert.Equal(t, "offline", created.Status)
	assert.Nil(t, created.ProductID)

	tests := []struct {
		name    string
		cmd     CreateDeviceCommand
		checkFn func(error) bool
	}{
		{"unknown type", CreateDeviceCommand{Name: "x", SerialNumber: "SN-2", DeviceType: "toaster"}, apperrors.IsValidationError},
		{"empty name", CreateDeviceCommand{Name: " ", SerialNumber: "SN-3", DeviceType: "sensor"}, apperrors.IsValidationError},
		{"duplicate serial", CreateDeviceCommand{Name: "y", SerialNumber: "SN-1", DeviceType: "camera"}, apperrors.IsConflictError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.create.Execute(ctx, tt.cmd)
			require.Error(t, err)
			assert.True(t, tt.checkFn(err), err.Error())
		})
	}
}

func TestGetAndListDevices(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for _, cmd := range []CreateDeviceCommand{
		{Name: "cam-1", SerialNumber: "C1", DeviceType: "camera"},
		{Name: "cam-2", SerialNumber: "C2", DeviceType: "camera"},
		{Name: "gw-1", SerialNumber: "G1", DeviceType: "gateway"},
	} {
		_, err := env.create.Execute(ctx, cmd)
		require.NoError(t, err)
	}

	got, err := env.get.Execute(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "gw-1", got.Name)

	_, err = env.get.Execute(ctx, 99)
	assert.True(t, apperrors.IsNotFoundError(err))

	res, err := env.list.Execute(ctx, ListDevicesQuery{DeviceType: "camera", PageSize: 1, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	require.Len(t, res.Devices, 1)
	assert.Equal(t, "cam-2", res.Devices[0].Name)

	_, err = env.list.Execute(ctx, ListDevicesQuery{Status: "sleeping"})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestUpdateDevice_RefreshesSnapshot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	created, err := env.create.Execute(ctx, CreateDeviceCommand{Name: "old", SerialNumber: "S1", DeviceType: "sensor"})
	require.NoError(t, err)
	p := env.linked(t, created.ID)

	updated, err := env.update.Execute(ctx, UpdateDeviceCommand{ID: created.ID, Name: strPtr("new"), Status: strPtr("online")})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Name)
	assert.Equal(t, "online", updated.Status)

	stored, err := env.products.GetByID(ctx, p.ID())
	require.NoError(t, err)
	snap, ok := stored.FindLinkedDevice(created.ID)
	require.True(t, ok)
	assert.Equal(t, "new", snap.Name)
	assert.Equal(t, device.StatusOnline, snap.Status)
}

func TestUpdateDevice_Rejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	created, err := env.create.Execute(ctx, CreateDeviceCommand{Name: "d", SerialNumber: "S1", DeviceType: "sensor"})
	require.NoError(t, err)
	env.linked(t, created.ID)

	_, err = env.update.Execute(ctx, UpdateDeviceCommand{ID: created.ID, DeviceType: strPtr("camera")})
	assert.True(t, apperrors.IsValidationError(err), "associated device keeps its type")

	_, err = env.update.Execute(ctx, UpdateDeviceCommand{ID: created.ID, Status: strPtr("broken")})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = env.update.Execute(ctx, UpdateDeviceCommand{ID: 404, Name: strPtr("x")})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestDeleteDevice_RemovesSnapshot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	created, err := env.create.Execute(ctx, CreateDeviceCommand{Name: "gone", SerialNumber: "S1", DeviceType: "gateway"})
	require.NoError(t, err)
	p := env.linked(t, created.ID)

	require.NoError(t, env.delete.Execute(ctx, created.ID))

	d, err := env.devices.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, d)

	stored, err := env.products.GetByID(ctx, p.ID())
	require.NoError(t, err)
	assert.False(t, stored.HasLinkedDevice(created.ID))

	err = env.delete.Execute(ctx, created.ID)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestDeleteDevice_DanglingPointer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	created, err := env.create.Execute(ctx, CreateDeviceCommand{Name: "orphan", SerialNumber: "S1", DeviceType: "gateway"})
	require.NoError(t, err)
	d, err := env.devices.GetByID(ctx, created.ID)
	require.NoError(t, err)
	d.AssignProduct(42, "missing", "MISSING")
	require.NoError(t, env.devices.Update(ctx, d))

	require.NoError(t, env.delete.Execute(ctx, created.ID))
}
