package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devicehub/devicehub/internal/domain/association"
	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/infrastructure/lock"
	"github.com/devicehub/devicehub/internal/infrastructure/repository/memory"
	"github.com/devicehub/devicehub/internal/shared/db"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

type recordingMetrics struct {
	mu            sync.Mutex
	checks        int
	repairs       map[association.RepairOutcome]int
	syncs         map[bool]int
	probeFailures int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		repairs: make(map[association.RepairOutcome]int),
		syncs:   make(map[bool]int),
	}
}

func (m *recordingMetrics) RecordCheck(*association.Report) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks++
}

func (m *recordingMetrics) RecordRepair(_ association.Kind, outcome association.RepairOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repairs[outcome]++
}

func (m *recordingMetrics) RecordSync(_ association.Action, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncs[success]++
}

func (m *recordingMetrics) RecordProbeFailure(association.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probeFailures++
}

type fakeReportCache struct {
	mu     sync.Mutex
	report *association.Report
}

func (c *fakeReportCache) Save(_ context.Context, r *association.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = r
	return nil
}

func (c *fakeReportCache) Load(context.Context) (*association.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report, nil
}

type fixture struct {
	devices  device.Repository
	products product.Repository

	associate    *AssociateDeviceUseCase
	disassociate *DisassociateDeviceUseCase
	verify       *VerifyAssociationUseCase
	check        *CheckConsistencyUseCase
	repair       *RepairConsistencyUseCase
	reconcile    *ReconcileConsistencyUseCase

	metrics *recordingMetrics
	cache   *fakeReportCache
}

func newMemoryFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return newFixture(t, memory.NewDeviceRepository(store), memory.NewProductRepository(store), store)
}

func newFixture(t *testing.T, devices device.Repository, products product.Repository, tx db.Transactor) *fixture {
	t.Helper()
	log := logger.NewNopLogger()
	locker := lock.NewLocalLocker(time.Second)
	metrics := newRecordingMetrics()
	cache := &fakeReportCache{}
	retry := RetryPolicy{MaxTries: 3, InitialInterval: time.Millisecond}

	verify := NewVerifyAssociationUseCase(devices, products, tx, log)
	check := NewCheckConsistencyUseCase(devices, products, tx, cache, metrics, 2, log)
	repair := NewRepairConsistencyUseCase(devices, products, tx, locker, metrics, retry, log)

	return &fixture{
		devices:      devices,
		products:     products,
		associate:    NewAssociateDeviceUseCase(devices, products, tx, locker, verify, metrics, retry, log),
		disassociate: NewDisassociateDeviceUseCase(devices, products, tx, locker, verify, metrics, retry, log),
		verify:       verify,
		check:        check,
		repair:       repair,
		reconcile:    NewReconcileConsistencyUseCase(check, repair, log),
		metrics:      metrics,
		cache:        cache,
	}
}

func (f *fixture) addDevice(t *testing.T, name string, dt device.DeviceType) *device.Device {
	t.Helper()
	d, err := device.NewDevice(name, "SN-"+name, dt)
	require.NoError(t, err)
	require.NoError(t, f.devices.Create(context.Background(), d))
	return d
}

func (f *fixture) addProduct(t *testing.T, name string, dt device.DeviceType) *product.Product {
	t.Helper()
	p, err := product.NewProduct(name, "CODE-"+name, dt, "")
	require.NoError(t, err)
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

// pointOnly writes the forward pointer without touching any product
func (f *fixture) pointOnly(t *testing.T, deviceID uint, productID uint) {
	t.Helper()
	ctx := context.Background()
	d, err := f.devices.GetByID(ctx, deviceID)
	require.NoError(t, err)
	d.AssignProduct(productID, "name", "code")
	require.NoError(t, f.devices.Update(ctx, d))
}

// listOnly appends a snapshot without touching the device
func (f *fixture) listOnly(t *testing.T, productID uint, deviceID uint) {
	t.Helper()
	ctx := context.Background()
	d, err := f.devices.GetByID(ctx, deviceID)
	require.NoError(t, err)
	p, err := f.products.GetByID(ctx, productID)
	require.NoError(t, err)
	p.LinkDevice(product.NewDeviceSnapshot(d, time.Now()))
	require.NoError(t, f.products.Update(ctx, p))
}

func (f *fixture) device(t *testing.T, id uint) *device.Device {
	t.Helper()
	d, err := f.devices.GetByID(context.Background(), id)
	require.NoError(t, err)
	return d
}

func (f *fixture) product(t *testing.T, id uint) *product.Product {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func kindsOf(r *association.Report) []association.Kind {
	out := make([]association.Kind, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Kind)
	}
	return out
}

func uintPtr(v uint) *uint { return &v }
