package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/shared/utils"
)

// DeviceRepository implements device.Repository on a Store
type DeviceRepository struct {
	store *Store
}

// NewDeviceRepository creates a device repository on the store
func NewDeviceRepository(store *Store) device.Repository {
	return &DeviceRepository{store: store}
}

func (r *DeviceRepository) Create(ctx context.Context, d *device.Device) error {
	return r.store.write(ctx, func(st *state) error {
		for _, existing := range st.devices {
			if existing.SerialNumber() == d.SerialNumber() {
				return device.ErrSerialNumberExists
			}
		}
		if err := d.SetID(st.nextDeviceID); err != nil {
			return fmt.Errorf("failed to assign device ID: %w", err)
		}
		st.nextDeviceID++
		st.devices[d.ID()] = d.Clone()
		return nil
	})
}

func (r *DeviceRepository) Update(ctx context.Context, d *device.Device) error {
	return r.store.write(ctx, func(st *state) error {
		stored, ok := st.devices[d.ID()]
		if !ok {
			return device.ErrDeviceNotFound
		}
		if stored.Version() != d.Version() {
			return device.ErrVersionConflict
		}
		for id, existing := range st.devices {
			if id != d.ID() && existing.SerialNumber() == d.SerialNumber() {
				return device.ErrSerialNumberExists
			}
		}
		saved := d.Clone()
		saved.SetVersion(d.Version() + 1)
		st.devices[d.ID()] = saved
		d.SetVersion(saved.Version())
		return nil
	})
}

func (r *DeviceRepository) Delete(ctx context.Context, id uint) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.devices[id]; !ok {
			return device.ErrDeviceNotFound
		}
		delete(st.devices, id)
		return nil
	})
}

func (r *DeviceRepository) GetByID(ctx context.Context, id uint) (*device.Device, error) {
	var out *device.Device
	err := r.store.read(ctx, func(st *state) error {
		if d, ok := st.devices[id]; ok {
			out = d.Clone()
		}
		return nil
	})
	return out, err
}

func (r *DeviceRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*device.Device, error) {
	out := make(map[uint]*device.Device, len(ids))
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range ids {
			if d, ok := st.devices[id]; ok {
				out[id] = d.Clone()
			}
		}
		return nil
	})
	return out, err
}

func (r *DeviceRepository) ListByProductID(ctx context.Context, productID uint) ([]*device.Device, error) {
	var out []*device.Device
	err := r.store.read(ctx, func(st *state) error {
		for _, d := range st.devices {
			if d.IsAssociatedWith(productID) {
				out = append(out, d.Clone())
			}
		}
		return nil
	})
	sortDevices(out)
	return out, err
}

func (r *DeviceRepository) List(ctx context.Context, filter device.ListFilter) ([]*device.Device, int64, error) {
	var matched []*device.Device
	err := r.store.read(ctx, func(st *state) error {
		for _, d := range st.devices {
			if matchDevice(d, filter) {
				matched = append(matched, d.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortDevices(matched)

	total := int64(len(matched))
	if filter.Page < 1 || filter.PageSize < 1 {
		return matched, total, nil
	}
	start, end := utils.ApplyPagination(len(matched), filter.Page, filter.PageSize)
	return matched[start:end], total, nil
}

func (r *DeviceRepository) ExistsBySerialNumber(ctx context.Context, serialNumber string) (bool, error) {
	found := false
	err := r.store.read(ctx, func(st *state) error {
		for _, d := range st.devices {
			if d.SerialNumber() == serialNumber {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func matchDevice(d *device.Device, f device.ListFilter) bool {
	if f.DeviceType != nil && d.DeviceType() != *f.DeviceType {
		return false
	}
	if f.Status != nil && d.Status() != *f.Status {
		return false
	}
	if f.ProductID != nil && !d.IsAssociatedWith(*f.ProductID) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(d.Name()), q) && !strings.Contains(strings.ToLower(d.SerialNumber()), q) {
			return false
		}
	}
	return true
}

func sortDevices(ds []*device.Device) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].ID() < ds[j].ID() })
}
