package association

import (
	"sort"

	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
)

// Detect compares forward pointers with reverse lists and returns every violation.
//
// Output order is deterministic: the device scan (not found, type mismatch) in device id order,
// then the product scan (linked device not found, association mismatch) in product id order with
// snapshots in list order, then missing snapshots in device id order.
// The type check only runs when the product exists, and a missing snapshot is only reported
// when the product exists and the types match.
func Detect(devices []*device.Device, products []*product.Product) []Violation {
	devices = sortedDevices(devices)
	products = sortedProducts(products)

	deviceByID := make(map[uint]*device.Device, len(devices))
	for _, d := range devices {
		deviceByID[d.ID()] = d
	}
	productByID := make(map[uint]*product.Product, len(products))
	for _, p := range products {
		productByID[p.ID()] = p
	}

	var violations []Violation

	for _, d := range devices {
		pid := d.ProductID()
		if pid == nil {
			continue
		}
		p, ok := productByID[*pid]
		if !ok {
			violations = append(violations, NewDeviceProductNotFound(d.ID(), d.Name(), *pid))
			continue
		}
		if !p.AcceptsDeviceType(d.DeviceType()) {
			violations = append(violations, NewDeviceProductTypeMismatch(
				d.ID(), d.Name(), d.DeviceType().String(),
				p.ID(), p.Name(), p.DeviceType().String(),
			))
		}
	}

	for _, p := range products {
		for _, s := range p.LinkedDevices() {
			d, ok := deviceByID[s.ID]
			if !ok {
				violations = append(violations, NewProductLinkedDeviceNotFound(p.ID(), p.Name(), s.ID, s.Name))
				continue
			}
			if !d.IsAssociatedWith(p.ID()) {
				violations = append(violations, NewProductDeviceAssociationMismatch(
					p.ID(), p.Name(), d.ID(), d.Name(), d.ProductID(),
				))
			}
		}
	}

	for _, d := range devices {
		pid := d.ProductID()
		if pid == nil {
			continue
		}
		p, ok := productByID[*pid]
		if !ok || !p.AcceptsDeviceType(d.DeviceType()) {
			continue
		}
		if !p.HasLinkedDevice(d.ID()) {
			violations = append(violations, NewDeviceNotInProductLinkedList(d.ID(), d.Name(), p.ID(), p.Name()))
		}
	}

	return violations
}

func sortedDevices(in []*device.Device) []*device.Device {
	out := make([]*device.Device, 0, len(in))
	for _, d := range in {
		if d != nil {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func sortedProducts(in []*product.Product) []*product.Product {
	out := make([]*product.Product, 0, len(in))
	for _, p := range in {
		if p != nil {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
