package product

import (
	"time"

	"github.com/devicehub/devicehub/internal/domain/device"
)

// DeviceSnapshot is a copy of a device's display fields taken when it was linked.
// It is not kept in sync with the device afterwards.
type DeviceSnapshot struct {
	ID           uint              `json:"id"`
	Name         string            `json:"name"`
	DeviceType   device.DeviceType `json:"device_type"`
	SerialNumber string            `json:"serial_number"`
	Status       device.Status     `json:"status"`
	LinkedAt     time.Time         `json:"linked_at"`
}

// NewDeviceSnapshot copies the display fields of a device
func NewDeviceSnapshot(d *device.Device, linkedAt time.Time) DeviceSnapshot {
	return DeviceSnapshot{
		ID:           d.ID(),
		Name:         d.Name(),
		DeviceType:   d.DeviceType(),
		SerialNumber: d.SerialNumber(),
		Status:       d.Status(),
		LinkedAt:     linkedAt,
	}
}

// sameDisplay reports whether two snapshots carry the same display fields, ignoring LinkedAt
func (s DeviceSnapshot) sameDisplay(other DeviceSnapshot) bool {
	return s.ID == other.ID &&
		s.Name == other.Name &&
		s.DeviceType == other.DeviceType &&
		s.SerialNumber == other.SerialNumber &&
		s.Status == other.Status
}
