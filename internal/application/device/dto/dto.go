// Package dto provides data transfer objects for the device application layer.
package dto

import (
	"time"

	"github.com/devicehub/devicehub/internal/domain/device"
)

// DeviceDTO represents a device for API responses.
type DeviceDTO struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	SerialNumber string    `json:"serial_number"`
	DeviceType   string    `json:"device_type"`
	Status       string    `json:"status"`
	ProductID    *uint     `json:"product_id,omitempty"`
	ProductName  *string   `json:"product_name,omitempty"`
	ProductCode  *string   `json:"product_code,omitempty"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToDeviceDTO converts a domain device to its DTO. Returns nil for a nil device.
func ToDeviceDTO(d *device.Device) *DeviceDTO {
	if d == nil {
		return nil
	}
	return &DeviceDTO{
		ID:           d.ID(),
		Name:         d.Name(),
		SerialNumber: d.SerialNumber(),
		DeviceType:   d.DeviceType().String(),
		Status:       d.Status().String(),
		ProductID:    d.ProductID(),
		ProductName:  d.ProductName(),
		ProductCode:  d.ProductCode(),
		Version:      d.Version(),
		CreatedAt:    d.CreatedAt(),
		UpdatedAt:    d.UpdatedAt(),
	}
}

// ToDeviceDTOs converts a slice of devices
func ToDeviceDTOs(devices []*device.Device) []*DeviceDTO {
	out := make([]*DeviceDTO, 0, len(devices))
	for _, d := range devices {
		out = append(out, ToDeviceDTO(d))
	}
	return out
}
