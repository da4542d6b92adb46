// Package dto provides data transfer objects for the product application layer.
package dto

import (
	"time"

	"github.com/devicehub/devicehub/internal/domain/product"
	"github.com/devicehub/devicehub/internal/shared/mapper"
)

// ProductDTO represents a product for API responses.
type ProductDTO struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Code              string    `json:"code"`
	DeviceType        string    `json:"device_type"`
	Description       string    `json:"description"`
	DescriptionHTML   string    `json:"description_html,omitempty"`
	LinkedDeviceCount int       `json:"linked_device_count"`
	Version           int       `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LinkedDeviceDTO represents one device snapshot on a product.
type LinkedDeviceDTO struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	DeviceType   string    `json:"device_type"`
	SerialNumber string    `json:"serial_number"`
	Status       string    `json:"status"`
	LinkedAt     time.Time `json:"linked_at"`
}

// ToProductDTO converts a domain product. descriptionHTML is the rendered description.
func ToProductDTO(p *product.Product, descriptionHTML string) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:                p.ID(),
		Name:              p.Name(),
		Code:              p.Code(),
		DeviceType:        p.DeviceType().String(),
		Description:       p.Description(),
		DescriptionHTML:   descriptionHTML,
		LinkedDeviceCount: p.LinkedDeviceCount(),
		Version:           p.Version(),
		CreatedAt:         p.CreatedAt(),
		UpdatedAt:         p.UpdatedAt(),
	}
}

func ToLinkedDeviceDTO(s product.DeviceSnapshot) *LinkedDeviceDTO {
	return &LinkedDeviceDTO{
		ID:           s.ID,
		Name:         s.Name,
		DeviceType:   s.DeviceType.String(),
		SerialNumber: s.SerialNumber,
		Status:       s.Status.String(),
		LinkedAt:     s.LinkedAt,
	}
}

func ToLinkedDeviceDTOs(snapshots []product.DeviceSnapshot) []*LinkedDeviceDTO {
	return mapper.MapSlice(snapshots, ToLinkedDeviceDTO)
}
