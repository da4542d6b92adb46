package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/devicehub/devicehub/internal/shared/constants"
)

// DeviceModel represents the database persistence model for devices.
// ProductID, ProductName and ProductCode hold the forward pointer of the association.
type DeviceModel struct {
	ID           uint    `gorm:"primarykey"`
	Name         string  `gorm:"not null;size:100"`
	SerialNumber string  `gorm:"not null;size:64;uniqueIndex:idx_device_serial_number"`
	DeviceType   string  `gorm:"not null;size:20;index:idx_device_type"`
	Status       string  `gorm:"not null;default:offline;size:20"`
	ProductID    *uint   `gorm:"index:idx_device_product_id"`
	ProductName  *string `gorm:"size:100"`
	ProductCode  *string `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM.
func (DeviceModel) TableName() string {
	return constants.TableDevices
}

// BeforeCreate hook for GORM.
func (m *DeviceModel) BeforeCreate(tx *gorm.DB) error {
	if m.Status == "" {
		m.Status = "offline"
	}
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}
