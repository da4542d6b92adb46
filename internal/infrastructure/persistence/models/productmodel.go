package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/devicehub/devicehub/internal/shared/constants"
)

// ProductModel represents the database persistence model for products.
// LinkedDevices stores the ordered device snapshot list as a JSON array.
type ProductModel struct {
	ID            uint           `gorm:"primarykey"`
	Name          string         `gorm:"not null;size:100"`
	Code          string         `gorm:"not null;size:64;uniqueIndex:idx_product_code"`
	DeviceType    string         `gorm:"not null;size:20;index:idx_product_device_type"`
	Description   string         `gorm:"type:text"`
	LinkedDevices datatypes.JSON `gorm:"type:json"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM.
func (ProductModel) TableName() string {
	return constants.TableProducts
}

// BeforeCreate hook for GORM.
func (m *ProductModel) BeforeCreate(tx *gorm.DB) error {
	if len(m.LinkedDevices) == 0 {
		m.LinkedDevices = datatypes.JSON("[]")
	}
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}
