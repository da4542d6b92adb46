// Package device provides the device aggregate and its repository contract.
package device

import (
	"fmt"
	"strings"
	"time"

	"github.com/devicehub/devicehub/internal/shared/biztime"
)

// Device represents a managed IoT device.
// productID, productName and productCode form the forward pointer of the device/product association.
type Device struct {
	id           uint
	name         string
	serialNumber string
	deviceType   DeviceType
	status       Status
	productID    *uint
	productName  *string
	productCode  *string
	createdAt    time.Time
	updatedAt    time.Time
	version      int
}

// NewDevice creates a new unassociated device
func NewDevice(name, serialNumber string, deviceType DeviceType) (*Device, error) {
	name = strings.TrimSpace(name)
	serialNumber = strings.TrimSpace(serialNumber)
	if name == "" {
		return nil, fmt.Errorf("device name is required")
	}
	if serialNumber == "" {
		return nil, fmt.Errorf("device serial number is required")
	}
	if !deviceType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDeviceType, deviceType)
	}

	now := biztime.NowUTC()
	return &Device{
		name:         name,
		serialNumber: serialNumber,
		deviceType:   deviceType,
		status:       StatusOffline,
		createdAt:    now,
		updatedAt:    now,
		version:      1,
	}, nil
}

// ReconstructDevice reconstructs a device from persistence
func ReconstructDevice(
	id uint,
	name string,
	serialNumber string,
	deviceType string,
	status string,
	productID *uint,
	productName, productCode *string,
	createdAt, updatedAt time.Time,
	version int,
) (*Device, error) {
	if id == 0 {
		return nil, fmt.Errorf("device ID cannot be zero")
	}
	if name == "" {
		return nil, fmt.Errorf("device name is required")
	}

	dt, err := NewDeviceType(deviceType)
	if err != nil {
		return nil, err
	}
	st, err := NewStatus(status)
	if err != nil {
		return nil, err
	}

	return &Device{
		id:           id,
		name:         name,
		serialNumber: serialNumber,
		deviceType:   dt,
		status:       st,
		productID:    productID,
		productName:  productName,
		productCode:  productCode,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		version:      version,
	}, nil
}

func (d *Device) ID() uint               { return d.id }
func (d *Device) Name() string           { return d.name }
func (d *Device) SerialNumber() string   { return d.serialNumber }
func (d *Device) DeviceType() DeviceType { return d.deviceType }
func (d *Device) Status() Status         { return d.status }
func (d *Device) CreatedAt() time.Time   { return d.createdAt }
func (d *Device) UpdatedAt() time.Time   { return d.updatedAt }

// Version returns the aggregate version for optimistic locking
func (d *Device) Version() int { return d.version }

// ProductID returns the forward pointer, nil when unassociated
func (d *Device) ProductID() *uint { return d.productID }

// ProductName returns the denormalized product name, nil when unassociated
func (d *Device) ProductName() *string { return d.productName }

// ProductCode returns the denormalized product code, nil when unassociated
func (d *Device) ProductCode() *string { return d.productCode }

// IsAssociated reports whether the forward pointer is set
func (d *Device) IsAssociated() bool {
	return d.productID != nil
}

// IsAssociatedWith reports whether the forward pointer references the given product
func (d *Device) IsAssociatedWith(productID uint) bool {
	return d.productID != nil && *d.productID == productID
}

// SetID sets the device ID (only for persistence layer use)
func (d *Device) SetID(id uint) error {
	if d.id != 0 {
		return fmt.Errorf("device ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("device ID cannot be zero")
	}
	d.id = id
	return nil
}

// SetVersion records the version stored by the last successful write (only for persistence layer use)
func (d *Device) SetVersion(version int) {
	d.version = version
}

// UpdateName renames the device. Returns true when the name changed.
func (d *Device) UpdateName(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("device name cannot be empty")
	}
	if d.name == name {
		return false, nil
	}
	d.name = name
	d.touch()
	return true, nil
}

// UpdateStatus changes the operational status
func (d *Device) UpdateStatus(status Status) (bool, error) {
	if !status.IsValid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if d.status == status {
		return false, nil
	}
	d.status = status
	d.touch()
	return true, nil
}

// UpdateDeviceType changes the hardware class. Associated devices keep their type.
func (d *Device) UpdateDeviceType(deviceType DeviceType) (bool, error) {
	if !deviceType.IsValid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidDeviceType, deviceType)
	}
	if d.deviceType == deviceType {
		return false, nil
	}
	if d.IsAssociated() {
		return false, ErrTypeChangeWhileAssociated
	}
	d.deviceType = deviceType
	d.touch()
	return true, nil
}

// AssignProduct points the device at a product and copies its display fields.
// Returns false when the forward pointer already carries exactly these values.
func (d *Device) AssignProduct(productID uint, productName, productCode string) bool {
	if d.IsAssociatedWith(productID) &&
		d.productName != nil && *d.productName == productName &&
		d.productCode != nil && *d.productCode == productCode {
		return false
	}
	d.productID = &productID
	d.productName = &productName
	d.productCode = &productCode
	d.touch()
	return true
}

// ClearProduct resets the forward pointer. Returns false when the device was not associated.
func (d *Device) ClearProduct() bool {
	if d.productID == nil && d.productName == nil && d.productCode == nil {
		return false
	}
	d.productID = nil
	d.productName = nil
	d.productCode = nil
	d.touch()
	return true
}

// Clone returns an independent copy of the device
func (d *Device) Clone() *Device {
	c := *d
	if d.productID != nil {
		v := *d.productID
		c.productID = &v
	}
	if d.productName != nil {
		v := *d.productName
		c.productName = &v
	}
	if d.productCode != nil {
		v := *d.productCode
		c.productCode = &v
	}
	return &c
}

func (d *Device) touch() {
	d.updatedAt = biztime.NowUTC()
}
