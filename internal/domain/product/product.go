// Package product provides the product aggregate, its linked device list and repository contract.
package product

import (
	"fmt"
	"strings"
	"time"

	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/shared/biztime"
)

// Product represents a product line that devices are linked to.
// linkedDevices is the reverse side of the device/product association.
type Product struct {
	id            uint
	name          string
	code          string
	deviceType    device.DeviceType
	description   string
	linkedDevices []DeviceSnapshot
	createdAt     time.Time
	updatedAt     time.Time
	version       int
}

// NewProduct creates a new product without linked devices
func NewProduct(name, code string, deviceType device.DeviceType, description string) (*Product, error) {
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	if name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if code == "" {
		return nil, fmt.Errorf("product code is required")
	}
	if !deviceType.IsValid() {
		return nil, fmt.Errorf("%w: %q", device.ErrInvalidDeviceType, deviceType)
	}

	now := biztime.NowUTC()
	return &Product{
		name:        name,
		code:        code,
		deviceType:  deviceType,
		description: description,
		createdAt:   now,
		updatedAt:   now,
		version:     1,
	}, nil
}

// ReconstructProduct reconstructs a product from persistence
func ReconstructProduct(
	id uint,
	name string,
	code string,
	deviceType string,
	description string,
	linkedDevices []DeviceSnapshot,
	createdAt, updatedAt time.Time,
	version int,
) (*Product, error) {
	if id == 0 {
		return nil, fmt.Errorf("product ID cannot be zero")
	}
	if name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if code == "" {
		return nil, fmt.Errorf("product code is required")
	}

	dt, err := device.NewDeviceType(deviceType)
	if err != nil {
		return nil, err
	}

	linked := make([]DeviceSnapshot, len(linkedDevices))
	copy(linked, linkedDevices)

	return &Product{
		id:            id,
		name:          name,
		code:          code,
		deviceType:    dt,
		description:   description,
		linkedDevices: linked,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		version:       version,
	}, nil
}

func (p *Product) ID() uint                      { return p.id }
func (p *Product) Name() string                  { return p.name }
func (p *Product) Code() string                  { return p.code }
func (p *Product) DeviceType() device.DeviceType { return p.deviceType }
func (p *Product) Description() string           { return p.description }
func (p *Product) CreatedAt() time.Time          { return p.createdAt }
func (p *Product) UpdatedAt() time.Time          { return p.updatedAt }

// Version returns the aggregate version for optimistic locking
func (p *Product) Version() int { return p.version }

// LinkedDevices returns a copy of the linked device snapshots in list order
func (p *Product) LinkedDevices() []DeviceSnapshot {
	out := make([]DeviceSnapshot, len(p.linkedDevices))
	copy(out, p.linkedDevices)
	return out
}

// LinkedDeviceCount returns the number of linked device snapshots
func (p *Product) LinkedDeviceCount() int {
	return len(p.linkedDevices)
}

// FindLinkedDevice returns the snapshot for the device id, if present
func (p *Product) FindLinkedDevice(deviceID uint) (DeviceSnapshot, bool) {
	for _, s := range p.linkedDevices {
		if s.ID == deviceID {
			return s, true
		}
	}
	return DeviceSnapshot{}, false
}

// HasLinkedDevice reports whether a snapshot for the device id is present
func (p *Product) HasLinkedDevice(deviceID uint) bool {
	_, ok := p.FindLinkedDevice(deviceID)
	return ok
}

// SetID sets the product ID (only for persistence layer use)
func (p *Product) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("product ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("product ID cannot be zero")
	}
	p.id = id
	return nil
}

// SetVersion records the version stored by the last successful write (only for persistence layer use)
func (p *Product) SetVersion(version int) {
	p.version = version
}

// UpdateName renames the product
func (p *Product) UpdateName(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("product name cannot be empty")
	}
	if p.name == name {
		return false, nil
	}
	p.name = name
	p.touch()
	return true, nil
}

// UpdateCode changes the product code
func (p *Product) UpdateCode(code string) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, fmt.Errorf("product code cannot be empty")
	}
	if p.code == code {
		return false, nil
	}
	p.code = code
	p.touch()
	return true, nil
}

// UpdateDescription replaces the markdown description
func (p *Product) UpdateDescription(description string) bool {
	if p.description == description {
		return false
	}
	p.description = description
	p.touch()
	return true
}

// UpdateDeviceType changes the accepted device type. Only allowed while no devices are linked.
func (p *Product) UpdateDeviceType(deviceType device.DeviceType) (bool, error) {
	if !deviceType.IsValid() {
		return false, fmt.Errorf("%w: %q", device.ErrInvalidDeviceType, deviceType)
	}
	if p.deviceType == deviceType {
		return false, nil
	}
	if len(p.linkedDevices) > 0 {
		return false, ErrTypeChangeWithLinkedDevices
	}
	p.deviceType = deviceType
	p.touch()
	return true, nil
}

// LinkDevice appends a snapshot, or refreshes the display fields of an existing one.
// The original LinkedAt of an existing snapshot is kept. Returns false when nothing changed.
func (p *Product) LinkDevice(snapshot DeviceSnapshot) bool {
	for i, s := range p.linkedDevices {
		if s.ID != snapshot.ID {
			continue
		}
		if s.sameDisplay(snapshot) {
			return false
		}
		snapshot.LinkedAt = s.LinkedAt
		p.linkedDevices[i] = snapshot
		p.touch()
		return true
	}
	p.linkedDevices = append(p.linkedDevices, snapshot)
	p.touch()
	return true
}

// UnlinkDevice removes every snapshot with the device id. Returns false when none was present.
func (p *Product) UnlinkDevice(deviceID uint) bool {
	kept := p.linkedDevices[:0:0]
	for _, s := range p.linkedDevices {
		if s.ID != deviceID {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(p.linkedDevices) {
		return false
	}
	p.linkedDevices = kept
	p.touch()
	return true
}

// Clone returns an independent copy of the product
func (p *Product) Clone() *Product {
	c := *p
	c.linkedDevices = p.LinkedDevices()
	return &c
}

func (p *Product) touch() {
	p.updatedAt = biztime.NowUTC()
}

// AcceptsDeviceType reports whether devices of the given type may be linked
func (p *Product) AcceptsDeviceType(deviceType device.DeviceType) bool {
	return p.deviceType == deviceType
}
