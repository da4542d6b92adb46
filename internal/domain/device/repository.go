package device

import "context"

// Repository defines the interface for device persistence operations.
// GetByID returns nil, nil when the device does not exist.
type Repository interface {
	Create(ctx context.Context, device *Device) error

	// Update persists a modified device. Returns ErrDeviceNotFound or ErrVersionConflict.
	Update(ctx context.Context, device *Device) error

	Delete(ctx context.Context, id uint) error

	GetByID(ctx context.Context, id uint) (*Device, error)

	// GetByIDs retrieves devices by id, missing ids are omitted from the map
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*Device, error)

	// ListByProductID retrieves every device whose forward pointer references the product
	ListByProductID(ctx context.Context, productID uint) ([]*Device, error)

	// List retrieves devices ordered by id ascending
	List(ctx context.Context, filter ListFilter) ([]*Device, int64, error)

	ExistsBySerialNumber(ctx context.Context, serialNumber string) (bool, error)
}

// ListFilter defines the filter options for listing devices
type ListFilter struct {
	DeviceType *DeviceType
	Status     *Status
	ProductID  *uint
	Search     string
	Page       int
	PageSize   int
}
