package product

import (
	"context"

	"github.com/devicehub/devicehub/internal/domain/device"
)

// Repository defines the interface for product persistence operations.
// GetByID returns nil, nil when the product does not exist.
type Repository interface {
	Create(ctx context.Context, product *Product) error

	// Update persists a modified product including its linked device list.
	// Returns ErrProductNotFound or ErrVersionConflict.
	Update(ctx context.Context, product *Product) error

	Delete(ctx context.Context, id uint) error

	GetByID(ctx context.Context, id uint) (*Product, error)

	// GetByIDs retrieves products by id, missing ids are omitted from the map
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*Product, error)

	// List retrieves products ordered by id ascending
	List(ctx context.Context, filter ListFilter) ([]*Product, int64, error)

	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// ListFilter defines the filter options for listing products
type ListFilter struct {
	DeviceType *device.DeviceType
	Search     string
	Page       int
	PageSize   int
}
