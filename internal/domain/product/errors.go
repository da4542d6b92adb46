package product

import "errors"

var (
	// ErrProductNotFound indicates the product was not found
	ErrProductNotFound = errors.New("product not found")

	// ErrProductCodeExists indicates another product already uses the code
	ErrProductCodeExists = errors.New("product code already exists")

	// ErrDeviceTypeMismatch indicates a device of another type was offered to the product
	ErrDeviceTypeMismatch = errors.New("device type does not match product device type")

	// ErrTypeChangeWithLinkedDevices indicates the type of a product with linked devices cannot change
	ErrTypeChangeWithLinkedDevices = errors.New("product device type cannot change while devices are linked")

	// ErrVersionConflict indicates an optimistic locking conflict
	ErrVersionConflict = errors.New("version conflict: product was modified")
)
