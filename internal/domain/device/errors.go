package device

import "errors"

var (
	// ErrDeviceNotFound indicates the device was not found
	ErrDeviceNotFound = errors.New("device not found")

	// ErrSerialNumberExists indicates another device already uses the serial number
	ErrSerialNumberExists = errors.New("device serial number already exists")

	// ErrInvalidDeviceType indicates an unknown device type
	ErrInvalidDeviceType = errors.New("invalid device type")

	// ErrInvalidStatus indicates an unknown device status
	ErrInvalidStatus = errors.New("invalid device status")

	// ErrTypeChangeWhileAssociated indicates the type of an associated device cannot change
	ErrTypeChangeWhileAssociated = errors.New("device type cannot change while associated with a product")

	// ErrVersionConflict indicates an optimistic locking conflict
	ErrVersionConflict = errors.New("version conflict: device was modified")
)
