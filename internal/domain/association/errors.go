package association

import (
	"errors"
	"fmt"
)

var (
	// ErrLockTimeout indicates the pair lock could not be acquired in time
	ErrLockTimeout = errors.New("association lock wait timed out")

	// ErrVerificationFailed indicates the post-write probe found a half-applied pair
	ErrVerificationFailed = errors.New("association verification failed")
)

// SyncError reports a failed association write and the side it failed on.
// A nil ProductID means the product was not known when the write failed.
type SyncError struct {
	Action    Action
	DeviceID  uint
	ProductID *uint
	Side      Side
	Err       error
}

func (e *SyncError) Error() string {
	product := "none"
	if e.ProductID != nil {
		product = fmt.Sprintf("%d", *e.ProductID)
	}
	return fmt.Sprintf("%s device %d product %s failed on %s side: %v", e.Action, e.DeviceID, product, e.Side, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError wraps a write failure with its pair context
func NewSyncError(action Action, deviceID uint, productID *uint, side Side, err error) *SyncError {
	return &SyncError{
		Action:    action,
		DeviceID:  deviceID,
		ProductID: copyID(productID),
		Side:      side,
		Err:       err,
	}
}
