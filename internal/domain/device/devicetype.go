package device

import "fmt"

// DeviceType is the hardware class of a device. Products accept only devices of their own type.
type DeviceType string

const (
	DeviceTypeSensor     DeviceType = "sensor"
	DeviceTypeCamera     DeviceType = "camera"
	DeviceTypeGateway    DeviceType = "gateway"
	DeviceTypeController DeviceType = "controller"
	DeviceTypeActuator   DeviceType = "actuator"
)

var validDeviceTypes = map[DeviceType]bool{
	DeviceTypeSensor:     true,
	DeviceTypeCamera:     true,
	DeviceTypeGateway:    true,
	DeviceTypeController: true,
	DeviceTypeActuator:   true,
}

// AllDeviceTypes returns every known device type in display order
func AllDeviceTypes() []DeviceType {
	return []DeviceType{
		DeviceTypeSensor,
		DeviceTypeCamera,
		DeviceTypeGateway,
		DeviceTypeController,
		DeviceTypeActuator,
	}
}

// NewDeviceType parses a device type string
func NewDeviceType(value string) (DeviceType, error) {
	t := DeviceType(value)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDeviceType, value)
	}
	return t, nil
}

// IsValid checks if the device type is known
func (t DeviceType) IsValid() bool {
	return validDeviceTypes[t]
}

func (t DeviceType) String() string {
	return string(t)
}

// Status is the operational status of a device
type Status string

const (
	StatusOnline   Status = "online"
	StatusOffline  Status = "offline"
	StatusDisabled Status = "disabled"
)

// NewStatus parses a status string
func NewStatus(value string) (Status, error) {
	s := Status(value)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
	return s, nil
}

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	return s == StatusOnline || s == StatusOffline || s == StatusDisabled
}

func (s Status) String() string {
	return string(s)
}
