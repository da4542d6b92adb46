package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDevice(t *testing.T) {
	tests := []struct {
		name       string
		devName    string
		serial     string
		deviceType DeviceType
		wantErr    bool
	}{
		{"valid", "Boiler sensor", "SN-001", DeviceTypeSensor, false},
		{"trims whitespace", "  Cam  ", " SN-002 ", DeviceTypeCamera, false},
		{"empty name", "", "SN-003", DeviceTypeSensor, true},
		{"empty serial", "Gateway", "  ", DeviceTypeGateway, true},
		{"unknown type", "Thing", "SN-004", DeviceType("robot"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDevice(tt.devName, tt.serial, tt.deviceType)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusOffline, d.Status())
			assert.Equal(t, 1, d.Version())
			assert.False(t, d.IsAssociated())
			assert.Equal(t, strings.TrimSpace(tt.devName), d.Name())
		})
	}
}

func TestNewDeviceType(t *testing.T) {
	for _, dt := range AllDeviceTypes() {
		parsed, err := NewDeviceType(dt.String())
		require.NoError(t, err)
		assert.Equal(t, dt, parsed)
	}

	_, err := NewDeviceType("Sensor")
	assert.ErrorIs(t, err, ErrInvalidDeviceType)
}

func TestDevice_AssignAndClearProduct(t *testing.T) {
	d, err := NewDevice("Meter", "SN-1", DeviceTypeSensor)
	require.NoError(t, err)

	assert.True(t, d.AssignProduct(7, "Meters", "MTR"))
	require.NotNil(t, d.ProductID())
	assert.Equal(t, uint(7), *d.ProductID())
	assert.Equal(t, "Meters", *d.ProductName())
	assert.Equal(t, "MTR", *d.ProductCode())
	assert.True(t, d.IsAssociatedWith(7))
	assert.False(t, d.IsAssociatedWith(8))

	assert.False(t, d.AssignProduct(7, "Meters", "MTR"), "same values must not report a change")
	assert.True(t, d.AssignProduct(7, "Meters v2", "MTR"), "display refresh is a change")

	assert.True(t, d.ClearProduct())
	assert.Nil(t, d.ProductID())
	assert.Nil(t, d.ProductName())
	assert.Nil(t, d.ProductCode())
	assert.False(t, d.ClearProduct())
}

func TestDevice_UpdateDeviceTypeWhileAssociated(t *testing.T) {
	d, err := NewDevice("Meter", "SN-1", DeviceTypeSensor)
	require.NoError(t, err)
	d.AssignProduct(1, "P", "C")

	changed, err := d.UpdateDeviceType(DeviceTypeCamera)
	assert.ErrorIs(t, err, ErrTypeChangeWhileAssociated)
	assert.False(t, changed)

	d.ClearProduct()
	changed, err = d.UpdateDeviceType(DeviceTypeCamera)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, DeviceTypeCamera, d.DeviceType())
}

func TestDevice_Clone(t *testing.T) {
	d, err := NewDevice("Meter", "SN-1", DeviceTypeSensor)
	require.NoError(t, err)
	d.AssignProduct(3, "P", "C")

	c := d.Clone()
	c.ClearProduct()

	require.NotNil(t, d.ProductID())
	assert.Equal(t, uint(3), *d.ProductID())
}

func TestReconstructDevice(t *testing.T) {
	pid := uint(4)
	d, err := ReconstructDevice(9, "Cam", "SN-9", "camera", "online", &pid, nil, nil, d0(), d0(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint(9), d.ID())
	assert.Equal(t, 3, d.Version())

	_, err = ReconstructDevice(0, "Cam", "SN-9", "camera", "online", nil, nil, nil, d0(), d0(), 1)
	assert.Error(t, err)
	_, err = ReconstructDevice(1, "Cam", "SN-9", "camera", "broken", nil, nil, nil, d0(), d0(), 1)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
