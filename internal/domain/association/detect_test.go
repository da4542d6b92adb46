package association

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func uintPtr(v uint) *uint { return &v }

func mkDevice(t *testing.T, id uint, deviceType string, productID *uint) *device.Device {
	t.Helper()
	d, err := device.ReconstructDevice(id, "dev", "SN", deviceType, "online", productID, nil, nil, epoch, epoch, 1)
	require.NoError(t, err)
	return d
}

func mkProduct(t *testing.T, id uint, deviceType string, linked ...uint) *product.Product {
	t.Helper()
	snaps := make([]product.DeviceSnapshot, 0, len(linked))
	for _, l := range linked {
		snaps = append(snaps, product.DeviceSnapshot{ID: l, Name: "snap", DeviceType: device.DeviceType(deviceType), LinkedAt: epoch})
	}
	p, err := product.ReconstructProduct(id, "prod", "CODE", deviceType, "", snaps, epoch, epoch, 1)
	require.NoError(t, err)
	return p
}

func kinds(vs []Violation) []Kind {
	out := make([]Kind, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Kind)
	}
	return out
}

func TestDetect_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		devices  func(t *testing.T) []*device.Device
		products func(t *testing.T) []*product.Product
		want     []Kind
	}{
		{
			name:     "consistent pair",
			devices:  func(t *testing.T) []*device.Device { return []*device.Device{mkDevice(t, 1, "sensor", uintPtr(10))} },
			products: func(t *testing.T) []*product.Product { return []*product.Product{mkProduct(t, 10, "sensor", 1)} },
			want:     nil,
		},
		{
			name:     "listed device with null pointer",
			devices:  func(t *testing.T) []*device.Device { return []*device.Device{mkDevice(t, 1, "sensor", nil)} },
			products: func(t *testing.T) []*product.Product { return []*product.Product{mkProduct(t, 10, "sensor", 1)} },
			want:     []Kind{KindProductDeviceAssociationMismatch},
		},
		{
			name:     "pointer without snapshot",
			devices:  func(t *testing.T) []*device.Device { return []*device.Device{mkDevice(t, 2, "sensor", uintPtr(20))} },
			products: func(t *testing.T) []*product.Product { return []*product.Product{mkProduct(t, 20, "sensor")} },
			want:     []Kind{KindDeviceNotInProductLinkedList},
		},
		{
			name:     "dangling pointer reports no type mismatch",
			devices:  func(t *testing.T) []*device.Device { return []*device.Device{mkDevice(t, 3, "sensor", uintPtr(999))} },
			products: func(t *testing.T) []*product.Product { return nil },
			want:     []Kind{KindDeviceProductNotFound},
		},
		{
			name:     "type mismatch suppresses missing snapshot",
			devices:  func(t *testing.T) []*device.Device { return []*device.Device{mkDevice(t, 4, "sensor", uintPtr(40))} },
			products: func(t *testing.T) []*product.Product { return []*product.Product{mkProduct(t, 40, "camera")} },
			want:     []Kind{KindDeviceProductTypeMismatch},
		},
		{
			name:     "snapshot of deleted device",
			devices:  func(t *testing.T) []*device.Device { return nil },
			products: func(t *testing.T) []*product.Product { return []*product.Product{mkProduct(t, 50, "gateway", 5)} },
			want:     []Kind{KindProductLinkedDeviceNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.devices(t), tt.products(t))
			assert.Equal(t, tt.want, nilIfEmpty(kinds(got)))
		})
	}
}

func nilIfEmpty(k []Kind) []Kind {
	if len(k) == 0 {
		return nil
	}
	return k
}

func TestDetect_OrderAndIdempotence(t *testing.T) {
	// deliberately unsorted input
	devices := []*device.Device{
		mkDevice(t, 7, "sensor", uintPtr(20)), // missing snapshot in 20
		mkDevice(t, 2, "sensor", uintPtr(99)), // product not found
		mkDevice(t, 5, "camera", uintPtr(10)), // type mismatch
		mkDevice(t, 1, "sensor", nil),         // listed by 10 without pointer
	}
	products := []*product.Product{
		mkProduct(t, 20, "sensor"),
		mkProduct(t, 10, "sensor", 8, 1), // 8 does not exist
	}

	first := Detect(devices, products)
	second := Detect(devices, products)
	assert.Equal(t, first, second)

	assert.Equal(t, []Kind{
		KindDeviceProductNotFound,
		KindDeviceProductTypeMismatch,
		KindProductLinkedDeviceNotFound,
		KindProductDeviceAssociationMismatch,
		KindDeviceNotInProductLinkedList,
	}, kinds(first))

	assert.Equal(t, uint(2), first[0].DeviceID)
	assert.Equal(t, uint(5), first[1].DeviceID)
	assert.Equal(t, uint(8), first[2].DeviceID)
	assert.Equal(t, uint(1), first[3].DeviceID)
	assert.Nil(t, first[3].DeviceProductID)
	assert.Equal(t, uint(7), first[4].DeviceID)
	assert.Equal(t, uint(20), first[4].ProductID)
}

func TestDetect_MismatchCarriesActualPointer(t *testing.T) {
	devices := []*device.Device{mkDevice(t, 1, "sensor", uintPtr(11))}
	products := []*product.Product{mkProduct(t, 10, "sensor", 1), mkProduct(t, 11, "sensor", 1)}

	got := Detect(devices, products)
	require.Len(t, got, 1)
	assert.Equal(t, KindProductDeviceAssociationMismatch, got[0].Kind)
	assert.Equal(t, uint(10), got[0].ProductID)
	require.NotNil(t, got[0].DeviceProductID)
	assert.Equal(t, uint(11), *got[0].DeviceProductID)
	assert.Contains(t, got[0].Message, "references product 11")
}
