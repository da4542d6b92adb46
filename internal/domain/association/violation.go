package association

import (
	"fmt"
	"time"
)

// Violation is one detected divergence between the forward pointer and the reverse list.
// Violations are reported as data and never returned as errors.
type Violation struct {
	Kind        Kind   `json:"kind" yaml:"kind"`
	Message     string `json:"message" yaml:"message"`
	DeviceID    uint   `json:"device_id" yaml:"device_id"`
	DeviceName  string `json:"device_name,omitempty" yaml:"device_name,omitempty"`
	ProductID   uint   `json:"product_id" yaml:"product_id"`
	ProductName string `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	// DeviceProductID is the device's actual forward pointer, set for product-scan kinds
	DeviceProductID *uint `json:"device_product_id,omitempty" yaml:"device_product_id,omitempty"`
}

// Key identifies the violation by kind and pair
func (v Violation) Key() string {
	return fmt.Sprintf("%s:%d:%d", v.Kind, v.DeviceID, v.ProductID)
}

func NewDeviceProductNotFound(deviceID uint, deviceName string, productID uint) Violation {
	return Violation{
		Kind:       KindDeviceProductNotFound,
		Message:    fmt.Sprintf("device %d (%s) references product %d which does not exist", deviceID, deviceName, productID),
		DeviceID:   deviceID,
		DeviceName: deviceName,
		ProductID:  productID,
	}
}

func NewDeviceProductTypeMismatch(deviceID uint, deviceName, deviceType string, productID uint, productName, productType string) Violation {
	return Violation{
		Kind: KindDeviceProductTypeMismatch,
		Message: fmt.Sprintf("device %d (%s) has type %s but product %d (%s) accepts %s",
			deviceID, deviceName, deviceType, productID, productName, productType),
		DeviceID:    deviceID,
		DeviceName:  deviceName,
		ProductID:   productID,
		ProductName: productName,
	}
}

func NewProductLinkedDeviceNotFound(productID uint, productName string, deviceID uint, deviceName string) Violation {
	return Violation{
		Kind:        KindProductLinkedDeviceNotFound,
		Message:     fmt.Sprintf("product %d (%s) lists device %d (%s) which does not exist", productID, productName, deviceID, deviceName),
		DeviceID:    deviceID,
		DeviceName:  deviceName,
		ProductID:   productID,
		ProductName: productName,
	}
}

func NewProductDeviceAssociationMismatch(productID uint, productName string, deviceID uint, deviceName string, deviceProductID *uint) Violation {
	actual := "no product"
	if deviceProductID != nil {
		actual = fmt.Sprintf("product %d", *deviceProductID)
	}
	return Violation{
		Kind: KindProductDeviceAssociationMismatch,
		Message: fmt.Sprintf("product %d (%s) lists device %d (%s) but the device references %s",
			productID, productName, deviceID, deviceName, actual),
		DeviceID:        deviceID,
		DeviceName:      deviceName,
		ProductID:       productID,
		ProductName:     productName,
		DeviceProductID: copyID(deviceProductID),
	}
}

func NewDeviceNotInProductLinkedList(deviceID uint, deviceName string, productID uint, productName string) Violation {
	return Violation{
		Kind:        KindDeviceNotInProductLinkedList,
		Message:     fmt.Sprintf("device %d (%s) references product %d (%s) which does not list it", deviceID, deviceName, productID, productName),
		DeviceID:    deviceID,
		DeviceName:  deviceName,
		ProductID:   productID,
		ProductName: productName,
	}
}

// Report is the result of one full consistency scan
type Report struct {
	Violations   []Violation   `json:"violations" yaml:"violations"`
	DeviceCount  int           `json:"device_count" yaml:"device_count"`
	ProductCount int           `json:"product_count" yaml:"product_count"`
	CheckedAt    time.Time     `json:"checked_at" yaml:"checked_at"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
}

// Clone returns a copy that shares no slices or pointers with r
func (r *Report) Clone() *Report {
	c := *r
	if r.Violations != nil {
		c.Violations = make([]Violation, len(r.Violations))
		for i, v := range r.Violations {
			if v.DeviceProductID != nil {
				id := *v.DeviceProductID
				v.DeviceProductID = &id
			}
			c.Violations[i] = v
		}
	}
	return &c
}

// Consistent reports whether the scan found no violations
func (r *Report) Consistent() bool {
	return len(r.Violations) == 0
}

// CountByKind returns the number of violations per kind, with every kind present
func (r *Report) CountByKind() map[Kind]int {
	counts := make(map[Kind]int, len(AllKinds()))
	for _, k := range AllKinds() {
		counts[k] = 0
	}
	for _, v := range r.Violations {
		counts[v.Kind]++
	}
	return counts
}

// Repairable returns the violations the repair engine can act on, in report order
func (r *Report) Repairable() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Kind.Repairable() {
			out = append(out, v)
		}
	}
	return out
}

func copyID(id *uint) *uint {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
