// Package association models the device/product association: violation kinds,
// verification results and synchronization failures.
package association

import "fmt"

// Kind is the closed set of referential violations between devices and products.
type Kind int

const (
	// KindDeviceProductNotFound: the device points at a product that does not exist
	KindDeviceProductNotFound Kind = iota + 1
	// KindDeviceProductTypeMismatch: the referenced product accepts another device type
	KindDeviceProductTypeMismatch
	// KindProductLinkedDeviceNotFound: a snapshot references a device that does not exist
	KindProductLinkedDeviceNotFound
	// KindProductDeviceAssociationMismatch: a listed device points elsewhere or nowhere
	KindProductDeviceAssociationMismatch
	// KindDeviceNotInProductLinkedList: the referenced product does not list the device
	KindDeviceNotInProductLinkedList
)

// AllKinds returns every kind in declaration order
func AllKinds() []Kind {
	return []Kind{
		KindDeviceProductNotFound,
		KindDeviceProductTypeMismatch,
		KindProductLinkedDeviceNotFound,
		KindProductDeviceAssociationMismatch,
		KindDeviceNotInProductLinkedList,
	}
}

func (k Kind) String() string {
	switch k {
	case KindDeviceProductNotFound:
		return "DeviceProductNotFound"
	case KindDeviceProductTypeMismatch:
		return "DeviceProductTypeMismatch"
	case KindProductLinkedDeviceNotFound:
		return "ProductLinkedDeviceNotFound"
	case KindProductDeviceAssociationMismatch:
		return "ProductDeviceAssociationMismatch"
	case KindDeviceNotInProductLinkedList:
		return "DeviceNotInProductLinkedList"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses the String form of a kind
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown violation kind: %q", s)
}

// IsValid reports whether k is one of the declared kinds
func (k Kind) IsValid() bool {
	return k >= KindDeviceProductNotFound && k <= KindDeviceNotInProductLinkedList
}

// Repairable reports whether the auto-repair engine has an authoritative side for the kind
func (k Kind) Repairable() bool {
	switch k {
	case KindDeviceNotInProductLinkedList, KindProductDeviceAssociationMismatch:
		return true
	default:
		return false
	}
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("invalid violation kind: %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
