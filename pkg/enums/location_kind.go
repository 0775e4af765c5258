package enums

import "fmt"

// LocationKind distinguishes warehouses from retail stores.
type LocationKind string

const (
	LocationKindWarehouse LocationKind = "WAREHOUSE"
	LocationKindStore     LocationKind = "STORE"
)

var validLocationKinds = []LocationKind{
	LocationKindWarehouse,
	LocationKindStore,
}

// IsValid reports whether the value matches the canonical location kind enum.
func (k LocationKind) IsValid() bool {
	for _, candidate := range validLocationKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseLocationKind converts the raw string to LocationKind.
func ParseLocationKind(value string) (LocationKind, error) {
	for _, candidate := range validLocationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid location kind %q", value)
}
