package enums

import "fmt"

// ChangeType tags what kind of catalog edit produced a version.
type ChangeType string

const (
	ChangeTypeInitial         ChangeType = "initial"
	ChangeTypeItemAdded       ChangeType = "item_added"
	ChangeTypeItemUpdated     ChangeType = "item_updated"
	ChangeTypeItemRemoved     ChangeType = "item_removed"
	ChangeTypePriceChanged    ChangeType = "price_changed"
	ChangeTypeCategoryAdded   ChangeType = "category_added"
	ChangeTypeCategoryUpdated ChangeType = "category_updated"
	ChangeTypeCategoryRemoved ChangeType = "category_removed"
	ChangeTypeOfferChanged    ChangeType = "offer_changed"
)

var validChangeTypes = []ChangeType{
	ChangeTypeInitial,
	ChangeTypeItemAdded,
	ChangeTypeItemUpdated,
	ChangeTypeItemRemoved,
	ChangeTypePriceChanged,
	ChangeTypeCategoryAdded,
	ChangeTypeCategoryUpdated,
	ChangeTypeCategoryRemoved,
	ChangeTypeOfferChanged,
}

// String implements fmt.Stringer.
func (c ChangeType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChangeType.
func (c ChangeType) IsValid() bool {
	for _, candidate := range validChangeTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChangeType converts raw input into a ChangeType.
func ParseChangeType(value string) (ChangeType, error) {
	for _, candidate := range validChangeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change type %q", value)
}
