package enums

import "fmt"

// ProductCategory represents the catalog sections a product can be listed under.
type ProductCategory string

const (
	ProductCategoryTShirts     ProductCategory = "t-shirts"
	ProductCategoryShirts      ProductCategory = "shirts"
	ProductCategoryHoodies     ProductCategory = "hoodies"
	ProductCategoryJackets     ProductCategory = "jackets"
	ProductCategoryPants       ProductCategory = "pants"
	ProductCategoryShorts      ProductCategory = "shorts"
	ProductCategoryDresses     ProductCategory = "dresses"
	ProductCategoryAccessories ProductCategory = "accessories"
)

var validProductCategories = []ProductCategory{
	ProductCategoryTShirts,
	ProductCategoryShirts,
	ProductCategoryHoodies,
	ProductCategoryJackets,
	ProductCategoryPants,
	ProductCategoryShorts,
	ProductCategoryDresses,
	ProductCategoryAccessories,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// Size is a garment size label.
type Size string

const (
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

var validSizes = []Size{SizeS, SizeM, SizeL, SizeXL, SizeXXL}

// Sizes returns the size labels in display order.
func Sizes() []Size {
	out := make([]Size, len(validSizes))
	copy(out, validSizes)
	return out
}

// String implements fmt.Stringer.
func (s Size) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Size.
func (s Size) IsValid() bool {
	for _, candidate := range validSizes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSize converts raw input into a Size.
func ParseSize(value string) (Size, error) {
	for _, candidate := range validSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid size %q", value)
}

// StockKind tags which stock shape a product carries.
type StockKind string

const (
	StockKindFlat    StockKind = "flat"
	StockKindVariant StockKind = "variant"
)

// IsValid reports whether the value is a known StockKind.
func (k StockKind) IsValid() bool {
	return k == StockKindFlat || k == StockKindVariant
}
