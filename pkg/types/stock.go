package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
)

// MaxAdditionalImages caps the extra images per product or color variant.
const MaxAdditionalImages = 3

var (
	ErrUnknownColor  = errors.New("color does not match any variant")
	ErrInvalidSize   = errors.New("size must be one of S, M, L, XL, XXL")
	ErrStockMissing  = errors.New("product has no stock definition")
	ErrStockConflict = errors.New("product cannot have both flat and variant stock")
)

// SizeQuantities maps a size label to units on hand.
type SizeQuantities map[enums.Size]int

// Validate rejects unknown sizes and negative quantities.
func (q SizeQuantities) Validate() error {
	for size, qty := range q {
		if !size.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidSize, size)
		}
		if qty < 0 {
			return fmt.Errorf("quantity for size %s must be non-negative", size)
		}
	}
	return nil
}

// Total sums every size.
func (q SizeQuantities) Total() int {
	total := 0
	for _, qty := range q {
		total += qty
	}
	return total
}

// ImageSet is one main image plus up to three additional images.
type ImageSet struct {
	MainImage        string   `json:"main_image"`
	AdditionalImages []string `json:"additional_images,omitempty"`
}

// Paths lists every non-empty image path in the set.
func (s ImageSet) Paths() []string {
	var paths []string
	if s.MainImage != "" {
		paths = append(paths, s.MainImage)
	}
	for _, p := range s.AdditionalImages {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (s ImageSet) validate() error {
	if len(s.AdditionalImages) > MaxAdditionalImages {
		return fmt.Errorf("at most %d additional images are allowed", MaxAdditionalImages)
	}
	return nil
}

// StockShape is the tagged union of the two stock layouts. Only FlatStock and
// VariantStock implement it.
type StockShape interface {
	Kind() enums.StockKind
	// Available returns the units on hand for the color/size pair.
	Available(color string, size enums.Size) (int, error)
	// Image picks the display image for the color (or the main image).
	Image(color string) string
	// ColorHex resolves the hex code for a color, empty for flat stock.
	ColorHex(color string) string
	ImagePaths() []string
	Validate() error
	sealed()
}

// FlatStock tracks per-size quantities for a single-color product.
type FlatStock struct {
	ImageSet
	Sizes SizeQuantities `json:"size_quantities"`
}

func (FlatStock) sealed() {}

func (FlatStock) Kind() enums.StockKind { return enums.StockKindFlat }

func (f FlatStock) Available(_ string, size enums.Size) (int, error) {
	if !size.IsValid() {
		return 0, ErrInvalidSize
	}
	return f.Sizes[size], nil
}

func (f FlatStock) Image(string) string { return f.MainImage }

func (FlatStock) ColorHex(string) string { return "" }

func (f FlatStock) ImagePaths() []string { return f.Paths() }

func (f FlatStock) Validate() error {
	if err := f.ImageSet.validate(); err != nil {
		return err
	}
	return f.Sizes.Validate()
}

// ColorVariant is one color option with its own images and size quantities.
type ColorVariant struct {
	ImageSet
	ColorName string         `json:"color_name"`
	ColorHex  string         `json:"color_hex"`
	Sizes     SizeQuantities `json:"size_quantities"`
}

// VariantStock is an ordered list of color variants.
type VariantStock struct {
	Variants []ColorVariant `json:"color_variants"`
}

func (VariantStock) sealed() {}

func (VariantStock) Kind() enums.StockKind { return enums.StockKindVariant }

// Variant finds a variant by case-insensitive color name.
func (v VariantStock) Variant(color string) (ColorVariant, bool) {
	needle := strings.TrimSpace(color)
	for _, variant := range v.Variants {
		if strings.EqualFold(variant.ColorName, needle) {
			return variant, true
		}
	}
	return ColorVariant{}, false
}

func (v VariantStock) Available(color string, size enums.Size) (int, error) {
	variant, ok := v.Variant(color)
	if !ok {
		return 0, ErrUnknownColor
	}
	if !size.IsValid() {
		return 0, ErrInvalidSize
	}
	return variant.Sizes[size], nil
}

func (v VariantStock) Image(color string) string {
	if variant, ok := v.Variant(color); ok {
		return variant.MainImage
	}
	return ""
}

func (v VariantStock) ColorHex(color string) string {
	if variant, ok := v.Variant(color); ok {
		return variant.ColorHex
	}
	return ""
}

func (v VariantStock) ImagePaths() []string {
	var paths []string
	for _, variant := range v.Variants {
		paths = append(paths, variant.Paths()...)
	}
	return paths
}

func (v VariantStock) Validate() error {
	if len(v.Variants) == 0 {
		return errors.New("variant stock needs at least one color variant")
	}
	seen := make(map[string]struct{}, len(v.Variants))
	for i, variant := range v.Variants {
		name := strings.ToLower(strings.TrimSpace(variant.ColorName))
		if name == "" {
			return fmt.Errorf("color_variants[%d]: color name is required", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("color_variants[%d]: duplicate color %q", i, variant.ColorName)
		}
		seen[name] = struct{}{}
		if err := variant.ImageSet.validate(); err != nil {
			return fmt.Errorf("color_variants[%d]: %w", i, err)
		}
		if err := variant.Sizes.Validate(); err != nil {
			return fmt.Errorf("color_variants[%d]: %w", i, err)
		}
	}
	return nil
}

// ProductStock persists a StockShape as a single JSON document carrying a
// "kind" discriminator.
type ProductStock struct {
	Shape StockShape
}

type stockWire struct {
	Kind           enums.StockKind `json:"kind"`
	MainImage      string          `json:"main_image,omitempty"`
	Additional     []string        `json:"additional_images,omitempty"`
	SizeQuantities SizeQuantities  `json:"size_quantities,omitempty"`
	ColorVariants  []ColorVariant  `json:"color_variants,omitempty"`
}

// Flat wraps a FlatStock.
func Flat(stock FlatStock) ProductStock { return ProductStock{Shape: stock} }

// Variants wraps a VariantStock.
func Variants(variants ...ColorVariant) ProductStock {
	return ProductStock{Shape: VariantStock{Variants: variants}}
}

// Kind returns the stock kind, empty when unset.
func (s ProductStock) Kind() enums.StockKind {
	if s.Shape == nil {
		return ""
	}
	return s.Shape.Kind()
}

// Validate checks the wrapped shape.
func (s ProductStock) Validate() error {
	if s.Shape == nil {
		return ErrStockMissing
	}
	return s.Shape.Validate()
}

// TotalQuantity sums every size across the stock.
func (s ProductStock) TotalQuantity() int {
	switch shape := s.Shape.(type) {
	case FlatStock:
		return shape.Sizes.Total()
	case VariantStock:
		total := 0
		for _, variant := range shape.Variants {
			total += variant.Sizes.Total()
		}
		return total
	}
	return 0
}

// ImagePaths lists every image path referenced by the stock.
func (s ProductStock) ImagePaths() []string {
	if s.Shape == nil {
		return nil
	}
	return s.Shape.ImagePaths()
}

func (s ProductStock) MarshalJSON() ([]byte, error) {
	switch shape := s.Shape.(type) {
	case FlatStock:
		return json.Marshal(stockWire{
			Kind:           enums.StockKindFlat,
			MainImage:      shape.MainImage,
			Additional:     shape.AdditionalImages,
			SizeQuantities: shape.Sizes,
		})
	case VariantStock:
		return json.Marshal(stockWire{Kind: enums.StockKindVariant, ColorVariants: shape.Variants})
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("unsupported stock shape %T", s.Shape)
	}
}

func (s *ProductStock) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		s.Shape = nil
		return nil
	}
	var wire stockWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	hasFlat := len(wire.SizeQuantities) > 0 || wire.MainImage != "" || len(wire.Additional) > 0
	hasVariants := len(wire.ColorVariants) > 0

	kind := wire.Kind
	if kind == "" {
		switch {
		case hasFlat && hasVariants:
			return ErrStockConflict
		case hasVariants:
			kind = enums.StockKindVariant
		default:
			kind = enums.StockKindFlat
		}
	}

	switch kind {
	case enums.StockKindFlat:
		if hasVariants {
			return ErrStockConflict
		}
		s.Shape = FlatStock{
			ImageSet: ImageSet{MainImage: wire.MainImage, AdditionalImages: wire.Additional},
			Sizes:    wire.SizeQuantities,
		}
	case enums.StockKindVariant:
		if hasFlat {
			return ErrStockConflict
		}
		s.Shape = VariantStock{Variants: wire.ColorVariants}
	default:
		return fmt.Errorf("unknown stock kind %q", kind)
	}
	return nil
}

// Value implements driver.Valuer.
func (s ProductStock) Value() (driver.Value, error) {
	if s.Shape == nil {
		return nil, nil
	}
	b, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *ProductStock) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		s.Shape = nil
		return nil
	case []byte:
		return s.UnmarshalJSON(v)
	case string:
		return s.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("ProductStock: unsupported Scan type %T", value)
	}
}
