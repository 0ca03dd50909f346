package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/db/models"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
)

// CartDTO is the cart as returned to the owner. Subtotal is derived on every read.
type CartDTO struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Items     []CartItemDTO   `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Version   int             `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CartItemDTO is one cart line with its product snapshot.
type CartItemDTO struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Image             string          `json:"image,omitempty"`
	ColorName         string          `json:"color_name,omitempty"`
	ColorHex          string          `json:"color_hex,omitempty"`
	Size              enums.Size      `json:"size"`
	Quantity          int             `json:"quantity"`
	AvailableQuantity int             `json:"available_quantity"`
	LineTotal         decimal.Decimal `json:"line_total"`
}

// NewCartDTO maps a cart model to its response shape.
func NewCartDTO(cart *models.Cart) *CartDTO {
	dto := &CartDTO{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     make([]CartItemDTO, 0, len(cart.Items)),
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
		Version:   cart.Version,
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		dto.Items = append(dto.Items, CartItemDTO{
			ID:                item.ID,
			ProductID:         item.ProductID,
			Name:              item.Name,
			Price:             item.Price,
			Image:             item.Image,
			ColorName:         item.ColorName,
			ColorHex:          item.ColorHex,
			Size:              item.Size,
			Quantity:          item.Quantity,
			AvailableQuantity: item.AvailableQuantity,
			LineTotal:         item.LineTotal(),
		})
	}
	return dto
}
