package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
)

// Cart is the single shopping cart owned by a user. Version increments on
// every mutation and guards concurrent writers.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_carts_user"`
	Version   int        `gorm:"column:version;not null;default:0"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Subtotal sums price x quantity over every line.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount sums the quantities of every line.
func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// CartItem is a line in a cart with a denormalized product snapshot.
type CartItem struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID            uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index:idx_cart_items_cart"`
	Position          int             `gorm:"column:position;not null"`
	ProductID         uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name              string          `gorm:"column:name;not null"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Image             string          `gorm:"column:image;not null;default:''"`
	ColorName         string          `gorm:"column:color_name;not null;default:''"`
	ColorHex          string          `gorm:"column:color_hex;not null;default:''"`
	Size              enums.Size      `gorm:"column:size;type:text;not null"`
	Quantity          int             `gorm:"column:quantity;not null"`
	AvailableQuantity int             `gorm:"column:available_quantity;not null"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// LineTotal is price x quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
