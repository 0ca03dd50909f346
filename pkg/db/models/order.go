package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/types"
)

// Order is the immutable record created at checkout. TotalAmount always equals
// Subtotal + DeliveryFee.
type Order struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	UserID            uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index:idx_orders_user_created"`
	ShippingName      string                `gorm:"column:shipping_name;not null"`
	ShippingEmail     string                `gorm:"column:shipping_email;not null"`
	ShippingPhone     string                `gorm:"column:shipping_phone;not null"`
	ShippingAddress   types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json;not null"`
	Items             []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal          decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DeliveryFee       decimal.Decimal       `gorm:"column:delivery_fee;type:numeric(12,2);not null"`
	TotalAmount       decimal.Decimal       `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaymentMethod     enums.PaymentMethod   `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus     enums.PaymentStatus   `gorm:"column:payment_status;type:text;not null"`
	CardLast4         *string               `gorm:"column:card_last4"`
	Status            enums.OrderStatus     `gorm:"column:status;type:text;not null;index:idx_orders_status"`
	TrackingNumber    *string               `gorm:"column:tracking_number"`
	EstimatedDelivery *time.Time            `gorm:"column:estimated_delivery"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime;index:idx_orders_user_created"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// ShippingInfo rebuilds the shipping snapshot.
func (o Order) ShippingInfo() types.ShippingInfo {
	return types.ShippingInfo{
		FullName: o.ShippingName,
		Email:    o.ShippingEmail,
		Phone:    o.ShippingPhone,
		Address:  o.ShippingAddress,
	}
}

// OrderItem is a frozen copy of a cart line.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index:idx_order_items_order"`
	Position  int             `gorm:"column:position;not null"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	ColorName string          `gorm:"column:color_name;not null;default:''"`
	ColorHex  string          `gorm:"column:color_hex;not null;default:''"`
	Size      enums.Size      `gorm:"column:size;type:text;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Image     string          `gorm:"column:image;not null;default:''"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// LineTotal is price x quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
