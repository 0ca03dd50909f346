package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/db/models"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/pagination"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/types"
)

// OrderDTO is the order representation shared by customer and admin endpoints.
type OrderDTO struct {
	ID                uuid.UUID           `json:"id"`
	UserID            uuid.UUID           `json:"user_id"`
	ShippingInfo      types.ShippingInfo  `json:"shipping_info"`
	Items             []OrderItemDTO      `json:"items"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	DeliveryFee       decimal.Decimal     `json:"delivery_fee"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	PaymentMethod     enums.PaymentMethod `json:"payment_method"`
	PaymentStatus     enums.PaymentStatus `json:"payment_status"`
	CardLast4         *string             `json:"card_last4,omitempty"`
	Status            enums.OrderStatus   `json:"status"`
	TrackingNumber    *string             `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time          `json:"estimated_delivery,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// OrderItemDTO is a frozen order line.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ColorName string          `json:"color_name,omitempty"`
	ColorHex  string          `json:"color_hex,omitempty"`
	Size      enums.Size      `json:"size"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderList is one page of orders.
type OrderList struct {
	Orders     []OrderDTO      `json:"orders"`
	Pagination pagination.Meta `json:"pagination"`
}

// DeliveryFeeChange reports a delivery fee update with the fee it replaced.
type DeliveryFeeChange struct {
	Order       *OrderDTO       `json:"order"`
	PreviousFee decimal.Decimal `json:"previous_fee"`
}

// Stats aggregates order counts by status and revenue from delivered orders.
type Stats struct {
	Pending   int64           `json:"pending_orders"`
	Shipped   int64           `json:"shipped_orders"`
	Delivered int64           `json:"delivered_orders"`
	Cancelled int64           `json:"cancelled_orders"`
	Total     int64           `json:"total_orders"`
	Revenue   decimal.Decimal `json:"total_revenue"`
}

// NewOrderDTO maps an order model to its response shape.
func NewOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:                order.ID,
		UserID:            order.UserID,
		ShippingInfo:      order.ShippingInfo(),
		Items:             make([]OrderItemDTO, 0, len(order.Items)),
		Subtotal:          order.Subtotal,
		DeliveryFee:       order.DeliveryFee,
		TotalAmount:       order.TotalAmount,
		PaymentMethod:     order.PaymentMethod,
		PaymentStatus:     order.PaymentStatus,
		CardLast4:         order.CardLast4,
		Status:            order.Status,
		TrackingNumber:    order.TrackingNumber,
		EstimatedDelivery: order.EstimatedDelivery,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			ColorName: item.ColorName,
			ColorHex:  item.ColorHex,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Image:     item.Image,
			LineTotal: item.LineTotal(),
		})
	}
	return dto
}

func newOrderList(rows []models.Order, total int64, page pagination.Params) *OrderList {
	out := &OrderList{
		Orders:     make([]OrderDTO, 0, len(rows)),
		Pagination: pagination.NewMeta(total, page),
	}
	for i := range rows {
		out.Orders = append(out.Orders, *NewOrderDTO(&rows[i]))
	}
	return out
}
