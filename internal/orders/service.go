package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/db/models"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	pkgerrors "github.com/Wijeboy/CYD-shop-sub000/pkg/errors"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/metrics"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/pagination"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/security"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service covers order placement, customer reads and admin management.
type Service interface {
	Place(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID, status *enums.OrderStatus, page pagination.Params) (*OrderList, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)

	AdminList(ctx context.Context, input AdminListInput) (*OrderList, error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, input StatusUpdateInput) (*OrderDTO, error)
	AdminUpdateDeliveryFee(ctx context.Context, orderID uuid.UUID, fee decimal.Decimal) (*DeliveryFeeChange, error)
	AdminDelete(ctx context.Context, orderID uuid.UUID) error
	Stats(ctx context.Context) (*Stats, error)
}

// PlaceOrderInput is the checkout payload. The line items come from the
// caller's cart; DeliveryFee must be present, zero is allowed.
type PlaceOrderInput struct {
	ShippingInfo  types.ShippingInfo
	PaymentMethod enums.PaymentMethod
	DeliveryFee   *decimal.Decimal
	CardNumber    string
}

// AdminListInput filters the back-office order listing.
type AdminListInput struct {
	Status *enums.OrderStatus
	Search string
	Page   pagination.Params
}

// StatusUpdateInput carries optional status, tracking and ETA changes.
type StatusUpdateInput struct {
	Status            *enums.OrderStatus
	TrackingNumber    *string
	EstimatedDelivery *time.Time
}

type service struct {
	repo    Repository
	carts   cartStore
	tx      txRunner
	metrics *metrics.ShopMetrics
	logg    *logger.Logger
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, carts cartStore, tx txRunner, shopMetrics *metrics.ShopMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, carts: carts, tx: tx, metrics: shopMetrics, logg: logg}, nil
}

func (s *service) Place(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	shipping := input.ShippingInfo.Normalize()

	details := map[string]string{}
	for _, field := range shipping.MissingFields() {
		details["shipping_info."+field] = "is required"
	}
	if input.DeliveryFee == nil {
		details["delivery_fee"] = "is required"
	} else if problem := types.AmountProblem(*input.DeliveryFee); problem != "" {
		details["delivery_fee"] = problem
	}
	var cardLast4 *string
	switch {
	case !input.PaymentMethod.IsValid():
		details["payment_method"] = "must be one of cash-on-delivery, card"
	case input.PaymentMethod == enums.PaymentMethodCard:
		last4, err := security.CardLast4(input.CardNumber)
		if err != nil {
			details["card_number"] = err.Error()
		} else {
			cardLast4 = &last4
		}
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order").WithDetails(details)
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").
			WithDetails(map[string]string{"items": "at least one item is required"})
	}

	order := buildOrder(userID, shipping, cart, *input.DeliveryFee, input.PaymentMethod, cardLast4)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	s.metrics.IncOrderPlaced(string(order.PaymentMethod))
	s.logg.Info(logCtx, "order.placed")

	s.clearCart(logCtx, cart)
	return NewOrderDTO(order), nil
}

// clearCart removes the cart the order was built from. The order stands when
// this fails. A cart written after the snapshot is kept so the newer lines
// stay with the shopper.
func (s *service) clearCart(ctx context.Context, cart *models.Cart) {
	cleared, err := s.carts.DeleteAtVersion(ctx, cart.ID, cart.Version)
	if err != nil {
		s.logg.Error(ctx, "order.cart_clear_failed", err)
		return
	}
	if !cleared {
		s.logg.Warn(s.logg.WithField(ctx, "cart_version", cart.Version), "order.cart_changed_during_checkout")
	}
}

func buildOrder(userID uuid.UUID, shipping types.ShippingInfo, cart *models.Cart, fee decimal.Decimal, method enums.PaymentMethod, cardLast4 *string) *models.Order {
	items := make([]models.OrderItem, 0, len(cart.Items))
	for i, line := range cart.Items {
		items = append(items, models.OrderItem{
			Position:  i,
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			ColorName: line.ColorName,
			ColorHex:  line.ColorHex,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Image:     line.Image,
		})
	}
	subtotal := cart.Subtotal()
	return &models.Order{
		UserID:          userID,
		ShippingName:    shipping.FullName,
		ShippingEmail:   shipping.Email,
		ShippingPhone:   shipping.Phone,
		ShippingAddress: shipping.Address,
		Items:           items,
		Subtotal:        subtotal,
		DeliveryFee:     fee,
		TotalAmount:     subtotal.Add(fee),
		PaymentMethod:   method,
		PaymentStatus:   method.InitialPaymentStatus(),
		CardLast4:       cardLast4,
		Status:          enums.OrderStatusPlaced,
	}
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, status *enums.OrderStatus, page pagination.Params) (*OrderList, error) {
	if status != nil && !status.IsValid() {
		return nil, invalidStatus()
	}
	page = page.Normalize()
	rows, total, err := s.repo.List(ctx, ListQuery{UserID: &userID, Status: status, Page: page})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return newOrderList(rows, total, page), nil
}

func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CustomerCancellable() {
		return nil, cancelRefused(order.Status)
	}

	cancelled, err := s.repo.Cancel(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel order")
	}
	if !cancelled {
		// status moved on between the read and the write
		current, err := s.load(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, cancelRefused(current.Status)
	}

	s.metrics.IncStatusChange(string(enums.OrderStatusCancelled))
	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, orderID.String()), map[string]any{
		"previous_status": order.Status,
	})
	s.logg.Info(logCtx, "order.cancelled")
	return s.reload(ctx, orderID)
}

func (s *service) AdminList(ctx context.Context, input AdminListInput) (*OrderList, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, invalidStatus()
	}
	page := input.Page.Normalize()
	rows, total, err := s.repo.List(ctx, ListQuery{Status: input.Status, Search: input.Search, Page: page})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return newOrderList(rows, total, page), nil
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

// AdminUpdateStatus applies any allow-listed status regardless of the current one.
func (s *service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, input StatusUpdateInput) (*OrderDTO, error) {
	updates := map[string]any{}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, invalidStatus()
		}
		updates["status"] = *input.Status
	}
	if input.TrackingNumber != nil {
		tracking := strings.TrimSpace(*input.TrackingNumber)
		if tracking == "" {
			updates["tracking_number"] = nil
		} else {
			updates["tracking_number"] = tracking
		}
	}
	if input.EstimatedDelivery != nil {
		updates["estimated_delivery"] = input.EstimatedDelivery.UTC()
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update").
			WithDetails(map[string]string{"status": "status, tracking_number or estimated_delivery is required"})
	}

	previous, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, orderID, updates); err != nil {
		return nil, mapRepoError(err, "update order")
	}

	logCtx := s.logg.WithOrderID(ctx, orderID.String())
	if input.Status != nil {
		s.metrics.IncStatusChange(string(*input.Status))
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"previous_status": previous.Status,
			"status":          *input.Status,
		})
	}
	s.logg.Info(logCtx, "order.status_updated")
	return s.reload(ctx, orderID)
}

func (s *service) AdminUpdateDeliveryFee(ctx context.Context, orderID uuid.UUID, fee decimal.Decimal) (*DeliveryFeeChange, error) {
	if problem := types.AmountProblem(fee); problem != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee "+problem).
			WithDetails(map[string]string{"delivery_fee": problem})
	}

	previous, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDeliveryFee(ctx, orderID, fee); err != nil {
		return nil, mapRepoError(err, "update delivery fee")
	}

	logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, orderID.String()), map[string]any{
		"previous_fee": previous.DeliveryFee.String(),
		"delivery_fee": fee.String(),
	})
	s.logg.Info(logCtx, "order.delivery_fee_updated")

	updated, err := s.reload(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &DeliveryFeeChange{Order: updated, PreviousFee: previous.DeliveryFee}, nil
}

func (s *service) AdminDelete(ctx context.Context, orderID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, orderID)
	})
	if err != nil {
		return mapRepoError(err, "delete order")
	}
	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order.deleted")
	return nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "order stats")
	}
	return stats, nil
}

func (s *service) ownedOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return order, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, mapRepoError(err, "load order")
	}
	return order, nil
}

func (s *service) reload(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

func mapRepoError(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

func cancelRefused(status enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("order cannot be cancelled once %s", status)).
		WithDetails(map[string]string{"status": string(status)})
}

func invalidStatus() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
		WithDetails(map[string]string{"status": "must be one of placed, confirmed, processing, shipped, delivered, cancelled"})
}
