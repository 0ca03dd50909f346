package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/db/models"
)

// Repository defines persistence operations for orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, q ListQuery) ([]models.Order, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	// UpdateDeliveryFee sets the fee and recomputes the total in one statement.
	UpdateDeliveryFee(ctx context.Context, id uuid.UUID, fee decimal.Decimal) error
	// Cancel moves a customer-cancellable order to cancelled. It reports false
	// when the order's status no longer allows it.
	Cancel(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*Stats, error)
}

type cartStore interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	DeleteAtVersion(ctx context.Context, cartID uuid.UUID, version int) (bool, error)
}
