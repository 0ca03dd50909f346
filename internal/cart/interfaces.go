package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	// ClaimVersion bumps the cart version when it still equals expected.
	ClaimVersion(ctx context.Context, cartID uuid.UUID, expected int) (bool, error)
	ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	DeleteAtVersion(ctx context.Context, cartID uuid.UUID, version int) (bool, error)
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
