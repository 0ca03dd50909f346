package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/db/models"
)

// Repository persists carts and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUser loads the user's cart with lines in insertion order.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Repository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Omit("Items").Create(cart).Error
}

func (r *Repository) ClaimVersion(ctx context.Context, cartID uuid.UUID, expected int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND version = ?", cartID, expected).
		Updates(map[string]any{
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReplaceItems rewrites every line of the cart, renumbering positions.
func (r *Repository) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].CartID = cartID
		items[i].Position = i
	}
	return tx.Create(&items).Error
}

// FindProduct reads a catalog product on the repository's connection so stock
// checks observe the same transaction as the cart write.
func (r *Repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteAtVersion removes the cart and its lines only while the cart still
// holds version. It reports false when a newer write got there first.
func (r *Repository) DeleteAtVersion(ctx context.Context, cartID uuid.UUID, version int) (bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Where("id = ? AND version = ?", cartID, version).Delete(&models.Cart{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if err := db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return true, err
	}
	return true, nil
}

// DeleteIdleBefore removes carts not modified since cutoff and returns how many went.
func (r *Repository) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.db.WithContext(ctx)
	idle := db.Model(&models.Cart{}).Select("id").Where("updated_at < ?", cutoff)
	if err := db.Where("cart_id IN (?)", idle).Delete(&models.CartItem{}).Error; err != nil {
		return 0, err
	}
	res := db.Where("updated_at < ?", cutoff).Delete(&models.Cart{})
	return res.RowsAffected, res.Error
}
