package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/db/models"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/pagination"
)

// ListQuery narrows an order listing. UserID scopes it to one customer.
type ListQuery struct {
	UserID *uuid.UUID
	Status *enums.OrderStatus
	Search string
	Page   pagination.Params
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, q ListQuery) ([]models.Order, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Order{})
	if q.UserID != nil {
		base = base.Where("user_id = ?", *q.UserID)
	}
	if q.Status != nil {
		base = base.Where("status = ?", *q.Status)
	}
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		like := "%" + escapeLike(term) + "%"
		base = base.Where(
			"(LOWER(shipping_name) LIKE ? ESCAPE '\\' OR LOWER(shipping_email) LIKE ? ESCAPE '\\' OR LOWER(shipping_phone) LIKE ? ESCAPE '\\')",
			like, like, like,
		)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := q.Page.Normalize()
	var rows []models.Order
	err := base.Session(&gorm.Session{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at DESC").
		Order("id").
		Limit(page.Limit).
		Offset(page.Skip).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) UpdateDeliveryFee(ctx context.Context, id uuid.UUID, fee decimal.Decimal) error {
	return r.UpdateFields(ctx, id, map[string]any{
		"delivery_fee": fee,
		"total_amount": gorm.Expr("subtotal + ?", fee),
	})
}

func (r *repository) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status NOT IN ?", id, []enums.OrderStatus{
			enums.OrderStatusShipped,
			enums.OrderStatusDelivered,
			enums.OrderStatusCancelled,
		}).
		Updates(map[string]any{
			"status":     enums.OrderStatusCancelled,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&models.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type statusCount struct {
	Status enums.OrderStatus
	Count  int64
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	var counts []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	var revenue struct {
		Revenue decimal.NullDecimal
	}
	err = r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("SUM(total_amount) AS revenue").
		Where("status = ?", enums.OrderStatusDelivered).
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{Revenue: decimal.Zero}
	if revenue.Revenue.Valid {
		stats.Revenue = revenue.Revenue.Decimal
	}
	for _, row := range counts {
		stats.Total += row.Count
		switch row.Status {
		case enums.OrderStatusPlaced, enums.OrderStatusConfirmed, enums.OrderStatusProcessing:
			stats.Pending += row.Count
		case enums.OrderStatusShipped:
			stats.Shipped += row.Count
		case enums.OrderStatusDelivered:
			stats.Delivered += row.Count
		case enums.OrderStatusCancelled:
			stats.Cancelled += row.Count
		}
	}
	return stats, nil
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
