package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/db/models"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/pagination"
)

// ListQuery narrows a catalog listing.
type ListQuery struct {
	Category        *enums.ProductCategory
	Search          string
	IncludeInactive bool
	Page            pagination.Params
}

// Repository persists catalog products.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a product regardless of its active flag.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete hard-deletes the product, returning gorm.ErrRecordNotFound when nothing matched.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns one page of products, newest first, plus the total match count.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Product{})
	if !q.IncludeInactive {
		base = base.Where("is_active = ?", true)
	}
	if q.Category != nil {
		base = base.Where("category = ?", *q.Category)
	}
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		like := "%" + escapeLike(term) + "%"
		base = base.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", like, like)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := q.Page.Normalize()
	var rows []models.Product
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Order("id").
		Limit(page.Limit).
		Offset(page.Skip).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Count returns how many products exist, optionally only active ones.
func (r *Repository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ReferencedImages collects every image path stored on any product.
func (r *Repository) ReferencedImages(ctx context.Context) (map[string]struct{}, error) {
	refs := map[string]struct{}{}
	var batch []models.Product
	err := r.db.WithContext(ctx).
		Select("id", "stock").
		FindInBatches(&batch, 200, func(tx *gorm.DB, _ int) error {
			for _, product := range batch {
				for _, p := range product.Stock.ImagePaths() {
					refs[p] = struct{}{}
				}
			}
			return nil
		}).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
