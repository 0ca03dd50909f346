package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/types"
)

// Product is a catalog listing. Stock holds exactly one of the flat or
// variant layouts; StockKind mirrors it for filtering.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name        string                `gorm:"column:name;not null"`
	Description string                `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Category    enums.ProductCategory `gorm:"column:category;type:text;not null;index:idx_products_category_active"`
	IsActive    bool                  `gorm:"column:is_active;not null;index:idx_products_category_active"`
	StockKind   enums.StockKind       `gorm:"column:stock_kind;type:text;not null"`
	Stock       types.ProductStock    `gorm:"column:stock;type:jsonb;not null"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

func (p *Product) BeforeSave(*gorm.DB) error {
	p.StockKind = p.Stock.Kind()
	return nil
}
