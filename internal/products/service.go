package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Wijeboy/CYD-shop-sub000/internal/media"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/db/models"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	pkgerrors "github.com/Wijeboy/CYD-shop-sub000/pkg/errors"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/pagination"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/types"
)

// Service exposes catalog browsing and admin product management.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*ProductDTO, error)
	List(ctx context.Context, input ListInput) (*ProductList, error)
}

// CreateInput holds a validated product payload.
type CreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    enums.ProductCategory
	IsActive    bool
	Stock       types.ProductStock
}

// UpdateInput carries optional replacements; nil fields are left untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *enums.ProductCategory
	IsActive    *bool
	Stock       *types.ProductStock
}

// ListInput filters the catalog. Admin listings set IncludeInactive.
type ListInput struct {
	Category        *enums.ProductCategory
	Search          string
	IncludeInactive bool
	Page            pagination.Params
}

type productRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q ListQuery) ([]models.Product, int64, error)
}

type imageReleaser interface {
	DeleteAll(ctx context.Context, paths []string) error
}

type service struct {
	repo   productRepository
	images imageReleaser
	logg   *logger.Logger
}

// NewService constructs the catalog service.
func NewService(repo productRepository, images imageReleaser, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if images == nil {
		return nil, fmt.Errorf("image releaser required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, images: images, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ProductDTO, error) {
	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Category:    input.Category,
		IsActive:    input.IsActive,
		Stock:       input.Stock,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}

	s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID.String()), "product.created")
	return NewProductDTO(product), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	previousImages := product.Stock.ImagePaths()

	applyUpdate(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}

	released := media.Released(previousImages, product.Stock.ImagePaths())
	if len(released) > 0 {
		if err := s.images.DeleteAll(ctx, released); err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"product_id": id.String(), "images": released})
			s.logg.Error(logCtx, "product.images.release_failed", err)
		}
	}
	return NewProductDTO(product), nil
}

// Delete removes the product row, then every image it referenced.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}

	logCtx := s.logg.WithField(ctx, "product_id", id.String())
	if err := s.images.DeleteAll(ctx, product.Stock.ImagePaths()); err != nil {
		s.logg.Error(logCtx, "product.images.release_failed", err)
	}
	s.logg.Info(logCtx, "product.deleted")
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !includeInactive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product), nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ProductList, error) {
	page := input.Page.Normalize()
	rows, total, err := s.repo.List(ctx, ListQuery{
		Category:        input.Category,
		Search:          input.Search,
		IncludeInactive: input.IncludeInactive,
		Page:            page,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	out := &ProductList{
		Products:   make([]ProductDTO, 0, len(rows)),
		Pagination: pagination.NewMeta(total, page),
	}
	for i := range rows {
		out.Products = append(out.Products, *NewProductDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func applyUpdate(product *models.Product, input UpdateInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
}

func validateProduct(p *models.Product) error {
	details := map[string]string{}
	if p.Name == "" {
		details["name"] = "is required"
	}
	if problem := types.AmountProblem(p.Price); problem != "" {
		details["price"] = problem
	}
	if !p.Category.IsValid() {
		details["category"] = "is invalid"
	}
	if err := p.Stock.Validate(); err != nil {
		details["stock"] = err.Error()
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(details)
	}
	return nil
}
