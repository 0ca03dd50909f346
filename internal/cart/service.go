package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/Wijeboy/CYD-shop-sub000/pkg/db"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/db/models"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	pkgerrors "github.com/Wijeboy/CYD-shop-sub000/pkg/errors"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/metrics"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart operations for the authenticated user.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, lineID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

// AddItemInput selects a product, color and size. Color is ignored for flat stock.
type AddItemInput struct {
	ProductID uuid.UUID
	Color     string
	Size      enums.Size
	Quantity  int
}

type service struct {
	repo    CartRepository
	tx      txRunner
	metrics *metrics.ShopMetrics
	logg    *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, shopMetrics *metrics.ShopMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, metrics: shopMetrics, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewCartDTO(cart), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	if input.Quantity < 1 {
		return nil, validationError("quantity", "must be at least 1")
	}
	if !input.Size.IsValid() {
		return nil, validationError("size", types.ErrInvalidSize.Error())
	}

	return s.mutate(ctx, userID, func(repo CartRepository, cart *models.Cart) error {
		product, err := loadProduct(ctx, repo, input.ProductID)
		if err != nil {
			return err
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}

		available, err := product.Stock.Shape.Available(input.Color, input.Size)
		if err != nil {
			return stockLookupError(err)
		}
		color := resolveColor(product, input.Color)

		idx := findLine(cart.Items, product, color, input.Size)
		existing := 0
		if idx >= 0 {
			existing = cart.Items[idx].Quantity
		}
		if existing+input.Quantity > available {
			s.metrics.IncStockRejection("add")
			return pkgerrors.OutOfStock(max(available-existing, 0), input.Quantity)
		}

		if idx < 0 {
			cart.Items = append(cart.Items, models.CartItem{ProductID: product.ID})
			idx = len(cart.Items) - 1
		}
		line := &cart.Items[idx]
		line.Quantity = existing + input.Quantity
		applySnapshot(line, product, color, input.Size, available)
		return nil
	})
}

func (s *service) UpdateItem(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, validationError("quantity", "must be at least 1")
	}

	return s.mutate(ctx, userID, func(repo CartRepository, cart *models.Cart) error {
		idx := lineIndex(cart.Items, lineID)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		line := &cart.Items[idx]

		product, err := loadProduct(ctx, repo, line.ProductID)
		if err != nil {
			return err
		}
		available, err := product.Stock.Shape.Available(line.ColorName, line.Size)
		if err != nil {
			// the variant the line points at was removed from the product
			if errors.Is(err, types.ErrUnknownColor) {
				available = 0
			} else {
				return stockLookupError(err)
			}
		}
		if quantity > available {
			s.metrics.IncStockRejection("update")
			return pkgerrors.OutOfStock(available, quantity)
		}

		line.Quantity = quantity
		applySnapshot(line, product, resolveColor(product, line.ColorName), line.Size, available)
		return nil
	})
}

func (s *service) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) (*CartDTO, error) {
	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if lineIndex(cart.Items, lineID) < 0 {
		return NewCartDTO(cart), nil
	}

	return s.mutate(ctx, userID, func(_ CartRepository, cart *models.Cart) error {
		if idx := lineIndex(cart.Items, lineID); idx >= 0 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		}
		return nil
	})
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	return s.mutate(ctx, userID, func(_ CartRepository, cart *models.Cart) error {
		cart.Items = nil
		return nil
	})
}

// mutate reloads the cart inside a transaction, applies fn, then claims the
// version and rewrites every line. A lost version race surfaces as Conflict.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, fn func(repo CartRepository, cart *models.Cart) error) (*CartDTO, error) {
	if _, err := s.ensureCart(ctx, userID); err != nil {
		return nil, err
	}

	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}

		if err := fn(repo, cart); err != nil {
			return err
		}

		claimed, err := repo.ClaimVersion(ctx, cart.ID, cart.Version)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart")
		}
		if !claimed {
			s.metrics.IncCartConflict()
			return pkgerrors.New(pkgerrors.CodeConflict, "cart modified concurrently; retry")
		}
		if err := repo.ReplaceItems(ctx, cart.ID, cart.Items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart items")
		}
		cart.Version++
		result = cart
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"cart_id": result.ID.String(), "cart_version": result.Version})
	s.logg.Debug(logCtx, "cart.updated")
	return NewCartDTO(result), nil
}

// ensureCart loads the user's cart, creating it on first use.
func (s *service) ensureCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	cart, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	cart = &models.Cart{UserID: userID}
	if err := s.repo.Create(ctx, cart); err != nil {
		if !pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
		}
		// a concurrent request created it first
		cart, err = s.repo.FindByUser(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
	}
	return cart, nil
}

func loadProduct(ctx context.Context, repo CartRepository, productID uuid.UUID) (*models.Product, error) {
	product, err := repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product.Stock.Shape == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product has no stock definition")
	}
	return product, nil
}

func stockLookupError(err error) error {
	switch {
	case errors.Is(err, types.ErrUnknownColor):
		return validationError("color", err.Error())
	case errors.Is(err, types.ErrInvalidSize):
		return validationError("size", err.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve stock")
}

func validationError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s %s", field, msg)).
		WithDetails(map[string]string{field: msg})
}

// resolveColor returns the variant's canonical color name, or empty for flat stock.
func resolveColor(product *models.Product, requested string) string {
	variants, ok := product.Stock.Shape.(types.VariantStock)
	if !ok {
		return ""
	}
	if variant, found := variants.Variant(requested); found {
		return variant.ColorName
	}
	return strings.TrimSpace(requested)
}

func applySnapshot(line *models.CartItem, product *models.Product, color string, size enums.Size, available int) {
	line.Name = product.Name
	line.Price = product.Price
	line.Image = product.Stock.Shape.Image(color)
	line.ColorName = color
	line.ColorHex = product.Stock.Shape.ColorHex(color)
	line.Size = size
	line.AvailableQuantity = available
}

// findLine locates the line for product, color and size. Color is ignored for
// flat-stock products so lines written while the product had variants merge.
func findLine(items []models.CartItem, product *models.Product, color string, size enums.Size) int {
	_, flat := product.Stock.Shape.(types.FlatStock)
	for i, item := range items {
		if item.ProductID != product.ID || item.Size != size {
			continue
		}
		if flat || strings.EqualFold(item.ColorName, color) {
			return i
		}
	}
	return -1
}

func lineIndex(items []models.CartItem, lineID uuid.UUID) int {
	for i, item := range items {
		if item.ID == lineID {
			return i
		}
	}
	return -1
}
