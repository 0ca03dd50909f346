package products

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Wijeboy/CYD-shop-sub000/internal/media"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/db/models"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	pkgerrors "github.com/Wijeboy/CYD-shop-sub000/pkg/errors"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/types"
)

type stubRepo struct {
	products map[uuid.UUID]*models.Product
	deleted  []uuid.UUID
}

func newStubRepo(products ...*models.Product) *stubRepo {
	r := &stubRepo{products: map[uuid.UUID]*models.Product{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubRepo) Create(_ context.Context, p *models.Product) error {
	p.ID = uuid.New()
	r.products[p.ID] = p
	return nil
}

func (r *stubRepo) Update(_ context.Context, p *models.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.products, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubRepo) List(context.Context, ListQuery) ([]models.Product, int64, error) {
	var rows []models.Product
	for _, p := range r.products {
		rows = append(rows, *p)
	}
	return rows, int64(len(rows)), nil
}

// countingImages counts each deletion request per path after the media
// service's de-duplication.
type countingImages struct {
	calls map[string]int
}

func (c *countingImages) DeleteAll(_ context.Context, paths []string) error {
	for _, p := range media.Unique(paths) {
		c.calls[p]++
	}
	return nil
}

func variantProduct() *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		Name:     "Hoodie",
		Price:    decimal.NewFromInt(2500),
		Category: enums.ProductCategoryHoodies,
		IsActive: true,
		Stock: types.Variants(
			types.ColorVariant{
				ImageSet:  types.ImageSet{MainImage: "/uploads/black.png", AdditionalImages: []string{"/uploads/black-back.png", "/uploads/shared.png"}},
				ColorName: "Black",
				Sizes:     types.SizeQuantities{enums.SizeM: 1},
			},
			types.ColorVariant{
				ImageSet:  types.ImageSet{MainImage: "/uploads/grey.png", AdditionalImages: []string{"/uploads/shared.png"}},
				ColorName: "Grey",
				Sizes:     types.SizeQuantities{enums.SizeL: 2},
			},
		),
	}
}

func TestDeleteRemovesEveryImageExactlyOnce(t *testing.T) {
	product := variantProduct()
	repo := newStubRepo(product)
	images := &countingImages{calls: map[string]int{}}
	svc, err := NewService(repo, images, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.Delete(context.Background(), product.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []string{"/uploads/black-back.png", "/uploads/black.png", "/uploads/grey.png", "/uploads/shared.png"}
	var got []string
	for p, n := range images.calls {
		if n != 1 {
			t.Fatalf("image %s deleted %d times", p, n)
		}
		got = append(got, p)
	}
	sort.Strings(got)
	if len(got) != len(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v got %v", want, got)
		}
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected product row deleted")
	}
}

func TestDeleteMissingProduct(t *testing.T) {
	svc, _ := NewService(newStubRepo(), &countingImages{calls: map[string]int{}}, nil)
	if err := svc.Delete(context.Background(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateReleasesReplacedImages(t *testing.T) {
	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Tee",
		Price:    decimal.NewFromInt(1000),
		Category: enums.ProductCategoryTShirts,
		IsActive: true,
		Stock: types.Flat(types.FlatStock{
			ImageSet: types.ImageSet{MainImage: "/uploads/old.png", AdditionalImages: []string{"/uploads/keep.png"}},
			Sizes:    types.SizeQuantities{enums.SizeM: 3},
		}),
	}
	images := &countingImages{calls: map[string]int{}}
	svc, _ := NewService(newStubRepo(product), images, nil)

	replacement := types.Flat(types.FlatStock{
		ImageSet: types.ImageSet{MainImage: "/uploads/new.png", AdditionalImages: []string{"/uploads/keep.png"}},
		Sizes:    types.SizeQuantities{enums.SizeM: 3},
	})
	price := decimal.NewFromInt(1200)
	dto, err := svc.Update(context.Background(), product.ID, UpdateInput{Stock: &replacement, Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !dto.Price.Equal(price) {
		t.Fatalf("expected price %s got %s", price, dto.Price)
	}
	if len(images.calls) != 1 || images.calls["/uploads/old.png"] != 1 {
		t.Fatalf("expected only old.png released, got %v", images.calls)
	}
}

func TestCreateValidatesProduct(t *testing.T) {
	svc, _ := NewService(newStubRepo(), &countingImages{calls: map[string]int{}}, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Name:     " ",
		Price:    decimal.NewFromInt(-1),
		Category: enums.ProductCategory("socks"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := typed.Details().(map[string]string)
	for _, key := range []string{"name", "price", "category", "stock"} {
		if _, ok := details[key]; !ok {
			t.Fatalf("expected %s detail, got %v", key, details)
		}
	}
}

func TestCreateRejectsSubCentPrice(t *testing.T) {
	svc, _ := NewService(newStubRepo(), &countingImages{calls: map[string]int{}}, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Name:     "Tee",
		Price:    decimal.RequireFromString("19.999"),
		Category: enums.ProductCategoryTShirts,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := typed.Details().(map[string]string)
	if details["price"] != "must have at most 2 decimal places" {
		t.Fatalf("unexpected price detail %q", details["price"])
	}
}

func TestGetHidesInactiveFromPublic(t *testing.T) {
	product := variantProduct()
	product.IsActive = false
	svc, _ := NewService(newStubRepo(product), &countingImages{calls: map[string]int{}}, nil)

	if _, err := svc.Get(context.Background(), product.ID, false); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for inactive product, got %v", err)
	}
	dto, err := svc.Get(context.Background(), product.ID, true)
	if err != nil || dto.TotalQuantity != 3 {
		t.Fatalf("admin get failed: %+v %v", dto, err)
	}
}
