package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Wijeboy/CYD-shop-sub000/internal/products"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	pkgerrors "github.com/Wijeboy/CYD-shop-sub000/pkg/errors"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/types"
)

type stubProductService struct {
	created         *products.CreateInput
	updated         *products.UpdateInput
	listInput       *products.ListInput
	includeInactive bool
	deleted         uuid.UUID
	product         *products.ProductDTO
	err             error
}

func (s *stubProductService) Create(_ context.Context, input products.CreateInput) (*products.ProductDTO, error) {
	s.created = &input
	return s.product, s.err
}

func (s *stubProductService) Update(_ context.Context, _ uuid.UUID, input products.UpdateInput) (*products.ProductDTO, error) {
	s.updated = &input
	return s.product, s.err
}

func (s *stubProductService) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = id
	return s.err
}

func (s *stubProductService) Get(_ context.Context, _ uuid.UUID, includeInactive bool) (*products.ProductDTO, error) {
	s.includeInactive = includeInactive
	return s.product, s.err
}

func (s *stubProductService) List(_ context.Context, input products.ListInput) (*products.ProductList, error) {
	s.listInput = &input
	return &products.ProductList{Products: []products.ProductDTO{}}, s.err
}

func TestProductListIsActiveOnly(t *testing.T) {
	svc := &stubProductService{}
	resp := serve(ProductList(svc, nil), newRequest(http.MethodGet, "/api/products?category=Hoodies&search=zip&limit=20", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.listInput == nil || svc.listInput.IncludeInactive {
		t.Fatalf("public listing must hide inactive products")
	}
	if svc.listInput.Category == nil || *svc.listInput.Category != enums.ProductCategoryHoodies {
		t.Fatalf("unexpected category filter %v", svc.listInput.Category)
	}
	if svc.listInput.Search != "zip" || svc.listInput.Page.Limit != 20 {
		t.Fatalf("unexpected list input %+v", svc.listInput)
	}
}

func TestAdminProductListIncludesInactive(t *testing.T) {
	svc := &stubProductService{}
	resp := serve(AdminProductList(svc, nil), newRequest(http.MethodGet, "/api/admin/products", ""))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.listInput.IncludeInactive {
		t.Fatalf("admin listing must include inactive products")
	}
}

func TestProductListRejectsUnknownCategory(t *testing.T) {
	resp := serve(ProductList(&stubProductService{}, nil), newRequest(http.MethodGet, "/api/products?category=socks", ""))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProductGetNotFound(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	req := withURLParam(newRequest(http.MethodGet, "/", ""), "productId", uuid.NewString())
	resp := serve(ProductGet(svc, nil), req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if svc.includeInactive {
		t.Fatalf("public get must not include inactive products")
	}
}

func TestAdminProductCreateDecodesVariantStock(t *testing.T) {
	svc := &stubProductService{product: &products.ProductDTO{ID: uuid.New()}}
	body := `{
		"name": " Classic Hoodie ",
		"price": "2500.00",
		"category": "hoodies",
		"stock": {
			"kind": "variant",
			"color_variants": [
				{"color_name": "Navy", "color_hex": "#000080", "main_image": "/uploads/navy.png", "size_quantities": {"M": 4, "L": 0}}
			]
		}
	}`
	resp := serve(AdminProductCreate(svc, nil), newRequest(http.MethodPost, "/api/admin/products", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	input := svc.created
	if input == nil {
		t.Fatalf("expected create call")
	}
	if input.Name != "Classic Hoodie" || !input.IsActive || input.Category != enums.ProductCategoryHoodies {
		t.Fatalf("unexpected input %+v", input)
	}
	if !input.Price.Equal(decimal.RequireFromString("2500")) {
		t.Fatalf("unexpected price %s", input.Price)
	}
	variants, ok := input.Stock.Shape.(types.VariantStock)
	if !ok || len(variants.Variants) != 1 {
		t.Fatalf("expected one variant, got %#v", input.Stock.Shape)
	}
	if qty, _ := input.Stock.Shape.Available("Navy", enums.SizeM); qty != 4 {
		t.Fatalf("expected 4 in stock, got %d", qty)
	}
}

func TestAdminProductCreateRequiresPriceAndStock(t *testing.T) {
	svc := &stubProductService{}
	resp := serve(AdminProductCreate(svc, nil), newRequest(http.MethodPost, "/api/admin/products", `{"name":"Tee","category":"t-shirts"}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	envelope := decodeError(t, resp)
	for _, field := range []string{"price", "stock"} {
		if _, ok := envelope.Error.Details[field]; !ok {
			t.Fatalf("expected %s detail, got %v", field, envelope.Error.Details)
		}
	}
	if svc.created != nil {
		t.Fatalf("service must not be called")
	}
}

func TestAdminProductUpdatePartial(t *testing.T) {
	svc := &stubProductService{product: &products.ProductDTO{}}
	req := withURLParam(newRequest(http.MethodPut, "/", `{"is_active":false,"category":"Jackets"}`), "productId", uuid.NewString())
	resp := serve(AdminProductUpdate(svc, nil), req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	in := svc.updated
	if in == nil || in.IsActive == nil || *in.IsActive {
		t.Fatalf("expected is_active=false, got %+v", in)
	}
	if in.Category == nil || *in.Category != enums.ProductCategoryJackets {
		t.Fatalf("unexpected category %v", in.Category)
	}
	if in.Name != nil || in.Price != nil || in.Stock != nil {
		t.Fatalf("untouched fields must stay nil")
	}
}

func TestAdminProductDelete(t *testing.T) {
	svc := &stubProductService{}
	id := uuid.New()
	req := withURLParam(newRequest(http.MethodDelete, "/", ""), "productId", id.String())
	if resp := serve(AdminProductDelete(svc, nil), req); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.deleted != id {
		t.Fatalf("unexpected deleted id %s", svc.deleted)
	}
}
