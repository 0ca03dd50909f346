package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Wijeboy/CYD-shop-sub000/api/responses"
	"github.com/Wijeboy/CYD-shop-sub000/api/validators"
	"github.com/Wijeboy/CYD-shop-sub000/internal/products"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	pkgerrors "github.com/Wijeboy/CYD-shop-sub000/pkg/errors"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/types"
)

const maxSearchLen = 100

// ProductList serves the public catalog: active products only.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return listProducts(svc, logg, false)
}

// AdminProductList includes inactive products.
func AdminProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return listProducts(svc, logg, true)
}

func listProducts(svc products.Service, logg *logger.Logger, includeInactive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		page, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := products.ListInput{
			Search:          validators.QueryString(r, "search", maxSearchLen),
			IncludeInactive: includeInactive,
			Page:            page,
		}
		if raw := validators.QueryString(r, "category", 40); raw != "" {
			category, err := enums.ParseProductCategory(strings.ToLower(raw))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category").
					WithDetails(map[string]string{"category": "is invalid"}))
				return
			}
			input.Category = &category
		}
		list, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return getProduct(svc, logg, false)
}

func AdminProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return getProduct(svc, logg, true)
}

func getProduct(svc products.Service, logg *logger.Logger, includeInactive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId", "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id, includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type createProductRequest struct {
	Name        string              `json:"name" validate:"required,max=200"`
	Description string              `json:"description" validate:"max=5000"`
	Price       *decimal.Decimal    `json:"price" validate:"required"`
	Category    string              `json:"category" validate:"required"`
	IsActive    *bool               `json:"is_active,omitempty"`
	Stock       *types.ProductStock `json:"stock" validate:"required"`
}

func (r createProductRequest) toInput() (products.CreateInput, error) {
	category, err := enums.ParseProductCategory(strings.ToLower(strings.TrimSpace(r.Category)))
	if err != nil {
		return products.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category").
			WithDetails(map[string]string{"category": "is invalid"})
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return products.CreateInput{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Price:       *r.Price,
		Category:    category,
		IsActive:    active,
		Stock:       *r.Stock,
	}, nil
}

type updateProductRequest struct {
	Name        *string             `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string             `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal    `json:"price,omitempty"`
	Category    *string             `json:"category,omitempty"`
	IsActive    *bool               `json:"is_active,omitempty"`
	Stock       *types.ProductStock `json:"stock,omitempty"`
}

func (r updateProductRequest) toInput() (products.UpdateInput, error) {
	input := products.UpdateInput{
		Description: r.Description,
		Price:       r.Price,
		IsActive:    r.IsActive,
		Stock:       r.Stock,
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		input.Name = &name
	}
	if r.Category != nil {
		category, err := enums.ParseProductCategory(strings.ToLower(strings.TrimSpace(*r.Category)))
		if err != nil {
			return products.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category").
				WithDetails(map[string]string{"category": "is invalid"})
		}
		input.Category = &category
	}
	return input, nil
}

func AdminProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusCreated, "product created", product)
	}
}

func AdminProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId", "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "product updated", product)
	}
}

func AdminProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId", "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "product deleted", map[string]string{"id": id.String()})
	}
}
