package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Wijeboy/CYD-shop-sub000/api/responses"
	"github.com/Wijeboy/CYD-shop-sub000/api/validators"
	"github.com/Wijeboy/CYD-shop-sub000/internal/orders"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/enums"
	pkgerrors "github.com/Wijeboy/CYD-shop-sub000/pkg/errors"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
)

type updateOrderStatusRequest struct {
	Status            *string    `json:"status,omitempty"`
	TrackingNumber    *string    `json:"tracking_number,omitempty" validate:"omitempty,max=100"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

type updateDeliveryFeeRequest struct {
	DeliveryFee *decimal.Decimal `json:"delivery_fee" validate:"required"`
}

func AdminOrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		page, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := parseStatusFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.AdminList(r.Context(), orders.AdminListInput{
			Status: status,
			Search: validators.QueryString(r, "search", maxSearchLen),
			Page:   page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminOrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.AdminGet(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminOrderUpdateStatus sets status, tracking number or ETA. Any allow-listed
// status is accepted regardless of the current one.
func AdminOrderUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := orders.StatusUpdateInput{
			TrackingNumber:    payload.TrackingNumber,
			EstimatedDelivery: payload.EstimatedDelivery,
		}
		if payload.Status != nil {
			status := enums.OrderStatus(strings.ToLower(strings.TrimSpace(*payload.Status)))
			input.Status = &status
		}
		order, err := svc.AdminUpdateStatus(r.Context(), orderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "order updated", order)
	}
}

func AdminOrderUpdateDeliveryFee(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateDeliveryFeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		change, err := svc.AdminUpdateDeliveryFee(r.Context(), orderID, *payload.DeliveryFee)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "delivery fee updated", change)
	}
}

func AdminOrderDelete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.AdminDelete(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "order deleted", map[string]string{"id": orderID.String()})
	}
}

// ProductCounter counts catalog rows, optionally only active ones.
type ProductCounter interface {
	Count(ctx context.Context, activeOnly bool) (int64, error)
}

// CustomerCounter counts customer accounts.
type CustomerCounter interface {
	Count(ctx context.Context) (int64, error)
}

// DashboardStats is the admin dashboard payload.
type DashboardStats struct {
	*orders.Stats
	TotalProducts  int64 `json:"total_products"`
	ActiveProducts int64 `json:"active_products"`
	TotalCustomers int64 `json:"total_customers"`
}

// AdminStats computes order, catalog and customer figures on every call.
func AdminStats(svc orders.Service, catalog ProductCounter, customers CustomerCounter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := DashboardStats{Stats: stats}
		if catalog != nil {
			if out.TotalProducts, err = catalog.Count(r.Context(), false); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products"))
				return
			}
			if out.ActiveProducts, err = catalog.Count(r.Context(), true); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products"))
				return
			}
		}
		if customers != nil {
			if out.TotalCustomers, err = customers.Count(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, out)
	}
}
