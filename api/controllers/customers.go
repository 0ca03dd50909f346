package controllers

import (
	"net/http"

	"github.com/Wijeboy/CYD-shop-sub000/api/responses"
	"github.com/Wijeboy/CYD-shop-sub000/api/validators"
	"github.com/Wijeboy/CYD-shop-sub000/internal/users"
	pkgerrors "github.com/Wijeboy/CYD-shop-sub000/pkg/errors"
	"github.com/Wijeboy/CYD-shop-sub000/pkg/logger"
)

func AdminCustomerList(svc users.CustomerService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}
		page, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), validators.QueryString(r, "search", maxSearchLen), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminCustomerGet(svc users.CustomerService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "userId", "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
