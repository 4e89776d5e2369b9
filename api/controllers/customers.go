package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/pos-backend/api/responses"
	"github.com/inventra/pos-backend/api/validators"
	"github.com/inventra/pos-backend/internal/customers"
	pkgerrors "github.com/inventra/pos-backend/pkg/errors"
	"github.com/inventra/pos-backend/pkg/logger"
)

type customerTypePayload struct {
	Name            string          `json:"name" validate:"required"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	VIP             bool            `json:"vip"`
	Description     *string         `json:"description"`
}

func customerTypeIDFromRequest(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer type id")
	}
	return id, nil
}

// CreateCustomerType registers a new discount tier.
func CreateCustomerType(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload customerTypePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.CreateType(ctx, customers.TypeInput{
			Name:            payload.Name,
			DiscountPercent: payload.DiscountPercent,
			VIP:             payload.VIP,
			Description:     payload.Description,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// UpdateCustomerType replaces an existing discount tier.
func UpdateCustomerType(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := customerTypeIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload customerTypePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.UpdateType(ctx, id, customers.TypeInput{
			Name:            payload.Name,
			DiscountPercent: payload.DiscountPercent,
			VIP:             payload.VIP,
			Description:     payload.Description,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// DeleteCustomerType removes a discount tier.
func DeleteCustomerType(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := customerTypeIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteType(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListCustomerTypes returns every discount tier ordered by name.
func ListCustomerTypes(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		types, err := svc.ListTypes(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"customer_types": types})
	}
}

// ListCustomers returns known customers by most recent activity.
func ListCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rows, err := svc.ListCustomers(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"customers": rows})
	}
}
