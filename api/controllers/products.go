package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/pos-backend/api/responses"
	"github.com/inventra/pos-backend/api/validators"
	"github.com/inventra/pos-backend/internal/catalog"
	pkgerrors "github.com/inventra/pos-backend/pkg/errors"
	"github.com/inventra/pos-backend/pkg/logger"
	"github.com/inventra/pos-backend/pkg/pagination"
)

type createProductPayload struct {
	Name      string           `json:"name" validate:"required"`
	SKU       string           `json:"sku" validate:"required"`
	Barcode   string           `json:"barcode" validate:"required"`
	Category  string           `json:"category" validate:"required"`
	Brand     *string          `json:"brand"`
	Quantity  int              `json:"quantity" validate:"min=0"`
	SalePrice decimal.Decimal  `json:"sale_price"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	Supplier  *string          `json:"supplier"`
	ExpiryAt  *time.Time       `json:"expiry_at"`
	ImageURL  *string          `json:"image_url"`
	Tags      []string         `json:"tags"`
}

type updateProductPayload struct {
	Name      *string          `json:"name"`
	SKU       *string          `json:"sku"`
	Barcode   *string          `json:"barcode"`
	Category  *string          `json:"category"`
	Brand     *string          `json:"brand"`
	Quantity  *int             `json:"quantity"`
	SalePrice *decimal.Decimal `json:"sale_price"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	Supplier  *string          `json:"supplier"`
	ExpiryAt  *time.Time       `json:"expiry_at"`
	ImageURL  *string          `json:"image_url"`
	Tags      *[]string        `json:"tags"`
}

func productIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	return id, nil
}

// CreateProduct registers a new catalog entry.
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload createProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.CreateProduct(ctx, catalog.CreateProductInput{
			Name:      payload.Name,
			SKU:       payload.SKU,
			Barcode:   payload.Barcode,
			Category:  payload.Category,
			Brand:     payload.Brand,
			Quantity:  payload.Quantity,
			SalePrice: payload.SalePrice,
			CostPrice: payload.CostPrice,
			Supplier:  payload.Supplier,
			ExpiryAt:  payload.ExpiryAt,
			ImageURL:  payload.ImageURL,
			Tags:      payload.Tags,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// UpdateProduct applies a partial update to a catalog entry.
func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := productIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.UpdateProduct(ctx, id, catalog.UpdateProductInput{
			Name:      payload.Name,
			SKU:       payload.SKU,
			Barcode:   payload.Barcode,
			Category:  payload.Category,
			Brand:     payload.Brand,
			Quantity:  payload.Quantity,
			SalePrice: payload.SalePrice,
			CostPrice: payload.CostPrice,
			Supplier:  payload.Supplier,
			ExpiryAt:  payload.ExpiryAt,
			ImageURL:  payload.ImageURL,
			Tags:      payload.Tags,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// DeleteProduct removes a catalog entry.
func DeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := productIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteProduct(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetProduct loads a catalog entry by ID.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := productIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.GetProduct(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ListProducts returns a cursor-paginated catalog page.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ListProducts(ctx, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// LookupProduct resolves a scanned or typed code to a single product.
func LookupProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		code := strings.TrimSpace(r.URL.Query().Get("code"))
		if code == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "code query parameter is required"))
			return
		}

		dto, err := svc.Lookup(ctx, code)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
