package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inventra/pos-backend/api/middleware"
	"github.com/inventra/pos-backend/api/responses"
	"github.com/inventra/pos-backend/api/validators"
	"github.com/inventra/pos-backend/internal/cartsession"
	"github.com/inventra/pos-backend/internal/settlement"
	pkgerrors "github.com/inventra/pos-backend/pkg/errors"
	"github.com/inventra/pos-backend/pkg/logger"
)

type scanPayload struct {
	Code      string     `json:"code" validate:"required"`
	ScannedAt *time.Time `json:"scanned_at"`
}

type adjustLinePayload struct {
	Delta int `json:"delta" validate:"required"`
}

type checkoutPayload struct {
	CustomerName  string `json:"customer_name" validate:"required"`
	PaymentMethod string `json:"payment_method"`
	CustomerType  string `json:"customer_type" validate:"required"`
}

func cartTokenFromRequest(r *http.Request) (string, error) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session token is required")
	}
	return token, nil
}

func lineIndexFromRequest(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid line index")
	}
	return index, nil
}

// StartCartSession opens an empty scan session.
func StartCartSession(svc cartsession.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		session, err := svc.Start(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

// GetCartSession returns the current session state.
func GetCartSession(svc cartsession.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := cartTokenFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		session, err := svc.Get(ctx, token)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// ScanCode submits one scanned or typed code into the session.
func ScanCode(svc cartsession.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := cartTokenFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload scanPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		scannedAt := time.Now()
		if payload.ScannedAt != nil {
			scannedAt = *payload.ScannedAt
		}

		result, err := svc.SubmitCode(ctx, token, payload.Code, scannedAt)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdjustLine changes a cart line's quantity by the signed delta.
func AdjustLine(svc cartsession.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := cartTokenFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		index, err := lineIndexFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload adjustLinePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		session, err := svc.AdjustQuantity(ctx, token, index, payload.Delta)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// RemoveLine deletes one cart line.
func RemoveLine(svc cartsession.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := cartTokenFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		index, err := lineIndexFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		session, err := svc.RemoveLine(ctx, token, index)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// Checkout settles the session's cart into a transaction.
func Checkout(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := cartTokenFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload checkoutPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		cashierID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator identity missing"))
			return
		}

		dto, err := svc.Settle(ctx, token, settlement.Intake{
			CustomerName:  payload.CustomerName,
			PaymentMethod: payload.PaymentMethod,
			CustomerType:  payload.CustomerType,
			CashierID:     cashierID,
			CashierName:   middleware.UserNameFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}
