package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inventra/pos-backend/api/middleware"
	"github.com/inventra/pos-backend/internal/settlement"
	"github.com/inventra/pos-backend/pkg/db/models"
	pkgerrors "github.com/inventra/pos-backend/pkg/errors"
	"github.com/inventra/pos-backend/pkg/pagination"
)

type stubSettlementService struct {
	intake *settlement.Intake
	err    error
}

func (s *stubSettlementService) Settle(_ context.Context, _ string, intake settlement.Intake) (*settlement.TransactionDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.intake = &intake
	return &settlement.TransactionDTO{ID: uuid.New(), Number: "TXN-000001"}, nil
}

func (s *stubSettlementService) GetTransaction(context.Context, uuid.UUID) (*settlement.TransactionDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
}

func (s *stubSettlementService) TransactionRecord(context.Context, uuid.UUID) (*models.Transaction, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
}

func (s *stubSettlementService) ListTransactions(context.Context, pagination.Params) (*settlement.TransactionListResult, error) {
	return &settlement.TransactionListResult{}, nil
}

func checkoutRequest(ctx context.Context, token, body string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("token", token)
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart-sessions/"+token+"/checkout", strings.NewReader(body))
	return req.WithContext(ctx)
}

func TestCheckout(t *testing.T) {
	logg := testLogger()
	token := uuid.NewString()
	operatorID := uuid.New()

	t.Run("requires operator identity", func(t *testing.T) {
		body := `{"customer_name":"Ravi","payment_method":"cash","customer_type":"walkin"}`
		req := checkoutRequest(context.Background(), token, body)
		rec := httptest.NewRecorder()
		Checkout(&stubSettlementService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without operator context, got %d", rec.Code)
		}
	})

	t.Run("rejects missing intake fields", func(t *testing.T) {
		ctx := middleware.WithUser(context.Background(), operatorID.String(), "Asha", "controller")
		req := checkoutRequest(ctx, token, `{"payment_method":"cash"}`)
		rec := httptest.NewRecorder()
		Checkout(&stubSettlementService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for incomplete intake, got %d", rec.Code)
		}
	})

	t.Run("settles and forwards cashier identity", func(t *testing.T) {
		ctx := middleware.WithUser(context.Background(), operatorID.String(), "Asha", "controller")
		body := `{"customer_name":"Ravi","payment_method":"cash","customer_type":"walkin"}`
		req := checkoutRequest(ctx, token, body)

		stub := &stubSettlementService{}
		rec := httptest.NewRecorder()
		Checkout(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.intake == nil {
			t.Fatal("settlement service was not invoked")
		}
		if stub.intake.CashierID != operatorID || stub.intake.CashierName != "Asha" {
			t.Fatalf("cashier identity not forwarded: %+v", stub.intake)
		}
	})

	t.Run("maps settled session conflict", func(t *testing.T) {
		ctx := middleware.WithUser(context.Background(), operatorID.String(), "Asha", "controller")
		body := `{"customer_name":"Ravi","payment_method":"cash","customer_type":"walkin"}`
		req := checkoutRequest(ctx, token, body)

		stub := &stubSettlementService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "cart session already settled")}
		rec := httptest.NewRecorder()
		Checkout(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 for settled session, got %d", rec.Code)
		}
	})
}
