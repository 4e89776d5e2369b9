package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/pos-backend/internal/catalog"
	pkgerrors "github.com/inventra/pos-backend/pkg/errors"
	"github.com/inventra/pos-backend/pkg/logger"
	"github.com/inventra/pos-backend/pkg/pagination"
)

type stubCatalogService struct {
	lookupDTO *catalog.ProductDTO
	lookupErr error
	created   *catalog.CreateProductInput
}

func (s *stubCatalogService) CreateProduct(_ context.Context, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	s.created = &input
	return &catalog.ProductDTO{ID: uuid.New(), Name: input.Name, SKU: input.SKU, Barcode: input.Barcode}, nil
}

func (s *stubCatalogService) UpdateProduct(context.Context, uuid.UUID, catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *stubCatalogService) DeleteProduct(context.Context, uuid.UUID) error {
	return nil
}

func (s *stubCatalogService) GetProduct(context.Context, uuid.UUID) (*catalog.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubCatalogService) ListProducts(context.Context, pagination.Params) (*catalog.ProductListResult, error) {
	return &catalog.ProductListResult{Products: []catalog.ProductDTO{}}, nil
}

func (s *stubCatalogService) Lookup(context.Context, string) (*catalog.ProductDTO, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.lookupDTO, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func TestLookupProduct(t *testing.T) {
	logg := testLogger()

	t.Run("missing code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/lookup", nil)
		rec := httptest.NewRecorder()
		LookupProduct(&stubCatalogService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 without code, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		stub := &stubCatalogService{lookupErr: pkgerrors.New(pkgerrors.CodeNotFound, "no product matches the scanned code")}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/lookup?code=999", nil)
		rec := httptest.NewRecorder()
		LookupProduct(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for unknown code, got %d", rec.Code)
		}
	})

	t.Run("found", func(t *testing.T) {
		stub := &stubCatalogService{lookupDTO: &catalog.ProductDTO{
			ID:        uuid.New(),
			Name:      "Milk",
			Barcode:   "111",
			SalePrice: decimal.RequireFromString("60.00"),
		}}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/lookup?code=111", nil)
		rec := httptest.NewRecorder()
		LookupProduct(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var envelope struct {
			Success bool               `json:"success"`
			Data    catalog.ProductDTO `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if !envelope.Success || envelope.Data.Name != "Milk" {
			t.Fatalf("unexpected envelope %+v", envelope)
		}
	})
}

func TestCreateProduct(t *testing.T) {
	logg := testLogger()

	t.Run("rejects malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":`))
		rec := httptest.NewRecorder()
		CreateProduct(&stubCatalogService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad json, got %d", rec.Code)
		}
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":"Milk"}`))
		rec := httptest.NewRecorder()
		CreateProduct(&stubCatalogService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for missing fields, got %d", rec.Code)
		}
	})

	t.Run("creates product", func(t *testing.T) {
		body := `{"name":"Milk","sku":"SKU-MILK","barcode":"111","category":"dairy","quantity":5,"sale_price":"60.00"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
		stub := &stubCatalogService{}
		rec := httptest.NewRecorder()
		CreateProduct(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.created == nil || stub.created.SKU != "SKU-MILK" {
			t.Fatalf("service did not receive the payload: %+v", stub.created)
		}
	})
}

func TestGetProductRejectsBadID(t *testing.T) {
	logg := testLogger()

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "not-a-uuid")
	ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/not-a-uuid", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	GetProduct(&stubCatalogService{}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
	}
}
