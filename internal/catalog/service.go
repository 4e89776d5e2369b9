package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/inventra/pos-backend/pkg/db"
	"github.com/inventra/pos-backend/pkg/db/models"
	pkgerrors "github.com/inventra/pos-backend/pkg/errors"
	"github.com/inventra/pos-backend/pkg/pagination"
)

// Service exposes catalog management and code lookup operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error)
	Lookup(ctx context.Context, code string) (*ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name      string
	SKU       string
	Barcode   string
	Category  string
	Brand     *string
	Quantity  int
	SalePrice decimal.Decimal
	CostPrice *decimal.Decimal
	Supplier  *string
	ExpiryAt  *time.Time
	ImageURL  *string
	Tags      []string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name      *string
	SKU       *string
	Barcode   *string
	Category  *string
	Brand     *string
	Quantity  *int
	SalePrice *decimal.Decimal
	CostPrice *decimal.Decimal
	Supplier  *string
	ExpiryAt  *time.Time
	ImageURL  *string
	Tags      *[]string
}

// ProductListResult is one page of catalog rows plus the next cursor.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func validateCreate(input *CreateProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.SKU = strings.TrimSpace(input.SKU)
	input.Barcode = strings.TrimSpace(input.Barcode)
	input.Category = strings.TrimSpace(input.Category)

	switch {
	case input.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case input.SKU == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	case input.Barcode == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	case input.Quantity < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	case input.SalePrice.IsNegative() || input.SalePrice.IsZero():
		return pkgerrors.New(pkgerrors.CodeValidation, "sale_price must be positive")
	}
	return nil
}

// CreateProduct validates and persists a new catalog entry.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:        uuid.New(),
		Name:      input.Name,
		SKU:       input.SKU,
		Barcode:   input.Barcode,
		Category:  input.Category,
		Brand:     input.Brand,
		Quantity:  input.Quantity,
		SalePrice: input.SalePrice,
		CostPrice: input.CostPrice,
		Supplier:  input.Supplier,
		ExpiryAt:  input.ExpiryAt,
		ImageURL:  input.ImageURL,
		Tags:      input.Tags,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku or barcode already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return NewProductDTO(created), nil
}

// UpdateProduct applies the provided partial changes.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, asLookupError(err)
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = trimmed
	}
	if input.SKU != nil {
		trimmed := strings.TrimSpace(*input.SKU)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku cannot be empty")
		}
		product.SKU = trimmed
	}
	if input.Barcode != nil {
		trimmed := strings.TrimSpace(*input.Barcode)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode cannot be empty")
		}
		product.Barcode = trimmed
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Brand != nil {
		product.Brand = input.Brand
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		product.Quantity = *input.Quantity
	}
	if input.SalePrice != nil {
		if input.SalePrice.IsNegative() || input.SalePrice.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale_price must be positive")
		}
		product.SalePrice = *input.SalePrice
	}
	if input.CostPrice != nil {
		product.CostPrice = input.CostPrice
	}
	if input.Supplier != nil {
		product.Supplier = input.Supplier
	}
	if input.ExpiryAt != nil {
		product.ExpiryAt = input.ExpiryAt
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.Tags != nil {
		product.Tags = *input.Tags
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku or barcode already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct removes the catalog entry.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if err := s.repo.Delete(ctx, productID); err != nil {
		return asLookupError(err)
	}
	return nil
}

// GetProduct loads a single catalog entry by id.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, asLookupError(err)
	}
	return NewProductDTO(product), nil
}

// ListProducts returns one cursor page of catalog rows.
func (s *service) ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error) {
	products, err := s.repo.List(ctx, params)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &ProductListResult{}
	if len(products) > limit {
		last := products[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		products = products[:limit]
	}
	result.Products = NewProductDTOs(products)
	return result, nil
}

// Lookup resolves a scanned or typed code through the tiered matcher.
func (s *service) Lookup(ctx context.Context, code string) (*ProductDTO, error) {
	product, err := s.repo.LookupByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lookup product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product), nil
}

func asLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
}
