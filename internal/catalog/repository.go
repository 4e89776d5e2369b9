package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventra/pos-backend/pkg/db/models"
	"github.com/inventra/pos-backend/pkg/pagination"
)

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create persists a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves the full product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes the product row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns a page of products ordered by creation time then id.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Order("created_at ASC, id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at > ?) OR (created_at = ? AND id > ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// digitsOnly strips every non-digit rune; returns "" when nothing remains.
func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LookupByCode resolves a scanned or typed code to a single product.
// Matching is tiered, first hit wins:
//  1. exact barcode match on the digits-only form of the input
//  2. exact barcode match on the whitespace-trimmed raw input
//  3. case-insensitive substring match over sku, name, and barcode
//
// Returns (nil, nil) when no tier matches; "no product" is not an error.
func (r *Repository) LookupByCode(ctx context.Context, raw string) (*models.Product, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	if digits := digitsOnly(trimmed); digits != "" {
		product, err := r.findOneBy(ctx, "barcode = ?", digits)
		if err != nil {
			return nil, err
		}
		if product != nil {
			return product, nil
		}
	}

	product, err := r.findOneBy(ctx, "barcode = ?", trimmed)
	if err != nil {
		return nil, err
	}
	if product != nil {
		return product, nil
	}

	needle := "%" + strings.ToLower(trimmed) + "%"
	return r.findOneBy(ctx, "LOWER(sku) LIKE ? OR LOWER(name) LIKE ? OR LOWER(barcode) LIKE ?", needle, needle, needle)
}

func (r *Repository) findOneBy(ctx context.Context, cond string, args ...any) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where(cond, args...).
		Order("created_at ASC").
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementQuantity atomically subtracts qty from the product's on-hand count,
// clamping at zero. The RETURNING clause hands back the quantity written by
// this statement, so the result cannot reflect a later concurrent update.
func (r *Repository) DecrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int, error) {
	var remaining int
	result := r.db.WithContext(ctx).Raw(
		"UPDATE products SET quantity = CASE WHEN quantity >= ? THEN quantity - ? ELSE 0 END WHERE id = ? RETURNING quantity",
		qty, qty, id,
	).Scan(&remaining)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return remaining, nil
}
