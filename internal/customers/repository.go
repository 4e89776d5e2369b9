package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/inventra/pos-backend/pkg/db/models"
)

// Repository wires together customer and customer type persistence.
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

// CreateType persists a new customer type.
func (r *Repository) CreateType(ctx context.Context, ct *models.CustomerType) (*models.CustomerType, error) {
	if err := r.db.WithContext(ctx).Create(ct).Error; err != nil {
		return nil, err
	}
	return ct, nil
}

// UpdateType saves the full customer type row.
func (r *Repository) UpdateType(ctx context.Context, ct *models.CustomerType) (*models.CustomerType, error) {
	if err := r.db.WithContext(ctx).Save(ct).Error; err != nil {
		return nil, err
	}
	return ct, nil
}

// DeleteType removes a customer type row.
func (r *Repository) DeleteType(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerType{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindTypeByID loads a customer type by primary key.
func (r *Repository) FindTypeByID(ctx context.Context, id uuid.UUID) (*models.CustomerType, error) {
	var ct models.CustomerType
	if err := r.db.WithContext(ctx).First(&ct, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ct, nil
}

// FindTypeByName loads a customer type by its unique name.
func (r *Repository) FindTypeByName(ctx context.Context, name string) (*models.CustomerType, error) {
	var ct models.CustomerType
	if err := r.db.WithContext(ctx).First(&ct, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &ct, nil
}

// ListTypes returns every configured customer type ordered by name.
func (r *Repository) ListTypes(ctx context.Context) ([]models.CustomerType, error) {
	var types []models.CustomerType
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// FindByName loads a customer by exact name; (nil, nil) when absent.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).First(&customer, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Create persists a new customer row.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// IncrementVisits bumps the visit counter by one.
func (r *Repository) IncrementVisits(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).
		UpdateColumn("visits", gorm.Expr("visits + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AccumulatePurchase adds amount to the customer's lifetime purchase total.
func (r *Repository) AccumulatePurchase(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).
		UpdateColumn("total_purchases", gorm.Expr("total_purchases + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListCustomers returns all customers ordered by most recent activity.
func (r *Repository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var rows []models.Customer
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
