package settlement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventra/pos-backend/pkg/db/models"
	"github.com/inventra/pos-backend/pkg/pagination"
)

// Repository persists settled transactions and hands out sequential
// transaction numbers.
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

// NextNumber atomically advances the settlement counter and returns the
// formatted transaction number. Callers run this inside the settlement
// transaction so a rollback releases the number with everything else.
func (r *Repository) NextNumber(ctx context.Context) (string, error) {
	result := r.db.WithContext(ctx).Model(&models.TransactionCounter{}).
		Where("id = ?", 1).
		UpdateColumn("value", gorm.Expr("value + 1"))
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", gorm.ErrRecordNotFound
	}

	var value int64
	if err := r.db.WithContext(ctx).Model(&models.TransactionCounter{}).
		Where("id = ?", 1).
		Pluck("value", &value).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("TXN-%06d", value), nil
}

// Create inserts the transaction header together with its items.
func (r *Repository) Create(ctx context.Context, txn *models.Transaction) (*models.Transaction, error) {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

// FindByID loads one transaction with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&txn, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// List returns transactions newest first using keyset cursor pagination.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Transaction
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
