package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionItem is one persisted line of a settled checkout, with the
// product fields denormalized at settlement time.
type TransactionItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID uuid.UUID       `gorm:"column:transaction_id;type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name          string          `gorm:"column:name;not null"`
	SKU           string          `gorm:"column:sku;not null"`
	Barcode       string          `gorm:"column:barcode;not null"`
	Category      string          `gorm:"column:category;not null"`
	Quantity      int             `gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal     decimal.Decimal `gorm:"column:line_total;type:numeric(14,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}
