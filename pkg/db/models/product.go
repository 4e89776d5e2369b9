package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry keyed for scanning by its barcode payload.
type Product struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string           `gorm:"column:name;not null"`
	SKU       string           `gorm:"column:sku;not null;uniqueIndex"`
	Barcode   string           `gorm:"column:barcode;not null;uniqueIndex"`
	Category  string           `gorm:"column:category;not null"`
	Brand     *string          `gorm:"column:brand"`
	Quantity  int              `gorm:"column:quantity;not null;default:0"`
	SalePrice decimal.Decimal  `gorm:"column:sale_price;type:numeric(12,2);not null"`
	CostPrice *decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2)"`
	Supplier  *string          `gorm:"column:supplier"`
	ExpiryAt  *time.Time       `gorm:"column:expiry_at"`
	ImageURL  *string          `gorm:"column:image_url"`
	Tags      pq.StringArray   `gorm:"column:tags;type:text[]"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
