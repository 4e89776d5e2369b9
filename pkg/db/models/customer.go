package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is identified by exact trimmed name. Visits and purchase totals
// accumulate across checkouts made under the same name.
type Customer struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string          `gorm:"column:name;not null;uniqueIndex"`
	TypeName       string          `gorm:"column:type_name;not null"`
	VIP            bool            `gorm:"column:vip;not null;default:false"`
	Visits         int             `gorm:"column:visits;not null;default:1"`
	TotalPurchases decimal.Decimal `gorm:"column:total_purchases;type:numeric(14,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
