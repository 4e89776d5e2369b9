package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/pos-backend/pkg/enums"
)

// Transaction is the immutable settlement record for one completed checkout.
type Transaction struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number          string              `gorm:"column:number;not null;uniqueIndex"`
	CustomerID      uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	CustomerName    string              `gorm:"column:customer_name;not null"`
	CustomerType    string              `gorm:"column:customer_type;not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;not null"`
	VIP             bool                `gorm:"column:vip;not null;default:false"`
	DiscountPercent decimal.Decimal     `gorm:"column:discount_percent;type:numeric(5,2);not null"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric(14,2);not null"`
	DiscountAmount  decimal.Decimal     `gorm:"column:discount_amount;type:numeric(14,2);not null"`
	Total           decimal.Decimal     `gorm:"column:total;type:numeric(14,2);not null"`
	ItemCount       int                 `gorm:"column:item_count;not null"`
	CashierID       uuid.UUID           `gorm:"column:cashier_id;type:uuid;not null"`
	CashierName     string              `gorm:"column:cashier_name;not null"`
	Items           []TransactionItem   `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
}
