package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/pos-backend/pkg/db/models"
	"github.com/inventra/pos-backend/pkg/enums"
)

// TransactionItemDTO is one settled line returned to clients.
type TransactionItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Barcode   string          `json:"barcode"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// TransactionDTO is the settlement record returned to clients.
type TransactionDTO struct {
	ID              uuid.UUID            `json:"id"`
	Number          string               `json:"number"`
	CustomerID      uuid.UUID            `json:"customer_id"`
	CustomerName    string               `json:"customer_name"`
	CustomerType    string               `json:"customer_type"`
	PaymentMethod   enums.PaymentMethod  `json:"payment_method"`
	VIP             bool                 `json:"vip"`
	DiscountPercent decimal.Decimal      `json:"discount_percent"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	DiscountAmount  decimal.Decimal      `json:"discount_amount"`
	Total           decimal.Decimal      `json:"total"`
	ItemCount       int                  `json:"item_count"`
	CashierID       uuid.UUID            `json:"cashier_id"`
	CashierName     string               `json:"cashier_name"`
	Items           []TransactionItemDTO `json:"items,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

// NewTransactionDTO builds a DTO from the persisted model.
func NewTransactionDTO(txn *models.Transaction) *TransactionDTO {
	items := make([]TransactionItemDTO, 0, len(txn.Items))
	for _, item := range txn.Items {
		items = append(items, TransactionItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			SKU:       item.SKU,
			Barcode:   item.Barcode,
			Category:  item.Category,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return &TransactionDTO{
		ID:              txn.ID,
		Number:          txn.Number,
		CustomerID:      txn.CustomerID,
		CustomerName:    txn.CustomerName,
		CustomerType:    txn.CustomerType,
		PaymentMethod:   txn.PaymentMethod,
		VIP:             txn.VIP,
		DiscountPercent: txn.DiscountPercent,
		Subtotal:        txn.Subtotal,
		DiscountAmount:  txn.DiscountAmount,
		Total:           txn.Total,
		ItemCount:       txn.ItemCount,
		CashierID:       txn.CashierID,
		CashierName:     txn.CashierName,
		Items:           items,
		CreatedAt:       txn.CreatedAt,
	}
}

// NewTransactionDTOs maps a slice of models in order, without items.
func NewTransactionDTOs(txns []models.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, 0, len(txns))
	for i := range txns {
		dto := NewTransactionDTO(&txns[i])
		dto.Items = nil
		dtos = append(dtos, *dto)
	}
	return dtos
}
