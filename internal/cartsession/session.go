package cartsession

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/pos-backend/pkg/enums"
)

// Line is one scanned product entry. Quantity is always >= 1 and the line
// total is quantity times the unit price captured at scan time.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Barcode   string          `json:"barcode"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Session is a redis-held scan session. The token doubles as the settlement
// idempotency key. Debounce state lives on the session itself so repeat
// decodes of a held-steady camera view are suppressed across requests.
type Session struct {
	Token      string           `json:"token"`
	Status     enums.CartStatus `json:"status"`
	Lines      []Line           `json:"lines"`
	LastCode   string           `json:"last_code,omitempty"`
	LastScanAt time.Time        `json:"last_scan_at,omitempty"`
	LastMiss   string           `json:"last_miss,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// NewSession starts an empty open session with a fresh token.
func NewSession(now time.Time) *Session {
	return &Session{
		Token:     uuid.NewString(),
		Status:    enums.CartStatusOpen,
		Lines:     []Line{},
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// Subtotal sums all line totals.
func (s *Session) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.LineTotal)
	}
	return total
}

// ItemCount sums the quantities across lines.
func (s *Session) ItemCount() int {
	count := 0
	for _, line := range s.Lines {
		count += line.Quantity
	}
	return count
}

// HasBarcode reports whether a line for the exact scannable code exists.
func (s *Session) HasBarcode(barcode string) bool {
	for _, line := range s.Lines {
		if line.Barcode == barcode {
			return true
		}
	}
	return false
}
