package receipts

import (
	"fmt"
	"strings"
	"time"

	"github.com/inventra/pos-backend/pkg/config"
	"github.com/inventra/pos-backend/pkg/db/models"
)

const (
	receiptWidth = 42
	maxItemName  = 22
	dateLayout   = "2006-01-02 15:04:05"
)

// Renderer produces the printable receipt for a settled transaction. Output
// depends only on the transaction row and the configured store header, so
// rendering the same transaction twice yields identical bytes.
type Renderer struct {
	cfg config.ReceiptConfig
}

// NewRenderer builds a renderer with the configured store header.
func NewRenderer(cfg config.ReceiptConfig) *Renderer {
	return &Renderer{cfg: cfg}
}

// Render lays out the fixed-width text receipt.
func (r *Renderer) Render(txn *models.Transaction) []byte {
	var b strings.Builder

	rule := strings.Repeat("=", receiptWidth)
	thin := strings.Repeat("-", receiptWidth)

	b.WriteString(rule + "\n")
	writeCentered(&b, r.cfg.StoreName)
	if r.cfg.Address != "" {
		writeCentered(&b, r.cfg.Address)
	}
	if r.cfg.Phone != "" {
		writeCentered(&b, "Tel: "+r.cfg.Phone)
	}
	b.WriteString(rule + "\n")

	b.WriteString("+" + strings.Repeat("-", receiptWidth-2) + "+\n")
	b.WriteString("|" + centerText(txn.Number, receiptWidth-2) + "|\n")
	b.WriteString("+" + strings.Repeat("-", receiptWidth-2) + "+\n")

	b.WriteString(fmt.Sprintf("Date    : %s\n", txn.CreatedAt.UTC().Format(dateLayout)))
	b.WriteString(fmt.Sprintf("Payment : %s\n", txn.PaymentMethod))
	b.WriteString(fmt.Sprintf("Customer: %s (%s)\n", txn.CustomerName, txn.CustomerType))
	b.WriteString(thin + "\n")

	b.WriteString(fmt.Sprintf("%-22s %4s %13s\n", "ITEM", "QTY", "AMOUNT"))
	for _, item := range txn.Items {
		b.WriteString(fmt.Sprintf("%-22s %4d %13s\n",
			truncateName(item.Name), item.Quantity, item.LineTotal.StringFixed(2)))
	}
	b.WriteString(thin + "\n")

	b.WriteString(fmt.Sprintf("%-22s %18s\n", "Subtotal:", txn.Subtotal.StringFixed(2)))
	if txn.DiscountAmount.IsPositive() {
		label := fmt.Sprintf("Discount (%s%%):", txn.DiscountPercent.StringFixed(0))
		b.WriteString(fmt.Sprintf("%-22s %18s\n", label, "-"+txn.DiscountAmount.StringFixed(2)))
	}
	b.WriteString(fmt.Sprintf("%-22s %18s\n", "TOTAL:", txn.Total.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Operator: %s\n", txn.CashierName))

	b.WriteString(rule + "\n")
	if r.cfg.FooterNote != "" {
		writeCentered(&b, r.cfg.FooterNote)
	}

	return []byte(b.String())
}

func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxItemName {
		return name
	}
	return string(runes[:maxItemName-3]) + "..."
}

func centerText(text string, width int) string {
	runes := []rune(text)
	if len(runes) >= width {
		return string(runes[:width])
	}
	left := (width - len(runes)) / 2
	right := width - len(runes) - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

func writeCentered(b *strings.Builder, text string) {
	b.WriteString(strings.TrimRight(centerText(text, receiptWidth), " ") + "\n")
}

// formatDate keeps the receipt and QR payload on the same date layout.
func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
