package receipts

import (
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/inventra/pos-backend/pkg/db/models"
)

const qrImageSize = 256

// qrPayload is the machine-readable lookup record embedded in the QR image.
type qrPayload struct {
	ID      string `json:"id"`
	Number  string `json:"number"`
	Total   string `json:"total"`
	Date    string `json:"date"`
	Payment string `json:"payment"`
}

// QRCode encodes the transaction lookup payload as a PNG image.
func (r *Renderer) QRCode(txn *models.Transaction) ([]byte, error) {
	payload := qrPayload{
		ID:      txn.ID.String(),
		Number:  txn.Number,
		Total:   txn.Total.StringFixed(2),
		Date:    formatDate(txn.CreatedAt),
		Payment: txn.PaymentMethod.String(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal qr payload: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr image: %w", err)
	}
	return png, nil
}
