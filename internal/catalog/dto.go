package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/pos-backend/pkg/db/models"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	SKU       string           `json:"sku"`
	Barcode   string           `json:"barcode"`
	Category  string           `json:"category"`
	Brand     *string          `json:"brand,omitempty"`
	Quantity  int              `json:"quantity"`
	SalePrice decimal.Decimal  `json:"sale_price"`
	CostPrice *decimal.Decimal `json:"cost_price,omitempty"`
	Supplier  *string          `json:"supplier,omitempty"`
	ExpiryAt  *time.Time       `json:"expiry_at,omitempty"`
	ImageURL  *string          `json:"image_url,omitempty"`
	Tags      []string         `json:"tags"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:        product.ID,
		Name:      product.Name,
		SKU:       product.SKU,
		Barcode:   product.Barcode,
		Category:  product.Category,
		Brand:     product.Brand,
		Quantity:  product.Quantity,
		SalePrice: product.SalePrice,
		CostPrice: product.CostPrice,
		Supplier:  product.Supplier,
		ExpiryAt:  product.ExpiryAt,
		ImageURL:  product.ImageURL,
		Tags:      append([]string{}, product.Tags...),
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}

// NewProductDTOs maps a slice of models in order.
func NewProductDTOs(products []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *NewProductDTO(&products[i]))
	}
	return dtos
}
