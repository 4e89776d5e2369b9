package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/inventra/pos-backend/pkg/db"
	"github.com/inventra/pos-backend/pkg/db/models"
	pkgerrors "github.com/inventra/pos-backend/pkg/errors"
)

// Service exposes customer type administration and customer reads.
type Service interface {
	CreateType(ctx context.Context, input TypeInput) (*TypeDTO, error)
	UpdateType(ctx context.Context, id uuid.UUID, input TypeInput) (*TypeDTO, error)
	DeleteType(ctx context.Context, id uuid.UUID) error
	ListTypes(ctx context.Context) ([]TypeDTO, error)
	ListCustomers(ctx context.Context) ([]CustomerDTO, error)
}

// TypeInput is the payload for creating or replacing a customer type.
type TypeInput struct {
	Name            string
	DiscountPercent decimal.Decimal
	VIP             bool
	Description     *string
}

// TypeDTO is the customer type payload returned to clients.
type TypeDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	VIP             bool            `json:"vip"`
	Description     *string         `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CustomerDTO is the customer payload returned to clients.
type CustomerDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	TypeName       string          `json:"type_name"`
	VIP            bool            `json:"vip"`
	Visits         int             `json:"visits"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	CreatedAt      time.Time       `json:"created_at"`
}

func newTypeDTO(ct *models.CustomerType) *TypeDTO {
	return &TypeDTO{
		ID:              ct.ID,
		Name:            ct.Name,
		DiscountPercent: ct.DiscountPercent,
		VIP:             ct.VIP,
		Description:     ct.Description,
		CreatedAt:       ct.CreatedAt,
	}
}

func newCustomerDTO(c *models.Customer) *CustomerDTO {
	return &CustomerDTO{
		ID:             c.ID,
		Name:           c.Name,
		TypeName:       c.TypeName,
		VIP:            c.VIP,
		Visits:         c.Visits,
		TotalPurchases: c.TotalPurchases,
		CreatedAt:      c.CreatedAt,
	}
}

type service struct {
	repo *Repository
}

// NewService constructs a customers service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{repo: repo}, nil
}

var maxDiscountPercent = decimal.NewFromInt(100)

func validateTypeInput(input *TypeInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.DiscountPercent.IsNegative() || input.DiscountPercent.GreaterThan(maxDiscountPercent) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_percent must be between 0 and 100")
	}
	return nil
}

// CreateType validates and persists a new discount tier.
func (s *service) CreateType(ctx context.Context, input TypeInput) (*TypeDTO, error) {
	if err := validateTypeInput(&input); err != nil {
		return nil, err
	}

	ct := &models.CustomerType{
		ID:              uuid.New(),
		Name:            input.Name,
		DiscountPercent: input.DiscountPercent,
		VIP:             input.VIP,
		Description:     input.Description,
	}
	created, err := s.repo.CreateType(ctx, ct)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "customer type name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert customer type")
	}
	return newTypeDTO(created), nil
}

// UpdateType replaces the mutable fields of a discount tier.
func (s *service) UpdateType(ctx context.Context, id uuid.UUID, input TypeInput) (*TypeDTO, error) {
	if err := validateTypeInput(&input); err != nil {
		return nil, err
	}

	ct, err := s.repo.FindTypeByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "customer type not found")
	}

	ct.Name = input.Name
	ct.DiscountPercent = input.DiscountPercent
	ct.VIP = input.VIP
	ct.Description = input.Description

	updated, err := s.repo.UpdateType(ctx, ct)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "customer type name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update customer type")
	}
	return newTypeDTO(updated), nil
}

// DeleteType removes a discount tier.
func (s *service) DeleteType(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteType(ctx, id); err != nil {
		return asNotFound(err, "customer type not found")
	}
	return nil
}

// ListTypes returns every configured discount tier.
func (s *service) ListTypes(ctx context.Context) ([]TypeDTO, error) {
	types, err := s.repo.ListTypes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customer types")
	}
	dtos := make([]TypeDTO, 0, len(types))
	for i := range types {
		dtos = append(dtos, *newTypeDTO(&types[i]))
	}
	return dtos, nil
}

// ListCustomers returns all known customers.
func (s *service) ListCustomers(ctx context.Context) ([]CustomerDTO, error) {
	rows, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customers")
	}
	dtos := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *newCustomerDTO(&rows[i]))
	}
	return dtos, nil
}

func asNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer type")
}
