package settlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/inventra/pos-backend/internal/cartsession"
	"github.com/inventra/pos-backend/internal/customers"
	"github.com/inventra/pos-backend/pkg/db"
	"github.com/inventra/pos-backend/pkg/db/models"
	"github.com/inventra/pos-backend/pkg/enums"
	pkgerrors "github.com/inventra/pos-backend/pkg/errors"
	"github.com/inventra/pos-backend/pkg/logger"
	"github.com/inventra/pos-backend/pkg/metrics"
	"github.com/inventra/pos-backend/pkg/pagination"
)

var oneHundred = decimal.NewFromInt(100)

// Intake carries the checkout form fields collected after scanning.
type Intake struct {
	CustomerName  string
	PaymentMethod string
	CustomerType  string
	CashierID     uuid.UUID
	CashierName   string
}

// Service turns an open scan session into an immutable transaction.
type Service interface {
	Settle(ctx context.Context, token string, intake Intake) (*TransactionDTO, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionDTO, error)
	TransactionRecord(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ListTransactions(ctx context.Context, params pagination.Params) (*TransactionListResult, error)
}

// TransactionListResult is one page of settlements plus the next cursor.
type TransactionListResult struct {
	Transactions []TransactionDTO `json:"transactions"`
	NextCursor   string           `json:"next_cursor,omitempty"`
}

type cartSessions interface {
	Get(ctx context.Context, token string) (*cartsession.Session, error)
	MarkSettled(ctx context.Context, token string) error
}

type inventoryDecrementer interface {
	DecrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int, error)
}

type service struct {
	dbClient  *db.Client
	txns      *Repository
	customers *customers.Repository
	inventory inventoryDecrementer
	carts     cartSessions
	logg      *logger.Logger
	metrics   *metrics.CheckoutMetrics
	now       func() time.Time
}

// NewService constructs the settlement service.
func NewService(
	dbClient *db.Client,
	txns *Repository,
	customerRepo *customers.Repository,
	inventory inventoryDecrementer,
	carts cartSessions,
	logg *logger.Logger,
	checkoutMetrics *metrics.CheckoutMetrics,
) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if txns == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory decrementer required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart session service required")
	}
	return &service{
		dbClient:  dbClient,
		txns:      txns,
		customers: customerRepo,
		inventory: inventory,
		carts:     carts,
		logg:      logg,
		metrics:   checkoutMetrics,
		now:       time.Now,
	}, nil
}

func (s *service) validateIntake(ctx context.Context, intake *Intake) (*models.CustomerType, enums.PaymentMethod, error) {
	intake.CustomerName = strings.TrimSpace(intake.CustomerName)
	if intake.CustomerName == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	method := enums.DefaultPaymentMethod
	if raw := strings.TrimSpace(intake.PaymentMethod); raw != "" {
		parsed, err := enums.ParsePaymentMethod(raw)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
		}
		method = parsed
	}

	typeName := strings.TrimSpace(intake.CustomerType)
	if typeName == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "customer type is required")
	}
	ctype, err := s.customers.FindTypeByName(ctx, typeName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "unknown customer type")
	}
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer type")
	}
	return ctype, method, nil
}

// Settle finalizes the session's cart into a transaction. The customer
// upsert, number allocation, and transaction insert commit atomically;
// inventory decrements and the purchase total run afterwards best-effort.
func (s *service) Settle(ctx context.Context, token string, intake Intake) (*TransactionDTO, error) {
	started := s.now()

	session, err := s.carts.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Status != enums.CartStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart session already settled")
	}
	if len(session.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot settle an empty cart")
	}

	ctype, method, err := s.validateIntake(ctx, &intake)
	if err != nil {
		return nil, err
	}

	subtotal := session.Subtotal()
	discount := subtotal.Mul(ctype.DiscountPercent).Div(oneHundred).Round(2)
	total := subtotal.Sub(discount)

	var txn *models.Transaction
	var customer *models.Customer
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		custRepo := s.customers.WithTx(tx)
		existing, err := custRepo.FindByName(ctx, intake.CustomerName)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := custRepo.IncrementVisits(ctx, existing.ID); err != nil {
				return err
			}
			customer = existing
		} else {
			created, err := custRepo.Create(ctx, &models.Customer{
				ID:             uuid.New(),
				Name:           intake.CustomerName,
				TypeName:       ctype.Name,
				VIP:            ctype.VIP,
				Visits:         1,
				TotalPurchases: decimal.Zero,
			})
			if err != nil {
				return err
			}
			customer = created
		}

		txnRepo := s.txns.WithTx(tx)
		number, err := txnRepo.NextNumber(ctx)
		if err != nil {
			return err
		}

		txnID := uuid.New()
		items := make([]models.TransactionItem, 0, len(session.Lines))
		for _, line := range session.Lines {
			items = append(items, models.TransactionItem{
				ID:            uuid.New(),
				TransactionID: txnID,
				ProductID:     line.ProductID,
				Name:          line.Name,
				SKU:           line.SKU,
				Barcode:       line.Barcode,
				Category:      line.Category,
				Quantity:      line.Quantity,
				UnitPrice:     line.UnitPrice,
				LineTotal:     line.LineTotal,
			})
		}

		txn = &models.Transaction{
			ID:              txnID,
			Number:          number,
			CustomerID:      customer.ID,
			CustomerName:    customer.Name,
			CustomerType:    ctype.Name,
			PaymentMethod:   method,
			VIP:             ctype.VIP,
			DiscountPercent: ctype.DiscountPercent,
			Subtotal:        subtotal,
			DiscountAmount:  discount,
			Total:           total,
			ItemCount:       session.ItemCount(),
			CashierID:       intake.CashierID,
			CashierName:     intake.CashierName,
			Items:           items,
		}
		_, err = txnRepo.Create(ctx, txn)
		return err
	})
	if err != nil {
		s.metrics.IncSettlement("failure")
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist settlement")
	}

	if err := s.carts.MarkSettled(ctx, token); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithCartToken(ctx, token), "settlement.session.mark_failed", err)
	}

	s.applyStockAndTotals(ctx, session, customer, total)

	s.metrics.IncSettlement("success")
	s.metrics.ObserveSettlementDuration(s.now().Sub(started))
	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"transaction_number": txn.Number,
			"total":              total.StringFixed(2),
		})
		s.logg.Info(lctx, "settlement.completed")
	}
	return NewTransactionDTO(txn), nil
}

// applyStockAndTotals runs the post-commit side effects. Failures here never
// undo the settlement; they are aggregated, logged, and counted.
func (s *service) applyStockAndTotals(ctx context.Context, session *cartsession.Session, customer *models.Customer, total decimal.Decimal) {
	var errs error
	for _, line := range session.Lines {
		if _, err := s.inventory.DecrementQuantity(ctx, line.ProductID, line.Quantity); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("decrement product %s: %w", line.ProductID, err))
			s.metrics.IncDecrementFailure()
		}
	}
	if err := s.customers.AccumulatePurchase(ctx, customer.ID, total); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("accumulate purchases for customer %s: %w", customer.ID, err))
	}
	if errs != nil && s.logg != nil {
		s.logg.Error(ctx, "settlement.post_commit.partial_failure", errs)
	}
}

// GetTransaction loads one settlement with its items.
func (s *service) GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionDTO, error) {
	txn, err := s.TransactionRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewTransactionDTO(txn), nil
}

// TransactionRecord loads the full settled row, used for receipt rendering.
func (s *service) TransactionRecord(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	txn, err := s.txns.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return txn, nil
}

// ListTransactions returns a page of settlements newest first.
func (s *service) ListTransactions(ctx context.Context, params pagination.Params) (*TransactionListResult, error) {
	rows, err := s.txns.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &TransactionListResult{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	result.Transactions = NewTransactionDTOs(rows)
	return result, nil
}
