package cartsession

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/inventra/pos-backend/pkg/config"
	"github.com/inventra/pos-backend/pkg/db/models"
	pkgerrors "github.com/inventra/pos-backend/pkg/errors"
	"github.com/inventra/pos-backend/pkg/enums"
	"github.com/inventra/pos-backend/pkg/logger"
	"github.com/inventra/pos-backend/pkg/metrics"
)

// ScanOutcome labels the result of one code submission.
type ScanOutcome string

const (
	OutcomeAdded      ScanOutcome = "added"
	OutcomeNotFound   ScanOutcome = "not_found"
	OutcomeOutOfStock ScanOutcome = "out_of_stock"
	OutcomeDuplicate  ScanOutcome = "duplicate"
	OutcomeDebounced  ScanOutcome = "debounced"
)

// ScanResult reports one submission outcome plus the session state after it.
// Warned is false when an identical miss repeats, so callers don't stack
// duplicate alerts for the same unknown code.
type ScanResult struct {
	Outcome ScanOutcome `json:"outcome"`
	Warned  bool        `json:"warned"`
	Message string      `json:"message,omitempty"`
	Session *Session    `json:"session"`
}

type productLookup interface {
	LookupByCode(ctx context.Context, raw string) (*models.Product, error)
}

// Service drives the scan session lifecycle.
type Service interface {
	Start(ctx context.Context) (*Session, error)
	Get(ctx context.Context, token string) (*Session, error)
	SubmitCode(ctx context.Context, token, raw string, scannedAt time.Time) (*ScanResult, error)
	AdjustQuantity(ctx context.Context, token string, lineIndex, delta int) (*Session, error)
	RemoveLine(ctx context.Context, token string, lineIndex int) (*Session, error)
	MarkSettled(ctx context.Context, token string) error
}

type service struct {
	store   Store
	lookup  productLookup
	cfg     config.CartConfig
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
	now     func() time.Time
}

// NewService constructs a scan session service.
func NewService(store Store, lookup productLookup, cfg config.CartConfig, logg *logger.Logger, checkoutMetrics *metrics.CheckoutMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if lookup == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	return &service{
		store:   store,
		lookup:  lookup,
		cfg:     cfg,
		logg:    logg,
		metrics: checkoutMetrics,
		now:     time.Now,
	}, nil
}

// Start opens a fresh empty session.
func (s *service) Start(ctx context.Context) (*Session, error) {
	session := NewSession(s.now())
	if err := s.store.Save(ctx, session, s.cfg.SessionTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart session")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithCartToken(ctx, session.Token), "cart.session.started")
	}
	return session, nil
}

// Get loads the session for the token.
func (s *service) Get(ctx context.Context, token string) (*Session, error) {
	return s.load(ctx, token)
}

func (s *service) load(ctx context.Context, token string) (*Session, error) {
	session, err := s.store.Load(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart session")
	}
	return session, nil
}

func (s *service) requireOpen(session *Session) error {
	if session.Status != enums.CartStatusOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart session already settled")
	}
	return nil
}

// SubmitCode resolves a scanned or typed code and appends a cart line when
// the product is found, in stock, and not already present.
func (s *service) SubmitCode(ctx context.Context, token, raw string, scannedAt time.Time) (*ScanResult, error) {
	session, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.requireOpen(session); err != nil {
		return nil, err
	}

	if scannedAt.IsZero() {
		scannedAt = s.now()
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}

	// held-steady camera views re-decode the same payload every frame
	if trimmed == session.LastCode && scannedAt.Sub(session.LastScanAt) < s.cfg.DebounceWindow {
		s.metrics.IncScan(string(OutcomeDebounced))
		return &ScanResult{Outcome: OutcomeDebounced, Session: session}, nil
	}
	session.LastCode = trimmed
	session.LastScanAt = scannedAt

	product, err := s.lookup.LookupByCode(ctx, trimmed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup product")
	}

	result := &ScanResult{Session: session}
	switch {
	case product == nil:
		result.Outcome = OutcomeNotFound
		result.Warned = session.LastMiss != trimmed
		result.Message = "no product matches this code"
		session.LastMiss = trimmed

	case product.Quantity <= 0:
		result.Outcome = OutcomeOutOfStock
		result.Warned = true
		result.Message = fmt.Sprintf("%s is out of stock", product.Name)

	case session.HasBarcode(product.Barcode):
		result.Outcome = OutcomeDuplicate
		result.Warned = true
		result.Message = fmt.Sprintf("%s is already in the cart", product.Name)

	default:
		session.Lines = append(session.Lines, Line{
			ProductID: product.ID,
			Name:      product.Name,
			SKU:       product.SKU,
			Barcode:   product.Barcode,
			Category:  product.Category,
			Quantity:  1,
			UnitPrice: product.SalePrice,
			LineTotal: product.SalePrice,
		})
		result.Outcome = OutcomeAdded
	}

	session.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, session, s.cfg.SessionTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart session")
	}

	s.metrics.IncScan(string(result.Outcome))
	return result, nil
}

// AdjustQuantity applies a delta to a line's quantity, clamping at 1.
func (s *service) AdjustQuantity(ctx context.Context, token string, lineIndex, delta int) (*Session, error) {
	session, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.requireOpen(session); err != nil {
		return nil, err
	}
	if lineIndex < 0 || lineIndex >= len(session.Lines) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line index out of range")
	}

	line := &session.Lines[lineIndex]
	line.Quantity += delta
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))

	session.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, session, s.cfg.SessionTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart session")
	}
	return session, nil
}

// RemoveLine deletes the line unconditionally.
func (s *service) RemoveLine(ctx context.Context, token string, lineIndex int) (*Session, error) {
	session, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.requireOpen(session); err != nil {
		return nil, err
	}
	if lineIndex < 0 || lineIndex >= len(session.Lines) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line index out of range")
	}

	session.Lines = append(session.Lines[:lineIndex], session.Lines[lineIndex+1:]...)
	session.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, session, s.cfg.SessionTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart session")
	}
	return session, nil
}

// MarkSettled flips the session to settled after a successful checkout. The
// session stays in the store until its TTL expires so late reads still see
// the settled state instead of a vanished token.
func (s *service) MarkSettled(ctx context.Context, token string) error {
	session, err := s.load(ctx, token)
	if err != nil {
		return err
	}
	if session.Status == enums.CartStatusSettled {
		return nil
	}
	session.Status = enums.CartStatusSettled
	session.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, session, s.cfg.SessionTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart session")
	}
	return nil
}
