package cartsession

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventra/pos-backend/pkg/config"
	"github.com/inventra/pos-backend/pkg/db/models"
	pkgerrors "github.com/inventra/pos-backend/pkg/errors"
)

type memoryStore struct {
	sessions map[string]*Session
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: map[string]*Session{}}
}

func (m *memoryStore) Save(_ context.Context, session *Session, _ time.Duration) error {
	copied := *session
	copied.Lines = append([]Line{}, session.Lines...)
	m.sessions[session.Token] = &copied
	return nil
}

func (m *memoryStore) Load(_ context.Context, token string) (*Session, error) {
	session, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *session
	copied.Lines = append([]Line{}, session.Lines...)
	return &copied, nil
}

func (m *memoryStore) Delete(_ context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

type fakeLookup struct {
	products map[string]*models.Product
}

func (f *fakeLookup) LookupByCode(_ context.Context, raw string) (*models.Product, error) {
	trimmed := strings.TrimSpace(raw)
	if p, ok := f.products[trimmed]; ok {
		return p, nil
	}
	// crude substring fallback mirroring the catalog tiering
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(trimmed)) {
			return p, nil
		}
	}
	return nil, nil
}

func stockedProduct(name, barcode string, qty int, price float64) *models.Product {
	return &models.Product{
		ID:        uuid.New(),
		Name:      name,
		SKU:       "SKU-" + barcode,
		Barcode:   barcode,
		Category:  "grocery",
		Quantity:  qty,
		SalePrice: decimal.NewFromFloat(price),
	}
}

func newScanService(t *testing.T, products ...*models.Product) (Service, *memoryStore) {
	t.Helper()
	lookup := &fakeLookup{products: map[string]*models.Product{}}
	for _, p := range products {
		lookup.products[p.Barcode] = p
	}
	store := newMemoryStore()
	svc, err := NewService(store, lookup, config.CartConfig{
		SessionTTL:     12 * time.Hour,
		DebounceWindow: 2 * time.Second,
	}, nil, nil)
	require.NoError(t, err)
	return svc, store
}

func TestSubmitCodeAddsLineWithQuantityOne(t *testing.T) {
	svc, _ := newScanService(t, stockedProduct("Milk 1L", "12345", 10, 2.50))
	ctx := context.Background()

	session, err := svc.Start(ctx)
	require.NoError(t, err)

	result, err := svc.SubmitCode(ctx, session.Token, "12345", time.Now())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, result.Outcome)
	require.Len(t, result.Session.Lines, 1)
	assert.Equal(t, 1, result.Session.Lines[0].Quantity)
	assert.True(t, result.Session.Lines[0].LineTotal.Equal(decimal.NewFromFloat(2.50)))
}

func TestSubmitCodeRejectsDuplicate(t *testing.T) {
	svc, _ := newScanService(t, stockedProduct("Milk 1L", "12345", 10, 2.50))
	ctx := context.Background()

	session, err := svc.Start(ctx)
	require.NoError(t, err)

	first, err := svc.SubmitCode(ctx, session.Token, "12345", time.Now())
	require.NoError(t, err)
	require.Equal(t, OutcomeAdded, first.Outcome)

	// past the debounce window, so this is a deliberate re-scan
	second, err := svc.SubmitCode(ctx, session.Token, "12345", time.Now().Add(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second.Outcome)
	assert.True(t, second.Warned)
	assert.Len(t, second.Session.Lines, 1, "duplicate scan must not grow the cart")
}

func TestSubmitCodeRejectsOutOfStock(t *testing.T) {
	svc, _ := newScanService(t, stockedProduct("Empty Shelf", "777", 0, 4.00))
	ctx := context.Background()

	session, err := svc.Start(ctx)
	require.NoError(t, err)

	result, err := svc.SubmitCode(ctx, session.Token, "777", time.Now())
	require.NoError(t, err)
	assert.Equal(t, OutcomeOutOfStock, result.Outcome)
	assert.Empty(t, result.Session.Lines)
}

func TestSubmitCodeNotFoundDedupesWarning(t *testing.T) {
	svc, _ := newScanService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx)
	require.NoError(t, err)

	base := time.Now()
	first, err := svc.SubmitCode(ctx, session.Token, "unknown-code", base)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, first.Outcome)
	assert.True(t, first.Warned)

	second, err := svc.SubmitCode(ctx, session.Token, "unknown-code", base.Add(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, second.Outcome)
	assert.False(t, second.Warned, "repeat identical miss must not re-alert")
}

func TestSubmitCodeDebouncesRepeatDecode(t *testing.T) {
	svc, _ := newScanService(t, stockedProduct("Milk 1L", "12345", 10, 2.50))
	ctx := context.Background()

	session, err := svc.Start(ctx)
	require.NoError(t, err)

	base := time.Now()
	first, err := svc.SubmitCode(ctx, session.Token, "12345", base)
	require.NoError(t, err)
	require.Equal(t, OutcomeAdded, first.Outcome)

	repeat, err := svc.SubmitCode(ctx, session.Token, "12345", base.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDebounced, repeat.Outcome)
	assert.Len(t, repeat.Session.Lines, 1)
}

func TestAdjustQuantityClampsAtOne(t *testing.T) {
	svc, _ := newScanService(t, stockedProduct("Milk 1L", "12345", 10, 2.50))
	ctx := context.Background()

	session, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.SubmitCode(ctx, session.Token, "12345", time.Now())
	require.NoError(t, err)

	updated, err := svc.AdjustQuantity(ctx, session.Token, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Lines[0].Quantity)
	assert.True(t, updated.Lines[0].LineTotal.Equal(decimal.NewFromFloat(7.50)))

	updated, err = svc.AdjustQuantity(ctx, session.Token, 0, -10)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Lines[0].Quantity, "quantity floor is 1")
	assert.True(t, updated.Lines[0].LineTotal.Equal(decimal.NewFromFloat(2.50)))
}

func TestRemoveLine(t *testing.T) {
	svc, _ := newScanService(t,
		stockedProduct("Milk 1L", "12345", 10, 2.50),
		stockedProduct("Bread", "67890", 5, 1.75),
	)
	ctx := context.Background()

	session, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.SubmitCode(ctx, session.Token, "12345", time.Now())
	require.NoError(t, err)
	_, err = svc.SubmitCode(ctx, session.Token, "67890", time.Now().Add(3*time.Second))
	require.NoError(t, err)

	updated, err := svc.RemoveLine(ctx, session.Token, 0)
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, "Bread", updated.Lines[0].Name)
}

func TestSubtotalSumsLineTotals(t *testing.T) {
	svc, _ := newScanService(t,
		stockedProduct("Milk 1L", "12345", 10, 2.50),
		stockedProduct("Bread", "67890", 5, 1.75),
	)
	ctx := context.Background()

	session, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.SubmitCode(ctx, session.Token, "12345", time.Now())
	require.NoError(t, err)
	_, err = svc.SubmitCode(ctx, session.Token, "67890", time.Now().Add(3*time.Second))
	require.NoError(t, err)

	current, err := svc.Get(ctx, session.Token)
	require.NoError(t, err)
	assert.True(t, current.Subtotal().Equal(decimal.NewFromFloat(4.25)))
}

func TestOperationsRejectSettledSession(t *testing.T) {
	svc, _ := newScanService(t, stockedProduct("Milk 1L", "12345", 10, 2.50))
	ctx := context.Background()

	session, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.SubmitCode(ctx, session.Token, "12345", time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.MarkSettled(ctx, session.Token))

	_, err = svc.SubmitCode(ctx, session.Token, "12345", time.Now().Add(5*time.Second))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestGetUnknownTokenIsNotFound(t *testing.T) {
	svc, _ := newScanService(t)

	_, err := svc.Get(context.Background(), "missing")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
