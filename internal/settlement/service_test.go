package settlement

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/inventra/pos-backend/internal/cartsession"
	"github.com/inventra/pos-backend/internal/catalog"
	"github.com/inventra/pos-backend/internal/customers"
	"github.com/inventra/pos-backend/pkg/db"
	"github.com/inventra/pos-backend/pkg/db/models"
	"github.com/inventra/pos-backend/pkg/enums"
	pkgerrors "github.com/inventra/pos-backend/pkg/errors"
	"github.com/inventra/pos-backend/pkg/pagination"
)

func setupSettlementTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  barcode TEXT NOT NULL UNIQUE,
  category TEXT NOT NULL,
  brand TEXT,
  quantity INTEGER NOT NULL DEFAULT 0,
  sale_price NUMERIC NOT NULL,
  cost_price NUMERIC,
  supplier TEXT,
  expiry_at DATETIME,
  image_url TEXT,
  tags TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS customer_types (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  discount_percent NUMERIC NOT NULL DEFAULT 0,
  vip INTEGER NOT NULL DEFAULT 0,
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  type_name TEXT NOT NULL,
  vip INTEGER NOT NULL DEFAULT 0,
  visits INTEGER NOT NULL DEFAULT 1,
  total_purchases NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  number TEXT NOT NULL UNIQUE,
  customer_id TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  customer_type TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  vip INTEGER NOT NULL DEFAULT 0,
  discount_percent NUMERIC NOT NULL,
  subtotal NUMERIC NOT NULL,
  discount_amount NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  item_count INTEGER NOT NULL,
  cashier_id TEXT NOT NULL,
  cashier_name TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS transaction_items (
  id TEXT PRIMARY KEY,
  transaction_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
  barcode TEXT NOT NULL,
  category TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  line_total NUMERIC NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS transaction_counters (
  id INTEGER PRIMARY KEY,
  value INTEGER NOT NULL
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	require.NoError(t, conn.Exec("INSERT OR IGNORE INTO transaction_counters (id, value) VALUES (1, 0)").Error)

	t.Cleanup(func() {
		conn.Exec("DELETE FROM transaction_items")
		conn.Exec("DELETE FROM transactions")
		conn.Exec("DELETE FROM customers")
		conn.Exec("DELETE FROM customer_types")
		conn.Exec("DELETE FROM products")
		conn.Exec("UPDATE transaction_counters SET value = 0 WHERE id = 1")
	})

	return conn
}

type fakeCarts struct {
	sessions map[string]*cartsession.Session
}

func (f *fakeCarts) Get(_ context.Context, token string) (*cartsession.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart session not found")
	}
	return session, nil
}

func (f *fakeCarts) MarkSettled(_ context.Context, token string) error {
	if session, ok := f.sessions[token]; ok {
		session.Status = enums.CartStatusSettled
	}
	return nil
}

type flakyInventory struct {
	repo    *catalog.Repository
	failFor uuid.UUID
}

func (f *flakyInventory) DecrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int, error) {
	if id == f.failFor {
		return 0, fmt.Errorf("stock service unavailable")
	}
	return f.repo.DecrementQuantity(ctx, id, qty)
}

func seedProduct(t *testing.T, conn *gorm.DB, name, sku, barcode string, qty int, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        uuid.New(),
		Name:      name,
		SKU:       sku,
		Barcode:   barcode,
		Category:  "grocery",
		Quantity:  qty,
		SalePrice: decimal.RequireFromString(price),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func seedCustomerType(t *testing.T, conn *gorm.DB, name string, discount string, vip bool) *models.CustomerType {
	t.Helper()
	ctype := &models.CustomerType{
		ID:              uuid.New(),
		Name:            name,
		DiscountPercent: decimal.RequireFromString(discount),
		VIP:             vip,
	}
	require.NoError(t, conn.Create(ctype).Error)
	return ctype
}

func cartWith(products ...*models.Product) *cartsession.Session {
	session := cartsession.NewSession(time.Now())
	for _, product := range products {
		session.Lines = append(session.Lines, cartsession.Line{
			ProductID: product.ID,
			Name:      product.Name,
			SKU:       product.SKU,
			Barcode:   product.Barcode,
			Category:  product.Category,
			Quantity:  1,
			UnitPrice: product.SalePrice,
			LineTotal: product.SalePrice,
		})
	}
	return session
}

func newSettlementService(t *testing.T, conn *gorm.DB, carts *fakeCarts, inventory inventoryDecrementer) Service {
	t.Helper()
	if inventory == nil {
		inventory = catalog.NewRepository(conn)
	}
	svc, err := NewService(
		db.NewFromGorm(conn),
		NewRepository(conn),
		customers.NewRepository(conn),
		inventory,
		carts,
		nil,
		nil,
	)
	require.NoError(t, err)
	return svc
}

func regularIntake(name, ctype string) Intake {
	return Intake{
		CustomerName:  name,
		PaymentMethod: "cash",
		CustomerType:  ctype,
		CashierID:     uuid.New(),
		CashierName:   "Asha",
	}
}

func TestSettleAppliesDiscountAndRecordsTransaction(t *testing.T) {
	conn := setupSettlementTestDB(t)
	ctx := context.Background()

	milk := seedProduct(t, conn, "Milk", "SKU-MILK", "111", 5, "60.00")
	bread := seedProduct(t, conn, "Bread", "SKU-BREAD", "222", 3, "40.00")
	seedCustomerType(t, conn, "member", "10.00", false)

	session := cartWith(milk, bread)
	carts := &fakeCarts{sessions: map[string]*cartsession.Session{session.Token: session}}
	svc := newSettlementService(t, conn, carts, nil)

	dto, err := svc.Settle(ctx, session.Token, regularIntake("Ravi", "member"))
	require.NoError(t, err)

	assert.Equal(t, "TXN-000001", dto.Number)
	assert.True(t, dto.Subtotal.Equal(decimal.RequireFromString("100.00")), "subtotal %s", dto.Subtotal)
	assert.True(t, dto.DiscountAmount.Equal(decimal.RequireFromString("10.00")), "discount %s", dto.DiscountAmount)
	assert.True(t, dto.Total.Equal(decimal.RequireFromString("90.00")), "total %s", dto.Total)
	assert.Equal(t, enums.PaymentMethodCash, dto.PaymentMethod)
	assert.Len(t, dto.Items, 2)

	var itemCount int64
	require.NoError(t, conn.Model(&models.TransactionItem{}).
		Where("transaction_id = ?", dto.ID).Count(&itemCount).Error)
	assert.EqualValues(t, 2, itemCount)

	var milkRow models.Product
	require.NoError(t, conn.First(&milkRow, "id = ?", milk.ID).Error)
	assert.Equal(t, 4, milkRow.Quantity)

	var customer models.Customer
	require.NoError(t, conn.First(&customer, "name = ?", "Ravi").Error)
	assert.Equal(t, 1, customer.Visits)
	assert.True(t, customer.TotalPurchases.Equal(decimal.RequireFromString("90.00")))

	assert.Equal(t, enums.CartStatusSettled, session.Status)
}

func TestSettleFreshSessionsGetDistinctNumbers(t *testing.T) {
	conn := setupSettlementTestDB(t)
	ctx := context.Background()

	milk := seedProduct(t, conn, "Milk", "SKU-MILK", "111", 10, "60.00")
	seedCustomerType(t, conn, "walkin", "0.00", false)

	first := cartWith(milk)
	second := cartWith(milk)
	carts := &fakeCarts{sessions: map[string]*cartsession.Session{
		first.Token:  first,
		second.Token: second,
	}}
	svc := newSettlementService(t, conn, carts, nil)

	one, err := svc.Settle(ctx, first.Token, regularIntake("Ravi", "walkin"))
	require.NoError(t, err)
	two, err := svc.Settle(ctx, second.Token, regularIntake("Ravi", "walkin"))
	require.NoError(t, err)

	assert.Equal(t, "TXN-000001", one.Number)
	assert.Equal(t, "TXN-000002", two.Number)

	var count int64
	require.NoError(t, conn.Model(&models.Transaction{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestSettleSameCustomerAccumulatesVisitsAndTotals(t *testing.T) {
	conn := setupSettlementTestDB(t)
	ctx := context.Background()

	milk := seedProduct(t, conn, "Milk", "SKU-MILK", "111", 10, "25.50")
	seedCustomerType(t, conn, "walkin", "0.00", false)

	first := cartWith(milk)
	second := cartWith(milk)
	carts := &fakeCarts{sessions: map[string]*cartsession.Session{
		first.Token:  first,
		second.Token: second,
	}}
	svc := newSettlementService(t, conn, carts, nil)

	_, err := svc.Settle(ctx, first.Token, regularIntake("Meena", "walkin"))
	require.NoError(t, err)
	_, err = svc.Settle(ctx, second.Token, regularIntake("Meena", "walkin"))
	require.NoError(t, err)

	var customer models.Customer
	require.NoError(t, conn.First(&customer, "name = ?", "Meena").Error)
	assert.Equal(t, 2, customer.Visits)
	assert.True(t, customer.TotalPurchases.Equal(decimal.RequireFromString("51.00")),
		"total purchases %s", customer.TotalPurchases)

	var count int64
	require.NoError(t, conn.Model(&models.Customer{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSettleSurvivesPartialDecrementFailure(t *testing.T) {
	conn := setupSettlementTestDB(t)
	ctx := context.Background()

	milk := seedProduct(t, conn, "Milk", "SKU-MILK", "111", 5, "60.00")
	bread := seedProduct(t, conn, "Bread", "SKU-BREAD", "222", 3, "40.00")
	seedCustomerType(t, conn, "walkin", "0.00", false)

	session := cartWith(milk, bread)
	carts := &fakeCarts{sessions: map[string]*cartsession.Session{session.Token: session}}
	inventory := &flakyInventory{repo: catalog.NewRepository(conn), failFor: bread.ID}
	svc := newSettlementService(t, conn, carts, inventory)

	dto, err := svc.Settle(ctx, session.Token, regularIntake("Ravi", "walkin"))
	require.NoError(t, err)

	var txnCount int64
	require.NoError(t, conn.Model(&models.Transaction{}).Count(&txnCount).Error)
	assert.EqualValues(t, 1, txnCount)
	var itemCount int64
	require.NoError(t, conn.Model(&models.TransactionItem{}).
		Where("transaction_id = ?", dto.ID).Count(&itemCount).Error)
	assert.EqualValues(t, 2, itemCount)

	var milkRow, breadRow models.Product
	require.NoError(t, conn.First(&milkRow, "id = ?", milk.ID).Error)
	require.NoError(t, conn.First(&breadRow, "id = ?", bread.ID).Error)
	assert.Equal(t, 4, milkRow.Quantity)
	assert.Equal(t, 3, breadRow.Quantity)

	var customer models.Customer
	require.NoError(t, conn.First(&customer, "name = ?", "Ravi").Error)
	assert.True(t, customer.TotalPurchases.Equal(decimal.RequireFromString("100.00")))
}

func TestSettleRejectsEmptyCart(t *testing.T) {
	conn := setupSettlementTestDB(t)
	ctx := context.Background()

	session := cartsession.NewSession(time.Now())
	carts := &fakeCarts{sessions: map[string]*cartsession.Session{session.Token: session}}
	svc := newSettlementService(t, conn, carts, nil)

	_, err := svc.Settle(ctx, session.Token, regularIntake("Ravi", "walkin"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSettleRejectsSettledSession(t *testing.T) {
	conn := setupSettlementTestDB(t)
	ctx := context.Background()

	milk := seedProduct(t, conn, "Milk", "SKU-MILK", "111", 5, "60.00")
	session := cartWith(milk)
	session.Status = enums.CartStatusSettled
	carts := &fakeCarts{sessions: map[string]*cartsession.Session{session.Token: session}}
	svc := newSettlementService(t, conn, carts, nil)

	_, err := svc.Settle(ctx, session.Token, regularIntake("Ravi", "walkin"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestSettleValidatesIntake(t *testing.T) {
	conn := setupSettlementTestDB(t)
	ctx := context.Background()

	milk := seedProduct(t, conn, "Milk", "SKU-MILK", "111", 5, "60.00")
	seedCustomerType(t, conn, "walkin", "0.00", false)

	cases := []struct {
		name   string
		intake Intake
	}{
		{"blank customer name", Intake{CustomerName: "   ", PaymentMethod: "cash", CustomerType: "walkin"}},
		{"unknown payment method", Intake{CustomerName: "Ravi", PaymentMethod: "barter", CustomerType: "walkin"}},
		{"unknown customer type", Intake{CustomerName: "Ravi", PaymentMethod: "cash", CustomerType: "gold"}},
		{"missing customer type", Intake{CustomerName: "Ravi", PaymentMethod: "cash"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := cartWith(milk)
			carts := &fakeCarts{sessions: map[string]*cartsession.Session{session.Token: session}}
			svc := newSettlementService(t, conn, carts, nil)

			_, err := svc.Settle(ctx, session.Token, tc.intake)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

			var count int64
			require.NoError(t, conn.Model(&models.Transaction{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestListTransactionsPaginates(t *testing.T) {
	conn := setupSettlementTestDB(t)
	ctx := context.Background()

	milk := seedProduct(t, conn, "Milk", "SKU-MILK", "111", 10, "10.00")
	seedCustomerType(t, conn, "walkin", "0.00", false)

	carts := &fakeCarts{sessions: map[string]*cartsession.Session{}}
	for i := 0; i < 3; i++ {
		session := cartWith(milk)
		carts.sessions[session.Token] = session
	}
	svc := newSettlementService(t, conn, carts, nil)
	for token := range carts.sessions {
		_, err := svc.Settle(ctx, token, regularIntake("Ravi", "walkin"))
		require.NoError(t, err)
	}

	page, err := svc.ListTransactions(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Transactions, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.ListTransactions(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, rest.Transactions, 1)
	assert.Empty(t, rest.NextCursor)
}
