package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inventra/pos-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestProductsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_products_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_sku",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_barcode",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCustomersMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_customers_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS customer_types",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_customer_types_name",
		"CREATE TABLE IF NOT EXISTS customers",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_name",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestTransactionsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_transactions_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS transactions",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_number",
		"CREATE TABLE IF NOT EXISTS transaction_items",
		"ON DELETE CASCADE",
		"CREATE TABLE IF NOT EXISTS transaction_counters",
		"INSERT INTO transaction_counters (id, value) VALUES (1, 0)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}
