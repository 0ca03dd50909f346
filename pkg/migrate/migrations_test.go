package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Wijeboy/CYD-shop-sub000/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestUsersMigrationEnforcesUniqueEmail(t *testing.T) {
	assertContains(t, readMigration(t, "create_users"), []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email)",
		"CHECK (role IN ('customer', 'admin'))",
		"DROP TABLE IF EXISTS users",
	})
}

func TestProductsMigrationKeepsStockShapeConsistent(t *testing.T) {
	assertContains(t, readMigration(t, "create_products"), []string{
		"CREATE TABLE IF NOT EXISTS products",
		"price numeric(12,2) NOT NULL",
		"stock jsonb NOT NULL",
		"CHECK (stock ->> 'kind' = stock_kind)",
		"CHECK (price >= 0)",
		"DROP TABLE IF EXISTS products",
	})
}

func TestCartsMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_carts"), []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_user ON carts (user_id)",
		"version integer NOT NULL DEFAULT 0",
		"FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE",
		"CHECK (quantity >= 1)",
		"CHECK (quantity <= available_quantity)",
		"DROP TABLE IF EXISTS cart_items",
	})
}

func TestOrdersMigrationEnforcesTotals(t *testing.T) {
	assertContains(t, readMigration(t, "create_orders"), []string{
		"CHECK (total_amount = subtotal + delivery_fee)",
		"CHECK (delivery_fee >= 0)",
		"CHECK (payment_method IN ('cash-on-delivery', 'card'))",
		"CHECK (status IN ('placed', 'confirmed', 'processing', 'shipped', 'delivered', 'cancelled'))",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS orders",
	})
}

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := migrate.ValidateEmbedded(); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
	entries, err := fs.Glob(migrate.Migrations(), "migrations/*.sql")
	if err != nil || len(entries) < 4 {
		t.Fatalf("expected embedded migrations, got %v (%v)", entries, err)
	}
}

func TestValidateRejectsBadFiles(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"bad name": {"create.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")}},
		"duplicate version": {
			"20250101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
			"20250101000000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		},
		"missing down": {"20250101000000_a.sql": {Data: []byte("-- +goose Up\n")}},
	}
	for name, fsys := range cases {
		if err := migrate.Validate(fsys); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	path, err := migrate.CreateSQLMigration(dir, "Add Order Notes!", now)
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "20250304050607_add_order_notes.sql" {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
	if err := migrate.Validate(os.DirFS(dir)); err != nil {
		t.Fatalf("generated migration invalid: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "add order notes", now); err == nil {
		t.Fatalf("expected duplicate file to be rejected")
	}
}
