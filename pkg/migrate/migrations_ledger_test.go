package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmarrero/stockpilot-backend/pkg/migrate"
)

func TestInitMigrationEnforcesLedgerConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0)",
		"CREATE UNIQUE INDEX idx_stock_levels_product_location ON stock_levels (product_id, location_id)",
		"CREATE UNIQUE INDEX idx_products_user_sku ON products (user_id, sku)",
		"CREATE INDEX idx_outbox_events_unpublished ON outbox_events (created_at) WHERE published_at IS NULL",
		"DROP TABLE IF EXISTS stock_levels",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
