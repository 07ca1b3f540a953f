package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOrderEngineMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_order_engine.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no order engine migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE orders",
		"CREATE UNIQUE INDEX idx_orders_order_number ON orders (order_number)",
		"CHECK (quantity >= 1)",
		"CHECK (priority BETWEEN 1 AND 3)",
		"CREATE UNIQUE INDEX idx_kots_kot_number ON kots (kot_number)",
		"CREATE UNIQUE INDEX idx_invoices_order_id ON invoices (order_id)",
		"CREATE TABLE counters",
		"DROP TABLE IF EXISTS orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
