package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/angelmondragon/shophub/pkg/migrate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestOrdersMigrationContainsSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_number",
		"CREATE INDEX IF NOT EXISTS idx_orders_session_created",
		"DROP TABLE IF EXISTS orders",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
	if err := migrate.ValidateDir(""); err != nil {
		t.Fatalf("validate embedded migrations: %v", err)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Order Notes")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_order_notes.sql") {
		t.Fatalf("unexpected migration path %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration failed validation: %v", err)
	}
}

func TestRunAppliesMigrationsOnSQLite(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrate.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.Run(context.Background(), sqlDB, "sqlite3", "", "up"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if !gdb.Migrator().HasTable("orders") {
		t.Fatal("expected orders table after migration")
	}
}

func TestValidateFSRejectsDownBeforeUp(t *testing.T) {
	fsys := fstest.MapFS{
		"20260101000000_swapped.sql": {Data: []byte("-- +goose Down\nDROP TABLE x;\n-- +goose Up\nCREATE TABLE x (id int);\n")},
	}
	if err := migrate.ValidateFS(fsys, "."); err == nil {
		t.Fatal("expected section order error")
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Add Order Notes":    "add_order_notes",
		"  orders--index!! ": "orders_index",
		"%%%":                "",
	}
	for in, want := range cases {
		if got := migrate.Slug(in); got != want {
			t.Fatalf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
