package db

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/shophub/pkg/config"
	"github.com/angelmondragon/shophub/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:db_client?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestNewSQLite(t *testing.T) {
	cfg := config.DBConfig{Driver: config.DBDriverSQLite, SQLitePath: "file::memory:?cache=shared", MaxOpenConns: 1}
	client, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestDialectorRequiresDSN(t *testing.T) {
	if _, err := dialectorFor(config.DBConfig{Driver: config.DBDriverPostgres}); err == nil {
		t.Fatal("expected missing DSN to fail")
	}
	if _, err := dialectorFor(config.DBConfig{Driver: config.DBDriverSQLite}); err == nil {
		t.Fatal("expected missing sqlite path to fail")
	}
}

func TestQueryLoggerReportsSlowAndFailedQueries(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	ql := newQueryLogger(logg, time.Millisecond)
	ctx := context.Background()
	stmt := func() (string, int64) { return "SELECT * FROM orders", 3 }

	ql.Trace(ctx, time.Now(), stmt, nil)
	if buf.Len() != 0 {
		t.Fatalf("fast successful query should not log: %s", buf.String())
	}

	ql.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)
	if !strings.Contains(buf.String(), "db.query.slow") || !strings.Contains(buf.String(), "SELECT * FROM orders") {
		t.Fatalf("expected slow query entry, got %s", buf.String())
	}

	buf.Reset()
	ql.Trace(ctx, time.Now(), stmt, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("record not found should not log: %s", buf.String())
	}
	ql.Trace(ctx, time.Now(), stmt, errors.New("syntax error"))
	if !strings.Contains(buf.String(), "db.query.failed") {
		t.Fatalf("expected failure entry, got %s", buf.String())
	}

	buf.Reset()
	ql.LogMode(gormlogger.Silent).Trace(ctx, time.Now().Add(-time.Second), stmt, errors.New("boom"))
	if buf.Len() != 0 {
		t.Fatalf("silent mode should not log: %s", buf.String())
	}
}
