package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "pgx code", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_orders_number"}), want: true},
		{name: "pgx constraint match", err: &pgconn.PgError{Code: "23505", ConstraintName: "idx_orders_number"}, constraint: "idx_orders_number", want: true},
		{name: "pgx other constraint", err: &pgconn.PgError{Code: "23505", ConstraintName: "orders_pkey"}, constraint: "idx_orders_number", want: false},
		{name: "pgx other code", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "gorm translated", err: gorm.ErrDuplicatedKey, want: true},
		{name: "sqlite message", err: errors.New("UNIQUE constraint failed: orders.number"), want: true},
		{name: "sqlite with index name", err: errors.New("UNIQUE constraint failed: index 'idx_orders_number'"), constraint: "idx_orders_number", want: true},
		{name: "message constraint mismatch", err: errors.New("duplicate key value"), constraint: "ux_other", want: false},
		{name: "unrelated", err: errors.New("connection reset"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v, %q) = %v, want %v", tc.err, tc.constraint, got, tc.want)
			}
		})
	}
}
