package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(fmt.Errorf("get doctor: %w", pgx.ErrNoRows)) {
		t.Error("expected wrapped ErrNoRows to match")
	}
	if IsNoRows(errors.New("no rows")) {
		t.Error("plain error text must not match")
	}
}

func TestConstraintViolations(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	if !IsUniqueViolation(unique) || IsForeignKeyViolation(unique) {
		t.Error("23505 should be a unique violation only")
	}
	if !IsForeignKeyViolation(fk) || IsUniqueViolation(fk) {
		t.Error("23503 should be a foreign key violation only")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("non-pg error should not match")
	}
}
