package expense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("expense not found")
	ErrInvalid  = errors.New("invalid expense")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...)
}

type Repository interface {
	Create(ctx context.Context, e *Expense) error
	Update(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns expenses newest first, optionally bounded by date.
	List(ctx context.Context, from, to *time.Time) ([]*Expense, error)
}
