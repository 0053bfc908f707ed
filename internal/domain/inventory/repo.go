package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrItemNotFound        = errors.New("item not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicate           = errors.New("item code already exists")
	ErrInUse               = errors.New("item has transactions")
	ErrInvalid             = errors.New("invalid inventory request")
)

// InsufficientStockError rejects a removal larger than the stock on hand.
type InsufficientStockError struct {
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %v available", e.Available)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...)
}

type Repository interface {
	CreateItem(ctx context.Context, it *Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	// LockItem loads the item and holds a row lock until the surrounding
	// transaction ends.
	LockItem(ctx context.Context, id uuid.UUID) (*Item, error)
	UpdateItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListItems(ctx context.Context) ([]*Item, error)
	HasTransactions(ctx context.Context, itemID uuid.UUID) (bool, error)

	CreateTransaction(ctx context.Context, t *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ListTransactions(ctx context.Context, f TransactionFilter) ([]*Transaction, error)

	Stock(ctx context.Context, itemID uuid.UUID) (float64, error)
	StockLevels(ctx context.Context) ([]*StockLevel, error)
	// DailyTotals returns per item and day totals for the most recent days
	// that have any movement, newest day first.
	DailyTotals(ctx context.Context, days int) ([]*DailyItemTotal, error)
}
