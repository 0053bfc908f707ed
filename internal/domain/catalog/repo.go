package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("test not found")
	ErrDuplicate = errors.New("test already exists")
	ErrInvalid   = errors.New("invalid test")
)

type Repository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id uuid.UUID) (*Template, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Template, error)
	Search(ctx context.Context, q string, limit int) ([]*Summary, error)
}
