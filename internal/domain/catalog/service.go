package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const searchLimit = 20

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...)
}

func validate(t *Template) error {
	t.TestName = strings.TrimSpace(t.TestName)
	if t.TestName == "" {
		return invalid("testName is required")
	}
	if t.TestCode <= 0 {
		return invalid("testCode must be a positive number")
	}
	if t.TestPrice < 0 {
		return invalid("testPrice must not be negative")
	}
	typ, ok := ParseTestType(string(t.TestType))
	if !ok {
		return invalid("testType must be routine or special")
	}
	t.TestType = typ
	for i, f := range t.Fields {
		if strings.TrimSpace(f.FieldName) == "" {
			return invalid("fields[%d].fieldName is required", i)
		}
		if f.FieldType == "" {
			t.Fields[i].FieldType = "string"
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, t *Template) error {
	if err := validate(t); err != nil {
		return err
	}
	return s.repo.Create(ctx, t)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Template, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByIDs returns the templates that exist among ids.
func (s *Service) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Template, error) {
	return s.repo.GetByIDs(ctx, ids)
}

func (s *Service) Update(ctx context.Context, t *Template) error {
	if err := validate(t); err != nil {
		return err
	}
	return s.repo.Update(ctx, t)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Template, error) {
	return s.repo.List(ctx)
}

// Search returns an empty list for a blank query.
func (s *Service) Search(ctx context.Context, q string) ([]*Summary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []*Summary{}, nil
	}
	return s.repo.Search(ctx, q, searchLimit)
}
