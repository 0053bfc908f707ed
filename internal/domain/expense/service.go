package expense

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, invalid("date is required")
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, invalid("date must be YYYY-MM-DD")
	}
	return t, nil
}

func build(in Input) (*Expense, error) {
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	e := &Expense{Date: date, Description: strings.TrimSpace(in.Description), Amount: in.Amount}
	if e.Description == "" {
		return nil, invalid("description is required")
	}
	if e.Amount.IsNegative() {
		return nil, invalid("amount must not be negative")
	}
	return e, nil
}

func (s *Service) Add(ctx context.Context, in Input) (*Expense, error) {
	e, err := build(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Expense, error) {
	e, err := build(in)
	if err != nil {
		return nil, err
	}
	e.ID = id
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Expense, error) {
	return s.repo.List(ctx, nil, nil)
}

// ListByRange filters by date when both bounds are given (end day
// inclusive) and sums the amounts exactly.
func (s *Service) ListByRange(ctx context.Context, startDate, endDate string) (*RangeResult, error) {
	var from, to *time.Time
	if startDate != "" && endDate != "" {
		start, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, invalid("startDate must be YYYY-MM-DD")
		}
		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return nil, invalid("endDate must be YYYY-MM-DD")
		}
		if end.Before(start) {
			return nil, invalid("endDate must not be before startDate")
		}
		end = end.Add(24*time.Hour - time.Millisecond)
		from, to = &start, &end
	}

	items, err := s.repo.List(ctx, from, to)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, e := range items {
		total = total.Add(e.Amount)
	}
	return &RangeResult{Expenses: items, Total: total}, nil
}
