package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/labcore/lis/internal/platform/db"
)

const (
	dateLayout  = "2006-01-02"
	summaryDays = 90
)

type Service struct {
	repo Repository
	tx   db.TxRunner
	now  func() time.Time
}

func NewService(repo Repository, tx db.TxRunner) *Service {
	return &Service{repo: repo, tx: tx, now: time.Now}
}

func normalizeItem(it *Item) error {
	it.ItemCode = strings.TrimSpace(it.ItemCode)
	it.ItemName = strings.TrimSpace(it.ItemName)
	it.Description = strings.TrimSpace(it.Description)
	if it.ItemCode == "" || it.ItemName == "" {
		return invalid("itemCode and itemName are required")
	}
	return nil
}

func (s *Service) CreateItem(ctx context.Context, it *Item) error {
	if err := normalizeItem(it); err != nil {
		return err
	}
	return s.repo.CreateItem(ctx, it)
}

func (s *Service) UpdateItem(ctx context.Context, it *Item) error {
	if err := normalizeItem(it); err != nil {
		return err
	}
	return s.repo.UpdateItem(ctx, it)
}

// DeleteItem refuses items that still have stock movements on record.
func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	used, err := s.repo.HasTransactions(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return ErrInUse
	}
	return s.repo.DeleteItem(ctx, id)
}

func (s *Service) ListItems(ctx context.Context) ([]*Item, error) {
	return s.repo.ListItems(ctx)
}

func (s *Service) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now().UTC(), nil
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

func (s *Service) AddStock(ctx context.Context, req StockRequest) (*Transaction, error) {
	return s.record(ctx, Addition, req)
}

// RemoveStock records an issue. The item row stays locked while the stock
// on hand is checked so concurrent removals cannot overdraw it.
func (s *Service) RemoveStock(ctx context.Context, req StockRequest) (*Transaction, error) {
	return s.record(ctx, Removal, req)
}

func (s *Service) record(ctx context.Context, kind TransactionType, req StockRequest) (*Transaction, error) {
	if req.ItemID == uuid.Nil {
		return nil, invalid("itemId is required")
	}
	if req.Quantity <= 0 {
		return nil, invalid("quantity must be greater than zero")
	}
	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	t := &Transaction{
		Date:            date,
		ItemID:          req.ItemID,
		Quantity:        req.Quantity,
		TransactionType: kind,
		Remarks:         strings.TrimSpace(req.Remarks),
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		item, err := s.repo.LockItem(ctx, req.ItemID)
		if err != nil {
			return err
		}
		t.ItemName = item.ItemName

		if kind == Removal {
			stock, err := s.repo.Stock(ctx, req.ItemID)
			if err != nil {
				return err
			}
			if req.Quantity > stock {
				return &InsufficientStockError{Available: stock}
			}
		}
		return s.repo.CreateTransaction(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Transactions(ctx context.Context) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, TransactionFilter{})
}

// TransactionsInRange lists movements oldest first. The range applies only
// when both dates are given; the end date is inclusive.
func (s *Service) TransactionsInRange(ctx context.Context, startDate, endDate string) ([]*Transaction, error) {
	f := TransactionFilter{Ascending: true}
	if startDate != "" && endDate != "" {
		from, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, invalid("startDate must be YYYY-MM-DD")
		}
		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return nil, invalid("endDate must be YYYY-MM-DD")
		}
		to := end.Add(24*time.Hour - time.Millisecond)
		f.From, f.To = &from, &to
	}
	return s.repo.ListTransactions(ctx, f)
}

func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

func (s *Service) StockLevels(ctx context.Context) ([]*StockLevel, error) {
	return s.repo.StockLevels(ctx)
}

// DailySummary groups the last 90 active days of movements by day, newest
// first, with per item rows and day totals.
func (s *Service) DailySummary(ctx context.Context) ([]*DailySummary, error) {
	rows, err := s.repo.DailyTotals(ctx, summaryDays)
	if err != nil {
		return nil, err
	}

	days := lo.Uniq(lo.Map(rows, func(r *DailyItemTotal, _ int) string { return r.Date }))
	byDay := lo.GroupBy(rows, func(r *DailyItemTotal) string { return r.Date })

	out := make([]*DailySummary, 0, len(days))
	for _, day := range days {
		sum := &DailySummary{Date: day, Items: []DailyItemTotal{}}
		for _, r := range byDay[day] {
			sum.Items = append(sum.Items, *r)
			sum.DayTotalAdditions += r.TotalAdditions
			sum.DayTotalIssues += r.TotalIssues
			sum.DayTransactionCount += r.TransactionCount
		}
		sum.DayNetChange = sum.DayTotalAdditions - sum.DayTotalIssues
		out = append(out, sum)
	}
	return out, nil
}
