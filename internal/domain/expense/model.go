package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a day-to-day lab expense. Amount is exact; it is rendered as
// a JSON string.
type Expense struct {
	ID          uuid.UUID       `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Input is the create and update body. Date is YYYY-MM-DD or RFC 3339.
type Input struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type RangeResult struct {
	Expenses []*Expense      `json:"expenses"`
	Total    decimal.Decimal `json:"total"`
}
