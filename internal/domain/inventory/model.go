package inventory

import (
	"time"

	"github.com/google/uuid"
)

type Item struct {
	ID          uuid.UUID `json:"id"`
	ItemCode    string    `json:"itemCode"`
	ItemName    string    `json:"itemName"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TransactionType string

const (
	Addition TransactionType = "addition"
	Removal  TransactionType = "removal"
)

// Transaction is a stock movement. ItemName is copied from the item when
// the movement is recorded.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	Date            time.Time       `json:"date"`
	ItemID          uuid.UUID       `json:"itemId"`
	ItemName        string          `json:"itemName"`
	Quantity        float64         `json:"quantity"`
	TransactionType TransactionType `json:"transactionType"`
	Remarks         string          `json:"remarks"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// StockRequest records an addition or a removal. Date is YYYY-MM-DD or
// RFC 3339; empty means now.
type StockRequest struct {
	Date     string    `json:"date"`
	ItemID   uuid.UUID `json:"itemId"`
	Quantity float64   `json:"quantity"`
	Remarks  string    `json:"remarks"`
}

type StockLevel struct {
	ItemID         uuid.UUID `json:"itemId"`
	ItemCode       string    `json:"itemCode"`
	ItemName       string    `json:"itemName"`
	Description    string    `json:"description"`
	CurrentStock   float64   `json:"currentStock"`
	TotalAdditions float64   `json:"totalAdditions"`
	TotalIssues    float64   `json:"totalIssues"`
}

// DailyItemTotal is one item's movement on one calendar day.
type DailyItemTotal struct {
	Date             string    `json:"-"`
	ItemID           uuid.UUID `json:"itemId"`
	ItemName         string    `json:"itemName"`
	TotalAdditions   float64   `json:"totalAdditions"`
	TotalIssues      float64   `json:"totalIssues"`
	TransactionCount int       `json:"transactionCount"`
	NetChange        float64   `json:"netChange"`
}

type DailySummary struct {
	Date                string           `json:"date"`
	Items               []DailyItemTotal `json:"items"`
	DayTotalAdditions   float64          `json:"dayTotalAdditions"`
	DayTotalIssues      float64          `json:"dayTotalIssues"`
	DayNetChange        float64          `json:"dayNetChange"`
	DayTransactionCount int              `json:"dayTransactionCount"`
}

// TransactionFilter bounds a transaction listing. Ascending is used by the
// date range report; the plain listing is newest first.
type TransactionFilter struct {
	From, To  *time.Time
	Ascending bool
}
