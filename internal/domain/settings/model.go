package settings

import "time"

// LabInfo is the single lab profile printed on reports.
type LabInfo struct {
	LabName     string    `json:"labName"`
	PhoneNumber string    `json:"phoneNumber"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	LogoURL     string    `json:"logoUrl"`
	Website     string    `json:"website"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TableWidthMode string

const (
	TableWidthSmart TableWidthMode = "smart"
	TableWidthFull  TableWidthMode = "full"
)

// General holds report print options.
type General struct {
	PrintShowHeader bool           `json:"printShowHeader"`
	PrintShowFooter bool           `json:"printShowFooter"`
	HeaderTopMargin int            `json:"headerTopMargin"`
	TableWidthMode  TableWidthMode `json:"tableWidthMode"`
	UpdatedBy       string         `json:"updatedBy"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// GeneralUpdate changes only the fields that are set.
type GeneralUpdate struct {
	PrintShowHeader *bool   `json:"printShowHeader"`
	PrintShowFooter *bool   `json:"printShowFooter"`
	HeaderTopMargin *int    `json:"headerTopMargin"`
	TableWidthMode  *string `json:"tableWidthMode"`
	UpdatedBy       string  `json:"updatedBy"`
}

type FilterType string

const (
	FilterRegistration FilterType = "registration"
	FilterPayment      FilterType = "payment"
	FilterResults      FilterType = "results"
)

// FilterTypes is the fixed set of list screens with a day filter.
var FilterTypes = []FilterType{FilterRegistration, FilterPayment, FilterResults}

func ParseFilterType(s string) (FilterType, bool) {
	for _, t := range FilterTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

type HistoryDirection string

const (
	LeftToRight HistoryDirection = "left-to-right"
	RightToLeft HistoryDirection = "right-to-left"
)

// Filter limits a list screen to recent records and controls how many
// previous results the result sheet shows.
type Filter struct {
	FilterType              FilterType       `json:"filterType"`
	DaysLimit               *int             `json:"daysLimit"`
	IsActive                bool             `json:"isActive"`
	HistoryResultsCount     int              `json:"historyResultsCount"`
	HistoryResultsDirection HistoryDirection `json:"historyResultsDirection"`
	UpdatedBy               string           `json:"updatedBy"`
	UpdatedAt               time.Time        `json:"updatedAt"`
}

type HistoryUpdate struct {
	HistoryResultsCount     *int   `json:"historyResultsCount"`
	HistoryResultsDirection string `json:"historyResultsDirection"`
	UpdatedBy               string `json:"updatedBy"`
}

const systemUser = "System"

func defaultGeneral() *General {
	return &General{
		PrintShowHeader: true,
		PrintShowFooter: true,
		TableWidthMode:  TableWidthSmart,
		UpdatedBy:       systemUser,
	}
}

func defaultFilter(t FilterType) *Filter {
	return &Filter{
		FilterType:              t,
		HistoryResultsCount:     4,
		HistoryResultsDirection: LeftToRight,
		UpdatedBy:               systemUser,
	}
}
