package commission

import (
	"context"
	"time"
)

// Filter selects stored patients by referral and registration time.
// From and To are inclusive.
type Filter struct {
	DoctorName  string
	ExcludeSelf bool
	From        time.Time
	To          time.Time
}

// PatientFinder returns matching patients ordered by registration time.
type PatientFinder interface {
	FindReferrals(ctx context.Context, f Filter) ([]*PatientBilling, error)
}
