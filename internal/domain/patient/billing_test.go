package patient

import (
	"errors"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func TestDiscount(t *testing.T) {
	tests := []struct {
		name       string
		total      float64
		pct, amt   *float64
		wantPct    float64
		wantAmount float64
		wantErr    bool
	}{
		{"none", 1000, nil, nil, 0, 0, false},
		{"percentage", 1000, ptr(10), nil, 10, 100, false},
		{"amount", 1500, nil, ptr(200), 13.33, 200, false},
		{"percentage wins", 1000, ptr(5), ptr(300), 5, 50, false},
		{"amount on zero total", 0, nil, ptr(0), 0, 0, false},
		{"percentage over 100", 1000, ptr(120), nil, 0, 0, true},
		{"negative amount", 1000, nil, ptr(-1), 0, 0, true},
		{"amount over total", 1000, nil, ptr(1001), 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, amount, err := discount(tt.total, tt.pct, tt.amt)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("expected ErrInvalid, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pct != tt.wantPct || amount != tt.wantAmount {
				t.Errorf("got pct=%v amount=%v, want pct=%v amount=%v", pct, amount, tt.wantPct, tt.wantAmount)
			}
		})
	}
}

func TestBillSettle(t *testing.T) {
	b := bill{Total: 1000, DiscountAmount: 100, PaidAmount: 500}
	b.settle()
	if b.NetTotal != 900 || b.DueAmount != 400 {
		t.Errorf("got net=%v due=%v", b.NetTotal, b.DueAmount)
	}
	if b.status() != PaymentPartiallyPaid {
		t.Errorf("expected partially paid, got %s", b.status())
	}

	over := bill{Total: 300, DiscountAmount: 500, PaidAmount: 50}
	over.settle()
	if over.NetTotal != 0 || over.DueAmount != 0 {
		t.Errorf("expected floors at zero, got net=%v due=%v", over.NetTotal, over.DueAmount)
	}
	if over.status() != PaymentPaid {
		t.Errorf("expected paid, got %s", over.status())
	}

	unpaid := bill{Total: 300}
	unpaid.settle()
	if unpaid.status() != PaymentNotPaid {
		t.Errorf("expected not paid, got %s", unpaid.status())
	}
}
