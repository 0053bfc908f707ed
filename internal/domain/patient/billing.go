package patient

import "math"

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// bill holds the money columns of a patient record.
type bill struct {
	Total              float64
	DiscountPercentage float64
	DiscountAmount     float64
	NetTotal           float64
	PaidAmount         float64
	DueAmount          float64
}

// discount resolves a discount given as a percentage or an amount against
// total. A percentage wins when both are set.
func discount(total float64, pct, amount *float64) (float64, float64, error) {
	switch {
	case pct != nil:
		if *pct < 0 || *pct > 100 {
			return 0, 0, invalid("discountPercentage must be between 0 and 100")
		}
		return *pct, round2(total * *pct / 100), nil
	case amount != nil:
		if *amount < 0 {
			return 0, 0, invalid("discountAmount must not be negative")
		}
		if *amount > total {
			return 0, 0, invalid("discountAmount must not exceed the total")
		}
		if total == 0 {
			return 0, *amount, nil
		}
		return round2(*amount / total * 100), *amount, nil
	}
	return 0, 0, nil
}

// settle fills net and due from total, discount and paid. Both floor at zero.
func (b *bill) settle() {
	b.NetTotal = round2(math.Max(0, b.Total-b.DiscountAmount))
	b.DueAmount = round2(math.Max(0, b.NetTotal-b.PaidAmount))
}

// status derives a payment status from the amounts.
func (b *bill) status() PaymentStatus {
	switch {
	case b.PaidAmount > 0 && b.DueAmount == 0:
		return PaymentPaid
	case b.PaidAmount > 0:
		return PaymentPartiallyPaid
	}
	return PaymentNotPaid
}

func billOf(p *Patient) bill {
	return bill{
		Total:              p.Total,
		DiscountPercentage: p.DiscountPercentage,
		DiscountAmount:     p.DiscountAmount,
		NetTotal:           p.NetTotal,
		PaidAmount:         p.PaidAmount,
		DueAmount:          p.DueAmount,
	}
}

func (b bill) applyTo(p *Patient) {
	p.Total = b.Total
	p.DiscountPercentage = b.DiscountPercentage
	p.DiscountAmount = b.DiscountAmount
	p.NetTotal = b.NetTotal
	p.PaidAmount = b.PaidAmount
	p.DueAmount = b.DueAmount
}
