package commission

import "math"

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputePatientShare spreads the patient's absolute discount across every
// line item in proportion to its price and applies the snapshotted
// commission rate to each discounted amount.
//
// The discount percentage is always derived from DiscountAmount and Total.
// Totals are sums of the already rounded per-test values. Nothing is
// clamped, so a discount larger than the total yields negative amounts.
func ComputePatientShare(p PatientBilling) PatientShare {
	if p.Total == 0 {
		return PatientShare{Tests: []PerTestShare{}}
	}

	discountPercent := p.DiscountAmount / p.Total * 100

	shares := make([]PerTestShare, 0, len(p.Tests))
	var billing, doctorShare float64
	for _, t := range p.Tests {
		discounted := t.Price - t.Price*discountPercent/100
		final := round2(discounted)

		testType := t.TestType.Resolve()
		pct := p.Commission.Percent(testType)
		share := round2(final * pct / 100)

		shares = append(shares, PerTestShare{
			TestID:            t.TestID,
			TestName:          t.TestName,
			TestType:          testType,
			OriginalPrice:     t.Price,
			FinalTestAmount:   final,
			CommissionPercent: pct,
			DoctorShare:       share,
		})
		billing += final
		doctorShare += share
	}

	return PatientShare{
		Tests:            shares,
		TotalBilling:     round2(billing),
		TotalDoctorShare: round2(doctorShare),
	}
}
