package commission

// BuildDoctorStatement totals every patient a doctor referred in the period.
// Test counts include every line item, not distinct test names.
func BuildDoctorStatement(q Query, patients []*PatientBilling) *DoctorStatement {
	out := &DoctorStatement{
		DoctorName: q.DoctorName,
		StartDate:  q.StartDate,
		EndDate:    q.EndDate,
	}

	var billing, doctorShare float64
	for _, p := range patients {
		share := ComputePatientShare(*p)
		for _, t := range share.Tests {
			if t.TestType == TestTypeSpecial {
				out.TotalSpecialTests++
			} else {
				out.TotalRoutineTests++
			}
		}
		billing += share.TotalBilling
		doctorShare += share.TotalDoctorShare
	}

	out.TotalBilling = round2(billing)
	out.TotalDoctorShare = round2(doctorShare)
	out.LabRevenue = round2(out.TotalBilling - out.TotalDoctorShare)
	return out
}

// BuildDoctorTestBreakdown merges line items by test name across patients.
// Rows keep the order in which test names were first seen and the test type
// of that first occurrence.
func BuildDoctorTestBreakdown(q Query, patients []*PatientBilling) *DoctorTestBreakdown {
	rows := make([]TestBreakdownRow, 0)
	index := make(map[string]int)

	for _, p := range patients {
		for _, t := range ComputePatientShare(*p).Tests {
			i, ok := index[t.TestName]
			if !ok {
				i = len(rows)
				index[t.TestName] = i
				rows = append(rows, TestBreakdownRow{
					TestName: t.TestName,
					TestType: t.TestType,
				})
			}
			rows[i].TimesReferred++
			rows[i].TotalFinalAmount += t.FinalTestAmount
			rows[i].TotalCommission += t.DoctorShare
		}
	}

	var billing, doctorShare float64
	for i := range rows {
		rows[i].TotalFinalAmount = round2(rows[i].TotalFinalAmount)
		rows[i].TotalCommission = round2(rows[i].TotalCommission)
		billing += rows[i].TotalFinalAmount
		doctorShare += rows[i].TotalCommission
	}

	out := &DoctorTestBreakdown{
		DoctorName:       q.DoctorName,
		StartDate:        q.StartDate,
		EndDate:          q.EndDate,
		Breakdown:        rows,
		TotalBilling:     round2(billing),
		TotalDoctorShare: round2(doctorShare),
	}
	out.LabRevenue = round2(out.TotalBilling - out.TotalDoctorShare)
	return out
}

// BuildLabReferralSummary groups patients by referring doctor. Self referrals
// are expected to be excluded by the fetch; any that slip through are
// skipped here as well.
func BuildLabReferralSummary(q Query, patients []*PatientBilling) *LabReferralSummary {
	rows := make([]DoctorSummaryRow, 0)
	index := make(map[string]int)

	for _, p := range patients {
		if p.ReferencedBy == SelfReferral {
			continue
		}
		i, ok := index[p.ReferencedBy]
		if !ok {
			i = len(rows)
			index[p.ReferencedBy] = i
			rows = append(rows, DoctorSummaryRow{DoctorName: p.ReferencedBy})
		}
		share := ComputePatientShare(*p)
		rows[i].TotalBilling += share.TotalBilling
		rows[i].TotalDoctorShare += share.TotalDoctorShare
		rows[i].TotalPatients++
	}

	var billing, doctorShare float64
	for i := range rows {
		rows[i].TotalBilling = round2(rows[i].TotalBilling)
		rows[i].TotalDoctorShare = round2(rows[i].TotalDoctorShare)
		rows[i].LabRevenue = round2(rows[i].TotalBilling - rows[i].TotalDoctorShare)
		billing += rows[i].TotalBilling
		doctorShare += rows[i].TotalDoctorShare
	}

	out := &LabReferralSummary{
		StartDate:             q.StartDate,
		EndDate:               q.EndDate,
		Summary:               rows,
		GrandTotalBilling:     round2(billing),
		GrandTotalDoctorShare: round2(doctorShare),
	}
	out.GrandLabRevenue = round2(out.GrandTotalBilling - out.GrandTotalDoctorShare)
	return out
}
