package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.005, 1}, // 1.005 is stored as 1.00499...
		{2.675, 2.67},
		{6.666666666666667, 6.67},
		{0.125, 0.13},
		{-0.125, -0.13},
		{450, 450},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, round2(tt.in), "round2(%v)", tt.in)
	}
}

func TestComputePatientShare_ZeroTotal(t *testing.T) {
	share := ComputePatientShare(PatientBilling{
		Total:          0,
		DiscountAmount: 50,
		Commission:     Snapshot{Routine: 10, Special: 20},
		Tests:          []TestLine{{TestName: "CBC", Price: 0}},
	})

	require.NotNil(t, share.Tests)
	assert.Empty(t, share.Tests)
	assert.Zero(t, share.TotalBilling)
	assert.Zero(t, share.TotalDoctorShare)
}

func TestComputePatientShare_ProportionalDiscount(t *testing.T) {
	share := ComputePatientShare(PatientBilling{
		Total:          1000,
		DiscountAmount: 100,
		Commission:     Snapshot{Routine: 10, Special: 20},
		Tests: []TestLine{
			{TestID: "t1", TestName: "Lipid Profile", TestType: TestTypeSpecial, Price: 500},
			{TestID: "t2", TestName: "CBC", TestType: TestTypeRoutine, Price: 500},
		},
	})

	require.Len(t, share.Tests, 2)
	special := share.Tests[0]
	assert.Equal(t, 500.0, special.OriginalPrice)
	assert.Equal(t, 450.0, special.FinalTestAmount)
	assert.Equal(t, 20.0, special.CommissionPercent)
	assert.Equal(t, 90.0, special.DoctorShare)

	routine := share.Tests[1]
	assert.Equal(t, 450.0, routine.FinalTestAmount)
	assert.Equal(t, 45.0, routine.DoctorShare)

	assert.Equal(t, 900.0, share.TotalBilling)
	assert.Equal(t, 135.0, share.TotalDoctorShare)
}

func TestComputePatientShare_IgnoresStoredPercentage(t *testing.T) {
	// Only the absolute discount amount matters.
	share := ComputePatientShare(PatientBilling{
		Total:          200,
		DiscountAmount: 50,
		Commission:     Snapshot{Routine: 10},
		Tests:          []TestLine{{TestName: "LFT", Price: 200}},
	})
	assert.Equal(t, 150.0, share.TotalBilling)
	assert.Equal(t, 15.0, share.TotalDoctorShare)
}

func TestComputePatientShare_TotalsAreSumOfRounded(t *testing.T) {
	// 10 - 10*(10/30) = 6.666... per test, rounded to 6.67 each.
	// Sum of rounded = 20.01, rounding the unrounded sum would give 20.00.
	share := ComputePatientShare(PatientBilling{
		Total:          30,
		DiscountAmount: 10,
		Commission:     Snapshot{Routine: 10},
		Tests: []TestLine{
			{TestName: "A", Price: 10},
			{TestName: "B", Price: 10},
			{TestName: "C", Price: 10},
		},
	})

	for _, ts := range share.Tests {
		assert.Equal(t, 6.67, ts.FinalTestAmount)
		assert.Equal(t, 0.67, ts.DoctorShare)
	}
	assert.Equal(t, 20.01, share.TotalBilling)
	assert.Equal(t, 2.01, share.TotalDoctorShare)
}

func TestComputePatientShare_UnknownTestTypeIsRoutine(t *testing.T) {
	share := ComputePatientShare(PatientBilling{
		Total:      300,
		Commission: Snapshot{Routine: 10, Special: 25},
		Tests: []TestLine{
			{TestName: "X", TestType: "", Price: 100},
			{TestName: "Y", TestType: "urgent", Price: 100},
			{TestName: "Z", TestType: "Special", Price: 100},
		},
	})

	require.Len(t, share.Tests, 3)
	for _, ts := range share.Tests {
		assert.Equal(t, TestTypeRoutine, ts.TestType, ts.TestName)
		assert.Equal(t, 10.0, ts.CommissionPercent, ts.TestName)
		assert.Equal(t, 10.0, ts.DoctorShare, ts.TestName)
	}
}

func TestComputePatientShare_DiscountAboveTotalIsNotClamped(t *testing.T) {
	share := ComputePatientShare(PatientBilling{
		Total:          100,
		DiscountAmount: 150,
		Commission:     Snapshot{Routine: 10},
		Tests:          []TestLine{{TestName: "CBC", Price: 100}},
	})
	assert.Equal(t, -50.0, share.TotalBilling)
	assert.Equal(t, -5.0, share.TotalDoctorShare)
}

func TestComputePatientShare_NoCommissionSnapshot(t *testing.T) {
	share := ComputePatientShare(PatientBilling{
		Total: 400,
		Tests: []TestLine{{TestName: "CBC", TestType: TestTypeSpecial, Price: 400}},
	})
	assert.Equal(t, 400.0, share.TotalBilling)
	assert.Zero(t, share.TotalDoctorShare)
}

func TestSnapshot_Percent(t *testing.T) {
	s := Snapshot{Routine: 5, Special: 15}
	assert.Equal(t, 5.0, s.Percent(TestTypeRoutine))
	assert.Equal(t, 15.0, s.Percent(TestTypeSpecial))
	assert.Equal(t, 5.0, s.Percent("bogus"))
}
