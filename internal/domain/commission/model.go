package commission

import (
	"time"

	"github.com/google/uuid"
)

// SelfReferral marks a patient who came in without a referring doctor.
const SelfReferral = "Self"

type TestType string

const (
	TestTypeRoutine TestType = "routine"
	TestTypeSpecial TestType = "special"
)

// Resolve maps anything other than "special" to routine.
func (t TestType) Resolve() TestType {
	if t == TestTypeSpecial {
		return TestTypeSpecial
	}
	return TestTypeRoutine
}

// Snapshot holds the doctor's commission percentages frozen at registration.
type Snapshot struct {
	Routine float64 `db:"commission_routine" json:"routine"`
	Special float64 `db:"commission_special" json:"special"`
}

// Percent returns the rate that applies to a line item of the given type.
func (s Snapshot) Percent(t TestType) float64 {
	if t.Resolve() == TestTypeSpecial {
		return s.Special
	}
	return s.Routine
}

type TestLine struct {
	TestID   string   `db:"test_id" json:"testId"`
	TestName string   `db:"test_name" json:"testName"`
	TestType TestType `db:"test_type" json:"testType"`
	Price    float64  `db:"price" json:"price"`
}

// PatientBilling is the billing view of a stored patient record.
type PatientBilling struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	RefNo          string     `db:"ref_no" json:"refNo"`
	Name           string     `db:"name" json:"name"`
	Phone          string     `db:"phone" json:"phone"`
	ReferencedBy   string     `db:"referenced_by" json:"referencedBy"`
	Total          float64    `db:"total" json:"total"`
	DiscountAmount float64    `db:"discount_amount" json:"discountAmount"`
	NetTotal       float64    `db:"net_total" json:"netTotal"`
	PaidAmount     float64    `db:"paid_amount" json:"paidAmount"`
	PaymentStatus  string     `db:"payment_status" json:"paymentStatus"`
	Commission     Snapshot   `json:"doctorCommission"`
	Tests          []TestLine `json:"tests"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}

type PerTestShare struct {
	TestID            string   `json:"testId"`
	TestName          string   `json:"testName"`
	TestType          TestType `json:"testType"`
	OriginalPrice     float64  `json:"originalPrice"`
	FinalTestAmount   float64  `json:"finalTestAmount"`
	CommissionPercent float64  `json:"commissionPercent"`
	DoctorShare       float64  `json:"doctorShare"`
}

type PatientShare struct {
	Tests            []PerTestShare `json:"tests"`
	TotalBilling     float64        `json:"totalBilling"`
	TotalDoctorShare float64        `json:"totalDoctorShare"`
}

// Query carries the report request parameters as received.
type Query struct {
	DoctorName string `query:"doctorName"`
	StartDate  string `query:"startDate"`
	EndDate    string `query:"endDate"`
}

type DoctorStatement struct {
	DoctorName        string  `json:"doctorName"`
	StartDate         string  `json:"startDate"`
	EndDate           string  `json:"endDate"`
	TotalRoutineTests int     `json:"totalRoutineTests"`
	TotalSpecialTests int     `json:"totalSpecialTests"`
	TotalBilling      float64 `json:"totalBilling"`
	TotalDoctorShare  float64 `json:"totalDoctorShare"`
	LabRevenue        float64 `json:"labRevenue"`
}

type TestBreakdownRow struct {
	TestName         string   `json:"testName"`
	TestType         TestType `json:"testType"`
	TimesReferred    int      `json:"timesReferred"`
	TotalFinalAmount float64  `json:"totalFinalAmount"`
	TotalCommission  float64  `json:"totalCommission"`
}

type DoctorTestBreakdown struct {
	DoctorName       string             `json:"doctorName"`
	StartDate        string             `json:"startDate"`
	EndDate          string             `json:"endDate"`
	Breakdown        []TestBreakdownRow `json:"breakdown"`
	TotalBilling     float64            `json:"totalBilling"`
	TotalDoctorShare float64            `json:"totalDoctorShare"`
	LabRevenue       float64            `json:"labRevenue"`
}

type DoctorSummaryRow struct {
	DoctorName       string  `json:"doctorName"`
	TotalBilling     float64 `json:"totalBilling"`
	TotalDoctorShare float64 `json:"totalDoctorShare"`
	TotalPatients    int     `json:"totalPatients"`
	LabRevenue       float64 `json:"labRevenue"`
}

type LabReferralSummary struct {
	StartDate             string             `json:"startDate"`
	EndDate               string             `json:"endDate"`
	Summary               []DoctorSummaryRow `json:"summary"`
	GrandTotalBilling     float64            `json:"grandTotalBilling"`
	GrandTotalDoctorShare float64            `json:"grandTotalDoctorShare"`
	GrandLabRevenue       float64            `json:"grandLabRevenue"`
}

type PatientList struct {
	Patients []*PatientBilling `json:"patients"`
}
