package patient

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/labcore/lis/internal/domain/catalog"
	"github.com/labcore/lis/internal/domain/commission"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

func ParseGender(s string) (Gender, bool) {
	switch g := Gender(s); g {
	case GenderMale, GenderFemale, GenderOther:
		return g, true
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentPaid          PaymentStatus = "Paid"
	PaymentNotPaid       PaymentStatus = "Not Paid"
	PaymentPartiallyPaid PaymentStatus = "Partially Paid"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch p := PaymentStatus(s); p {
	case PaymentPaid, PaymentNotPaid, PaymentPartiallyPaid:
		return p, true
	}
	return "", false
}

type ResultStatus string

const (
	ResultPending ResultStatus = "Pending"
	ResultAdded   ResultStatus = "Added"
)

// DefaultSpecimen is recorded when the front desk leaves specimen blank.
const DefaultSpecimen = "Taken in Lab"

// TestLine is a test ordered at registration with the price and type in force then.
type TestLine struct {
	TestID           uuid.UUID `json:"testId"`
	TestName         string    `json:"testName"`
	TestType         string    `json:"testType"`
	Price            float64   `json:"price"`
	IsDiagnosticTest bool      `json:"isDiagnosticTest"`
}

type ResultField struct {
	FieldName    string `json:"fieldName"`
	DefaultValue string `json:"defaultValue"`
	Unit         string `json:"unit"`
	Range        string `json:"range"`
	Category     string `json:"category,omitempty"`
}

type Result struct {
	TestID   uuid.UUID     `json:"testId"`
	TestName string        `json:"testName"`
	Fields   []ResultField `json:"fields"`
}

type Patient struct {
	ID                     uuid.UUID           `json:"id"`
	RefNo                  string              `json:"refNo"`
	CaseNo                 string              `json:"caseNo"`
	Name                   string              `json:"name"`
	Age                    int                 `json:"age"`
	Gender                 Gender              `json:"gender"`
	Phone                  string              `json:"phone"`
	FatherHusbandName      string              `json:"fatherHusbandName"`
	NICNo                  string              `json:"nicNo"`
	Specimen               string              `json:"specimen"`
	PaymentStatus          PaymentStatus       `json:"paymentStatus"`
	ResultStatus           ResultStatus        `json:"resultStatus"`
	ReferencedBy           string              `json:"referencedBy"`
	ResultAddedBy          string              `json:"resultAddedBy"`
	PaymentStatusUpdatedBy string              `json:"paymentStatusUpdatedBy"`
	PatientRegisteredBy    string              `json:"patientRegisteredBy"`
	FinalReportApprovedBy  string              `json:"finalReportApprovedBy"`
	Tests                  []TestLine          `json:"tests"`
	Results                []Result            `json:"results"`
	Total                  float64             `json:"total"`
	DiscountPercentage     float64             `json:"discountPercentage"`
	DiscountAmount         float64             `json:"discountAmount"`
	NetTotal               float64             `json:"netTotal"`
	PaidAmount             float64             `json:"paidAmount"`
	DueAmount              float64             `json:"dueAmount"`
	Commission             commission.Snapshot `json:"doctorCommission"`
	CreatedAt              time.Time           `json:"createdAt"`
	UpdatedAt              time.Time           `json:"updatedAt"`
}

// nonDiagnosticCount is the number of tests that need a result sheet.
func (p *Patient) nonDiagnosticCount() int {
	n := 0
	for _, t := range p.Tests {
		if !t.IsDiagnosticTest {
			n++
		}
	}
	return n
}

// Summary is the row returned by name search.
type Summary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	Gender       Gender    `json:"gender"`
	Phone        string    `json:"phone"`
	ReferencedBy string    `json:"referencedBy"`
}

type SelectedTest struct {
	TestID uuid.UUID `json:"testId"`
}

type RegisterRequest struct {
	Name                   string         `json:"name"`
	Age                    int            `json:"age"`
	Gender                 string         `json:"gender"`
	Phone                  string         `json:"phone"`
	FatherHusbandName      string         `json:"fatherHusbandName"`
	NICNo                  string         `json:"nicNo"`
	Specimen               string         `json:"specimen"`
	ReferencedBy           string         `json:"referencedBy"`
	PaymentStatus          string         `json:"paymentStatus"`
	PaymentStatusUpdatedBy string         `json:"paymentStatusUpdatedBy"`
	PatientRegisteredBy    string         `json:"patientRegisteredBy"`
	SelectedTests          []SelectedTest `json:"selectedTests"`
	DiscountPercentage     *float64       `json:"discountPercentage"`
	DiscountAmount         *float64       `json:"discountAmount"`
	PaidAmount             float64        `json:"paidAmount"`
}

// BillingUpdate changes the discount or the amount paid. Nil fields keep
// their stored value; a percentage wins over an amount.
type BillingUpdate struct {
	DiscountPercentage *float64 `json:"discountPercentage"`
	DiscountAmount     *float64 `json:"discountAmount"`
	PaidAmount         *float64 `json:"paidAmount"`
	PaymentStatus      string   `json:"paymentStatus"`
	UpdatedBy          string   `json:"updatedBy"`
}

type PaymentUpdate struct {
	PaymentStatus          string `json:"paymentStatus"`
	PaymentStatusUpdatedBy string `json:"paymentStatusUpdatedBy"`
}

type ResultsSubmission struct {
	Tests         []Result `json:"tests"`
	ResultAddedBy string   `json:"resultAddedBy"`
}

// TestWithFields is a test line with its result sheet: template fields
// filled with any saved values.
type TestWithFields struct {
	TestLine
	Category     string          `json:"category"`
	Specimen     string          `json:"specimen"`
	ReportExtras json.RawMessage `json:"reportExtras,omitempty"`
	ScaleConfig  *catalog.ScaleConfig `json:"scaleConfig,omitempty"`
	Fields       []ResultField   `json:"fields"`
}

type ResultSheet struct {
	Patient *Patient         `json:"patient"`
	Tests   []TestWithFields `json:"tests"`
}

type ListFilter struct {
	Since         *time.Time
	PaymentStatus PaymentStatus
	ResultStatus  ResultStatus
	ReferencedBy  string
}

type PublicQuery struct {
	PatientNumber string `json:"patientNumber"`
	Phone         string `json:"phone"`
	Name          string `json:"name"`
}

type RegistrationTest struct {
	TestName string  `json:"testName"`
	Price    float64 `json:"price"`
	TestCode int     `json:"testCode,omitempty"`
	Specimen string  `json:"specimen,omitempty"`
}

type RegistrationReport struct {
	RefNo              string             `json:"refNo"`
	CaseNo             string             `json:"caseNo"`
	Name               string             `json:"name"`
	Age                int                `json:"age"`
	Gender             Gender             `json:"gender"`
	Phone              string             `json:"phone"`
	FatherHusbandName  string             `json:"fatherHusbandName"`
	NICNo              string             `json:"nicNo"`
	Specimen           string             `json:"specimen"`
	ReferencedBy       string             `json:"referencedBy"`
	CreatedAt          time.Time          `json:"createdAt"`
	Tests              []RegistrationTest `json:"tests"`
	Total              float64            `json:"total"`
	DiscountPercentage float64            `json:"discountPercentage"`
	DiscountAmount     float64            `json:"discountAmount"`
	NetTotal           float64            `json:"netTotal"`
	PaidAmount         float64            `json:"paidAmount"`
	DueAmount          float64            `json:"dueAmount"`
}

type FinalReportTest struct {
	TestName     string          `json:"testName"`
	TestCode     int             `json:"testCode,omitempty"`
	Category     string          `json:"category"`
	Specimen     string          `json:"specimen"`
	Performed    string          `json:"performed"`
	Reported     string          `json:"reported"`
	ReportExtras json.RawMessage `json:"reportExtras,omitempty"`
	Fields       []ResultField   `json:"fields"`
}

type FinalReport struct {
	RefNo             string            `json:"refNo"`
	CaseNo            string            `json:"caseNo"`
	Name              string            `json:"name"`
	Age               int               `json:"age"`
	Gender            Gender            `json:"gender"`
	Phone             string            `json:"phone"`
	FatherHusbandName string            `json:"fatherHusbandName"`
	NICNo             string            `json:"nicNo"`
	Specimen          string            `json:"specimen"`
	ReferencedBy      string            `json:"referencedBy"`
	ResultAddedBy     string            `json:"resultAddedBy"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	Tests             []FinalReportTest `json:"tests"`
}

type PublicReport struct {
	Success            bool                `json:"success"`
	RegistrationReport *RegistrationReport `json:"registrationReport"`
	FinalReport        *FinalReport        `json:"finalReport"`
	HasResults         bool                `json:"hasResults"`
}
