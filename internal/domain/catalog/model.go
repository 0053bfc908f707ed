package catalog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TestType string

const (
	TestTypeRoutine TestType = "routine"
	TestTypeSpecial TestType = "special"
)

// ParseTestType accepts routine or special; empty means routine.
func ParseTestType(s string) (TestType, bool) {
	switch TestType(s) {
	case "", TestTypeRoutine:
		return TestTypeRoutine, true
	case TestTypeSpecial:
		return TestTypeSpecial, true
	}
	return "", false
}

// Field is one line of a result sheet.
type Field struct {
	FieldName    string `json:"fieldName"`
	FieldType    string `json:"fieldType,omitempty"`
	DefaultValue string `json:"defaultValue"`
	Unit         string `json:"unit"`
	Range        string `json:"range"`
	Category     string `json:"category,omitempty"`
}

type ScaleConfig struct {
	Thresholds []float64 `json:"thresholds"`
	Labels     []string  `json:"labels"`
}

type VisualScale struct {
	Thresholds []float64 `json:"thresholds"`
	Labels     []string  `json:"labels"`
	Colors     []string  `json:"colors"`
	RangeTexts []string  `json:"rangeTexts"`
}

// Template is a test the lab offers, with its price and result layout.
type Template struct {
	ID               uuid.UUID       `json:"id"`
	TestCode         int             `json:"testCode"`
	TestName         string          `json:"testName"`
	TestPrice        float64         `json:"testPrice"`
	TestType         TestType        `json:"testType"`
	Category         string          `json:"category"`
	Specimen         string          `json:"specimen"`
	Performed        string          `json:"performed"`
	Reported         string          `json:"reported"`
	Fields           []Field         `json:"fields"`
	IsDiagnosticTest bool            `json:"isDiagnosticTest"`
	ReportExtras     json.RawMessage `json:"reportExtras,omitempty"`
	ScaleConfig      *ScaleConfig    `json:"scaleConfig,omitempty"`
	VisualScale      *VisualScale    `json:"visualScale,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Summary is the trimmed shape returned by search.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	TestCode  int       `json:"testCode"`
	TestName  string    `json:"testName"`
	TestPrice float64   `json:"testPrice"`
	Category  string    `json:"category"`
}
