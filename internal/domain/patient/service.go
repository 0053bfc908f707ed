package patient

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/labcore/lis/internal/domain/catalog"
	"github.com/labcore/lis/internal/domain/commission"
	"github.com/labcore/lis/internal/platform/db"
	"github.com/labcore/lis/internal/platform/websocket"
)

const searchLimit = 10

// TemplateSource resolves ordered test ids to catalog entries.
type TemplateSource interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Template, error)
}

// RateSource returns a referring doctor's live commission rates.
type RateSource interface {
	Rates(ctx context.Context, doctorName string) (routine, special float64, err error)
}

type Service struct {
	repo      Repository
	templates TemplateSource
	rates     RateSource
	tx        db.TxRunner
	events    websocket.EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, templates TemplateSource, rates RateSource, tx db.TxRunner,
	events websocket.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		templates: templates,
		rates:     rates,
		tx:        tx,
		events:    events,
		logger:    logger.With().Str("component", "patient").Logger(),
		now:       time.Now,
	}
}

// publish runs after the change is stored; a failed push is logged only.
func (s *Service) publish(ctx context.Context, eventType string, p *Patient, extra map[string]interface{}) {
	data := map[string]interface{}{"patientId": p.ID, "patientName": p.Name}
	for k, v := range extra {
		data[k] = v
	}
	ev := websocket.NewEvent(eventType, "patient", p.ID.String(), data)
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("type", eventType).Str("patient_id", p.ID.String()).Msg("publish event")
	}
}

func caseNo(at time.Time, refNo string) string {
	return at.Format("20060102") + "-" + refNo
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Patient, error) {
	p := &Patient{
		Name:                   strings.TrimSpace(req.Name),
		Age:                    req.Age,
		Phone:                  strings.TrimSpace(req.Phone),
		FatherHusbandName:      strings.TrimSpace(req.FatherHusbandName),
		NICNo:                  strings.TrimSpace(req.NICNo),
		Specimen:               strings.TrimSpace(req.Specimen),
		ReferencedBy:           strings.TrimSpace(req.ReferencedBy),
		PatientRegisteredBy:    req.PatientRegisteredBy,
		PaymentStatusUpdatedBy: req.PaymentStatusUpdatedBy,
		ResultStatus:           ResultPending,
		Results:                []Result{},
	}
	gender, genderOK := ParseGender(req.Gender)
	if p.Name == "" || p.Age <= 0 || !genderOK || p.Phone == "" {
		return nil, invalid("Missing required fields")
	}
	p.Gender = gender
	if len(req.SelectedTests) == 0 {
		return nil, invalid("Please select at least one test")
	}
	if p.Specimen == "" {
		p.Specimen = DefaultSpecimen
	}
	if p.ReferencedBy == "" || strings.EqualFold(p.ReferencedBy, commission.SelfReferral) {
		p.ReferencedBy = commission.SelfReferral
	}
	if p.PaymentStatusUpdatedBy == "" {
		p.PaymentStatusUpdatedBy = p.PatientRegisteredBy
	}

	ids := lo.Uniq(lo.Map(req.SelectedTests, func(t SelectedTest, _ int) uuid.UUID { return t.TestID }))
	templates, err := s.templates.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load selected tests: %w", err)
	}
	byID := lo.KeyBy(templates, func(t *catalog.Template) uuid.UUID { return t.ID })
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, invalid("test %s does not exist", id)
		}
	}
	p.Tests = lo.Map(ids, func(id uuid.UUID, _ int) TestLine {
		t := byID[id]
		return TestLine{
			TestID:           t.ID,
			TestName:         t.TestName,
			TestType:         string(t.TestType),
			Price:            t.TestPrice,
			IsDiagnosticTest: t.IsDiagnosticTest,
		}
	})

	if p.ReferencedBy != commission.SelfReferral {
		routine, special, err := s.rates.Rates(ctx, p.ReferencedBy)
		if err != nil {
			return nil, err
		}
		p.Commission = commission.Snapshot{Routine: routine, Special: special}
	}

	if req.PaidAmount < 0 {
		return nil, invalid("paidAmount must not be negative")
	}
	b := bill{Total: round2(lo.SumBy(p.Tests, func(t TestLine) float64 { return t.Price })), PaidAmount: req.PaidAmount}
	if b.DiscountPercentage, b.DiscountAmount, err = discount(b.Total, req.DiscountPercentage, req.DiscountAmount); err != nil {
		return nil, err
	}
	b.settle()
	b.applyTo(p)

	if req.PaymentStatus != "" {
		status, ok := ParsePaymentStatus(req.PaymentStatus)
		if !ok {
			return nil, invalid("paymentStatus must be Paid, Not Paid or Partially Paid")
		}
		p.PaymentStatus = status
	} else {
		p.PaymentStatus = b.status()
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		seq, err := s.repo.NextRefNo(ctx)
		if err != nil {
			return fmt.Errorf("allocate ref no: %w", err)
		}
		p.RefNo = fmt.Sprintf("%06d", seq)
		p.CaseNo = caseNo(s.now(), p.RefNo)
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, websocket.EventPatientRegistered, p, map[string]interface{}{"refNo": p.RefNo})
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) Search(ctx context.Context, q string) ([]*Summary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []*Summary{}, nil
	}
	return s.repo.Search(ctx, q, searchLimit)
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, u PaymentUpdate) (*Patient, error) {
	status, ok := ParsePaymentStatus(u.PaymentStatus)
	if !ok || strings.TrimSpace(u.PaymentStatusUpdatedBy) == "" {
		return nil, invalid("Payment status and updater name required")
	}
	p, err := s.repo.UpdatePayment(ctx, id, status, u.PaymentStatusUpdatedBy)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, websocket.EventPatientPaymentUpdated, p, map[string]interface{}{"paymentStatus": p.PaymentStatus})
	return p, nil
}

// UpdateBilling applies a new discount or paid amount and recomputes net and due.
func (s *Service) UpdateBilling(ctx context.Context, id uuid.UUID, u BillingUpdate) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	b := billOf(p)
	if u.DiscountPercentage != nil || u.DiscountAmount != nil {
		if b.DiscountPercentage, b.DiscountAmount, err = discount(b.Total, u.DiscountPercentage, u.DiscountAmount); err != nil {
			return nil, err
		}
	}
	if u.PaidAmount != nil {
		if *u.PaidAmount < 0 {
			return nil, invalid("paidAmount must not be negative")
		}
		b.PaidAmount = *u.PaidAmount
	}
	b.settle()
	b.applyTo(p)

	if u.PaymentStatus != "" {
		status, ok := ParsePaymentStatus(u.PaymentStatus)
		if !ok {
			return nil, invalid("paymentStatus must be Paid, Not Paid or Partially Paid")
		}
		p.PaymentStatus = status
	} else {
		p.PaymentStatus = b.status()
	}
	if u.UpdatedBy != "" {
		p.PaymentStatusUpdatedBy = u.UpdatedBy
	}

	if err := s.repo.UpdateBilling(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, websocket.EventPatientBillingUpdated, p, map[string]interface{}{"netTotal": p.NetTotal, "dueAmount": p.DueAmount})
	return p, nil
}

// DeleteTest drops one ordered test and recomputes the bill. The discount
// amount is kept as is.
func (s *Service) DeleteTest(ctx context.Context, id, testID uuid.UUID) (*Patient, error) {
	var p *Patient
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if p, err = s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.repo.RemoveTest(ctx, id, testID); err != nil {
			return err
		}
		p.Tests = lo.Reject(p.Tests, func(t TestLine, _ int) bool { return t.TestID == testID })

		b := billOf(p)
		b.Total = round2(lo.SumBy(p.Tests, func(t TestLine) float64 { return t.Price }))
		b.settle()
		b.applyTo(p)
		return s.repo.UpdateBilling(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, websocket.EventPatientTestDeleted, p, map[string]interface{}{"testId": testID})
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, websocket.EventPatientDeleted, p, nil)
	return nil
}

// PendingResults lists patients still missing a result for some
// non-diagnostic test.
func (s *Service) PendingResults(ctx context.Context) ([]*Patient, error) {
	patients, err := s.repo.ListByResultStatus(ctx, ResultPending, ResultAdded)
	if err != nil {
		return nil, err
	}
	return lo.Filter(patients, func(p *Patient, _ int) bool {
		return len(p.Results) < p.nonDiagnosticCount()
	}), nil
}

func (s *Service) AddedResults(ctx context.Context) ([]*Patient, error) {
	return s.repo.ListByResultStatus(ctx, ResultAdded)
}

// ResultSheet returns each ordered test with its template fields, saved
// values taking precedence over template defaults.
func (s *Service) ResultSheet(ctx context.Context, id uuid.UUID) (*ResultSheet, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	templates, err := s.templatesFor(ctx, p)
	if err != nil {
		return nil, err
	}
	saved := lo.KeyBy(p.Results, func(r Result) uuid.UUID { return r.TestID })

	sheet := &ResultSheet{Patient: p, Tests: make([]TestWithFields, 0, len(p.Tests))}
	for _, line := range p.Tests {
		row := TestWithFields{TestLine: line, Fields: []ResultField{}}
		tpl, ok := templates[line.TestID]
		if ok {
			row.Category = tpl.Category
			row.Specimen = tpl.Specimen
			row.ReportExtras = tpl.ReportExtras
			row.ScaleConfig = tpl.ScaleConfig
			row.Fields = mergeFields(tpl.Fields, saved[line.TestID].Fields)
		} else if res, ok := saved[line.TestID]; ok {
			row.Fields = res.Fields
		}
		sheet.Tests = append(sheet.Tests, row)
	}
	return sheet, nil
}

func mergeFields(template []catalog.Field, saved []ResultField) []ResultField {
	byName := lo.KeyBy(saved, func(f ResultField) string { return f.FieldName })
	return lo.Map(template, func(tf catalog.Field, _ int) ResultField {
		f := ResultField{FieldName: tf.FieldName, DefaultValue: tf.DefaultValue, Unit: tf.Unit, Range: tf.Range, Category: tf.Category}
		if sv, ok := byName[tf.FieldName]; ok {
			f.DefaultValue = sv.DefaultValue
		}
		return f
	})
}

func (s *Service) templatesFor(ctx context.Context, p *Patient) (map[uuid.UUID]*catalog.Template, error) {
	ids := lo.Map(p.Tests, func(t TestLine, _ int) uuid.UUID { return t.TestID })
	templates, err := s.templates.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return lo.KeyBy(templates, func(t *catalog.Template) uuid.UUID { return t.ID }), nil
}

// SaveResults upserts the submitted results by test id. Any stored result
// marks the patient Added.
func (s *Service) SaveResults(ctx context.Context, id uuid.UUID, sub ResultsSubmission) (*Patient, error) {
	if len(sub.Tests) == 0 {
		return nil, invalid("at least one test result is required")
	}
	var p *Patient
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if p, err = s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		ordered := lo.SliceToMap(p.Tests, func(t TestLine) (uuid.UUID, string) { return t.TestID, t.TestName })

		results := p.Results
		for _, r := range sub.Tests {
			name, ok := ordered[r.TestID]
			if !ok {
				return invalid("test %s was not ordered for this patient", r.TestID)
			}
			if r.TestName == "" {
				r.TestName = name
			}
			if r.Fields == nil {
				r.Fields = []ResultField{}
			}
			if _, idx, found := lo.FindIndexOf(results, func(e Result) bool { return e.TestID == r.TestID }); found {
				results[idx] = r
			} else {
				results = append(results, r)
			}
		}
		p.Results = results
		p.ResultStatus = ResultPending
		if len(p.Results) > 0 {
			p.ResultStatus = ResultAdded
		}
		p.ResultAddedBy = sub.ResultAddedBy
		return s.repo.SaveResults(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, websocket.EventResultAdded, p, map[string]interface{}{"resultStatus": p.ResultStatus})
	return p, nil
}

func (s *Service) ResetResults(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p *Patient
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if p, err = s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		return s.repo.ResetResults(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	p.Results = []Result{}
	p.ResultStatus = ResultPending
	p.ResultAddedBy = ""
	p.FinalReportApprovedBy = ""
	s.publish(ctx, websocket.EventResultReset, p, nil)
	return p, nil
}

// ApproveFinalReport records who signed off the results.
func (s *Service) ApproveFinalReport(ctx context.Context, id uuid.UUID, approvedBy string) (*Patient, error) {
	approvedBy = strings.TrimSpace(approvedBy)
	if approvedBy == "" {
		return nil, invalid("approvedBy is required")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ResultStatus != ResultAdded {
		return nil, invalid("results must be added before approval")
	}
	if err := s.repo.Approve(ctx, id, approvedBy); err != nil {
		return nil, err
	}
	p.FinalReportApprovedBy = approvedBy
	return p, nil
}

// PublicReport looks a patient up by registration number and phone for the
// unauthenticated report page. Diagnostic tests are never shown.
func (s *Service) PublicReport(ctx context.Context, q PublicQuery) (*PublicReport, error) {
	refNo := strings.TrimSpace(q.PatientNumber)
	phone := strings.TrimSpace(q.Phone)
	if refNo == "" || phone == "" {
		return nil, invalid("Patient number and phone are required")
	}
	p, err := s.repo.FindForReport(ctx, refNo, phone, strings.TrimSpace(q.Name))
	if err != nil {
		return nil, err
	}
	templates, err := s.templatesFor(ctx, p)
	if err != nil {
		return nil, err
	}

	visible := lo.Reject(p.Tests, func(t TestLine, _ int) bool { return t.IsDiagnosticTest })
	out := &PublicReport{Success: true, RegistrationReport: registrationReport(p, visible, templates)}
	if p.ResultStatus == ResultAdded && len(p.Results) > 0 {
		out.FinalReport = finalReport(p, visible, templates)
		out.HasResults = out.FinalReport != nil
	}
	return out, nil
}

func registrationReport(p *Patient, tests []TestLine, templates map[uuid.UUID]*catalog.Template) *RegistrationReport {
	return &RegistrationReport{
		RefNo:             p.RefNo,
		CaseNo:            p.CaseNo,
		Name:              p.Name,
		Age:               p.Age,
		Gender:            p.Gender,
		Phone:             p.Phone,
		FatherHusbandName: p.FatherHusbandName,
		NICNo:             p.NICNo,
		Specimen:          p.Specimen,
		ReferencedBy:      p.ReferencedBy,
		CreatedAt:         p.CreatedAt,
		Tests: lo.Map(tests, func(t TestLine, _ int) RegistrationTest {
			rt := RegistrationTest{TestName: t.TestName, Price: t.Price}
			if tpl, ok := templates[t.TestID]; ok {
				rt.TestCode = tpl.TestCode
				rt.Specimen = tpl.Specimen
			}
			return rt
		}),
		Total:              p.Total,
		DiscountPercentage: p.DiscountPercentage,
		DiscountAmount:     p.DiscountAmount,
		NetTotal:           p.NetTotal,
		PaidAmount:         p.PaidAmount,
		DueAmount:          p.DueAmount,
	}
}

// finalReport returns nil when none of the visible tests has a result.
func finalReport(p *Patient, tests []TestLine, templates map[uuid.UUID]*catalog.Template) *FinalReport {
	results := lo.KeyBy(p.Results, func(r Result) uuid.UUID { return r.TestID })
	rows := lo.FilterMap(tests, func(t TestLine, _ int) (FinalReportTest, bool) {
		res, ok := results[t.TestID]
		if !ok {
			return FinalReportTest{}, false
		}
		row := FinalReportTest{TestName: t.TestName, Fields: res.Fields}
		if tpl, ok := templates[t.TestID]; ok {
			row.TestCode = tpl.TestCode
			row.Category = tpl.Category
			row.Specimen = tpl.Specimen
			row.Performed = tpl.Performed
			row.Reported = tpl.Reported
			row.ReportExtras = tpl.ReportExtras
		}
		return row, true
	})
	if len(rows) == 0 {
		return nil
	}
	return &FinalReport{
		RefNo:             p.RefNo,
		CaseNo:            p.CaseNo,
		Name:              p.Name,
		Age:               p.Age,
		Gender:            p.Gender,
		Phone:             p.Phone,
		FatherHusbandName: p.FatherHusbandName,
		NICNo:             p.NICNo,
		Specimen:          p.Specimen,
		ReferencedBy:      p.ReferencedBy,
		ResultAddedBy:     p.ResultAddedBy,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Tests:             rows,
	}
}

// parseDays turns a "days" query value into a lower bound on created_at.
func parseDays(raw string, now time.Time) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return nil, invalid("days must be a positive number")
	}
	since := now.AddDate(0, 0, -days)
	return &since, nil
}
