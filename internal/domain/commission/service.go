package commission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// ValidationError reports a bad or incomplete report request. It is raised
// before any data is fetched.
type ValidationError struct {
	Missing []string
	msg     string
}

func (e *ValidationError) Error() string { return e.msg }

// requiredMessage renders "a, b, and c are required" or "a and b are required".
func requiredMessage(fields []string) string {
	switch len(fields) {
	case 1:
		return fields[0] + " is required"
	case 2:
		return fields[0] + " and " + fields[1] + " are required"
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1] + " are required"
	}
}

// period resolves the request into an inclusive UTC window. The end date is
// extended to the last millisecond of that day.
func (q Query) period(requireDoctor bool) (time.Time, time.Time, error) {
	required := []string{"startDate", "endDate"}
	values := []string{q.StartDate, q.EndDate}
	if requireDoctor {
		required = append([]string{"doctorName"}, required...)
		values = append([]string{q.DoctorName}, values...)
	}

	var missing []string
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, required[i])
		}
	}
	if len(missing) > 0 {
		return time.Time{}, time.Time{}, &ValidationError{Missing: missing, msg: requiredMessage(required)}
	}

	from, err := time.Parse(dateLayout, q.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{msg: fmt.Sprintf("invalid startDate %q: expected YYYY-MM-DD", q.StartDate)}
	}
	end, err := time.Parse(dateLayout, q.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{msg: fmt.Sprintf("invalid endDate %q: expected YYYY-MM-DD", q.EndDate)}
	}
	to := end.Add(24*time.Hour - time.Millisecond)
	return from, to, nil
}

type Service struct {
	patients PatientFinder
	logger   zerolog.Logger
}

func NewService(patients PatientFinder, logger zerolog.Logger) *Service {
	return &Service{patients: patients, logger: logger}
}

func (s *Service) fetch(ctx context.Context, report string, q Query, f Filter) ([]*PatientBilling, error) {
	patients, err := s.patients.FindReferrals(ctx, f)
	if err != nil {
		s.logger.Error().Err(err).
			Str("report", report).
			Str("doctor_name", q.DoctorName).
			Str("start_date", q.StartDate).
			Str("end_date", q.EndDate).
			Msg("commission report failed")
		return nil, fmt.Errorf("%s: %w", report, err)
	}
	return patients, nil
}

func (s *Service) doctorPatients(ctx context.Context, report string, q Query) ([]*PatientBilling, error) {
	from, to, err := q.period(true)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, report, q, Filter{DoctorName: q.DoctorName, From: from, To: to})
}

func (s *Service) referralPatients(ctx context.Context, report string, q Query) ([]*PatientBilling, error) {
	from, to, err := q.period(false)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, report, q, Filter{DoctorName: q.DoctorName, ExcludeSelf: true, From: from, To: to})
}

func (s *Service) DoctorStatement(ctx context.Context, q Query) (*DoctorStatement, error) {
	patients, err := s.doctorPatients(ctx, "doctor-statement", q)
	if err != nil {
		return nil, err
	}
	return BuildDoctorStatement(q, patients), nil
}

func (s *Service) DoctorTestBreakdown(ctx context.Context, q Query) (*DoctorTestBreakdown, error) {
	patients, err := s.doctorPatients(ctx, "doctor-breakdown", q)
	if err != nil {
		return nil, err
	}
	return BuildDoctorTestBreakdown(q, patients), nil
}

func (s *Service) LabReferralSummary(ctx context.Context, q Query) (*LabReferralSummary, error) {
	patients, err := s.referralPatients(ctx, "lab-referral-summary", q)
	if err != nil {
		return nil, err
	}
	return BuildLabReferralSummary(q, patients), nil
}

func (s *Service) DoctorPatients(ctx context.Context, q Query) (*PatientList, error) {
	patients, err := s.doctorPatients(ctx, "doctor-patients", q)
	if err != nil {
		return nil, err
	}
	return &PatientList{Patients: nonNil(patients)}, nil
}

func (s *Service) LabReferralPatients(ctx context.Context, q Query) (*PatientList, error) {
	patients, err := s.referralPatients(ctx, "lab-referral-patients", q)
	if err != nil {
		return nil, err
	}
	return &PatientList{Patients: nonNil(patients)}, nil
}

func nonNil(p []*PatientBilling) []*PatientBilling {
	if p == nil {
		return []*PatientBilling{}
	}
	return p
}
