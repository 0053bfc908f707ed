package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...)
}

func normalize(d *Doctor) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return invalid("Doctor name is required")
	}
	if strings.EqualFold(d.Name, "self") {
		return invalid("Self is reserved for walk-in patients")
	}
	for _, p := range []struct {
		name  string
		value float64
	}{{"routinePercentage", d.RoutinePercentage}, {"specialPercentage", d.SpecialPercentage}} {
		if p.value < 0 || p.value > 100 {
			return invalid("%s must be between 0 and 100", p.name)
		}
	}
	for _, f := range []*string{&d.ClinicName, &d.Phone, &d.Email, &d.Address, &d.Specialty, &d.CNIC, &d.Notes} {
		*f = strings.TrimSpace(*f)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if err := normalize(d); err != nil {
		return err
	}
	return s.repo.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	if err := normalize(d); err != nil {
		return err
	}
	return s.repo.Update(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Doctor, error) {
	return s.repo.List(ctx)
}

// Rates returns the live commission percentages for a referring doctor.
// Unknown names get zero rates.
func (s *Service) Rates(ctx context.Context, name string) (routine, special float64, err error) {
	d, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("look up doctor %q: %w", name, err)
	}
	return d.RoutinePercentage, d.SpecialPercentage, nil
}
