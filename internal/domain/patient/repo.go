package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("patient not found")
	ErrTestNotFound = errors.New("test not found on patient")
	ErrInvalid      = errors.New("invalid patient request")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...)
}

type Repository interface {
	// NextRefNo allocates the next registration number.
	NextRefNo(ctx context.Context) (int64, error)
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	FindForReport(ctx context.Context, refNo, phone, name string) (*Patient, error)
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error)
	ListByResultStatus(ctx context.Context, statuses ...ResultStatus) ([]*Patient, error)
	Search(ctx context.Context, q string, limit int) ([]*Summary, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, status PaymentStatus, updatedBy string) (*Patient, error)
	// UpdateBilling writes the money columns and payment status of p.
	UpdateBilling(ctx context.Context, p *Patient) error
	RemoveTest(ctx context.Context, id, testID uuid.UUID) error
	// SaveResults upserts p.Results by test id and writes the result status.
	SaveResults(ctx context.Context, p *Patient) error
	ResetResults(ctx context.Context, id uuid.UUID) error
	Approve(ctx context.Context, id uuid.UUID, approvedBy string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
