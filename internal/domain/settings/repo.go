package settings

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("settings not found")
	ErrInvalid  = errors.New("invalid settings")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...)
}

// Repository stores the singleton settings rows. Getters return ErrNotFound
// until the row has been saved once.
type Repository interface {
	GetLabInfo(ctx context.Context) (*LabInfo, error)
	// SaveLabInfo upserts and reports whether the row was created.
	SaveLabInfo(ctx context.Context, li *LabInfo) (created bool, err error)
	GetGeneral(ctx context.Context) (*General, error)
	SaveGeneral(ctx context.Context, g *General) error
	ListFilters(ctx context.Context) ([]*Filter, error)
	GetFilter(ctx context.Context, t FilterType) (*Filter, error)
	SaveFilter(ctx context.Context, f *Filter) error
}
