package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/labcore/lis/internal/platform/websocket"
)

const (
	maxHeaderMargin  = 100
	maxHistoryCount  = 10
	defaultUpdatedBy = "Admin"
)

type Service struct {
	repo   Repository
	events websocket.EventPublisher
	logger zerolog.Logger
}

func NewService(repo Repository, events websocket.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{repo: repo, events: events, logger: logger.With().Str("component", "settings").Logger()}
}

// LabInfo returns the lab profile, or nil when it has never been saved.
func (s *Service) LabInfo(ctx context.Context) (*LabInfo, error) {
	li, err := s.repo.GetLabInfo(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return li, err
}

func (s *Service) SaveLabInfo(ctx context.Context, li *LabInfo) (bool, error) {
	for _, f := range []*string{&li.LabName, &li.PhoneNumber, &li.Email, &li.Address, &li.LogoURL, &li.Website, &li.Description} {
		*f = strings.TrimSpace(*f)
	}
	if li.LabName == "" || li.PhoneNumber == "" || li.Email == "" {
		return false, invalid("labName, phoneNumber and email are required")
	}
	return s.repo.SaveLabInfo(ctx, li)
}

// General returns the print settings, falling back to defaults.
func (s *Service) General(ctx context.Context) (*General, error) {
	g, err := s.repo.GetGeneral(ctx)
	if errors.Is(err, ErrNotFound) {
		return defaultGeneral(), nil
	}
	return g, err
}

func (s *Service) UpdateGeneral(ctx context.Context, u GeneralUpdate) (*General, error) {
	g, err := s.General(ctx)
	if err != nil {
		return nil, err
	}
	if u.PrintShowHeader != nil {
		g.PrintShowHeader = *u.PrintShowHeader
	}
	if u.PrintShowFooter != nil {
		g.PrintShowFooter = *u.PrintShowFooter
	}
	if u.HeaderTopMargin != nil {
		if *u.HeaderTopMargin < 0 || *u.HeaderTopMargin > maxHeaderMargin {
			return nil, invalid("Header top margin must be between 0 and %dmm", maxHeaderMargin)
		}
		g.HeaderTopMargin = *u.HeaderTopMargin
	}
	if u.TableWidthMode != nil {
		switch mode := TableWidthMode(*u.TableWidthMode); mode {
		case TableWidthSmart, TableWidthFull:
			g.TableWidthMode = mode
		default:
			return nil, invalid(`Table width mode must be either "smart" or "full"`)
		}
	}
	g.UpdatedBy = updater(u.UpdatedBy)

	if err := s.repo.SaveGeneral(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func updater(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return defaultUpdatedBy
}

func parseType(raw string) (FilterType, error) {
	t, ok := ParseFilterType(raw)
	if !ok {
		return "", invalid("Invalid filter type")
	}
	return t, nil
}

// Filters returns all filter settings in a fixed order, filling in
// defaults for types never saved.
func (s *Service) Filters(ctx context.Context) ([]*Filter, error) {
	stored, err := s.repo.ListFilters(ctx)
	if err != nil {
		return nil, err
	}
	byType := make(map[FilterType]*Filter, len(stored))
	for _, f := range stored {
		byType[f.FilterType] = f
	}
	out := make([]*Filter, 0, len(FilterTypes))
	for _, t := range FilterTypes {
		if f, ok := byType[t]; ok {
			out = append(out, f)
		} else {
			out = append(out, defaultFilter(t))
		}
	}
	return out, nil
}

func (s *Service) Filter(ctx context.Context, raw string) (*Filter, error) {
	t, err := parseType(raw)
	if err != nil {
		return nil, err
	}
	return s.filter(ctx, t)
}

func (s *Service) filter(ctx context.Context, t FilterType) (*Filter, error) {
	f, err := s.repo.GetFilter(ctx, t)
	if errors.Is(err, ErrNotFound) {
		return defaultFilter(t), nil
	}
	return f, err
}

// SetFilter activates a day limit on a list screen.
func (s *Service) SetFilter(ctx context.Context, raw string, daysLimit int, updatedBy string) (*Filter, error) {
	t, err := parseType(raw)
	if err != nil {
		return nil, err
	}
	if daysLimit < 1 {
		return nil, invalid("Days limit must be at least 1")
	}
	f, err := s.filter(ctx, t)
	if err != nil {
		return nil, err
	}
	f.DaysLimit = &daysLimit
	f.IsActive = true
	f.UpdatedBy = updater(updatedBy)
	return s.saveFilter(ctx, f)
}

// ResetFilter removes the day limit. History settings are kept.
func (s *Service) ResetFilter(ctx context.Context, raw string) (*Filter, error) {
	t, err := parseType(raw)
	if err != nil {
		return nil, err
	}
	f, err := s.filter(ctx, t)
	if err != nil {
		return nil, err
	}
	f.DaysLimit = nil
	f.IsActive = false
	return s.saveFilter(ctx, f)
}

func (s *Service) UpdateHistory(ctx context.Context, raw string, u HistoryUpdate) (*Filter, error) {
	t, err := parseType(raw)
	if err != nil {
		return nil, err
	}
	f, err := s.filter(ctx, t)
	if err != nil {
		return nil, err
	}
	if u.HistoryResultsCount != nil {
		if *u.HistoryResultsCount < 0 || *u.HistoryResultsCount > maxHistoryCount {
			return nil, invalid("History results count must be between 0 and %d", maxHistoryCount)
		}
		f.HistoryResultsCount = *u.HistoryResultsCount
	}
	if u.HistoryResultsDirection != "" {
		switch dir := HistoryDirection(u.HistoryResultsDirection); dir {
		case LeftToRight, RightToLeft:
			f.HistoryResultsDirection = dir
		default:
			return nil, invalid("History results direction must be left-to-right or right-to-left")
		}
	}
	f.UpdatedBy = updater(u.UpdatedBy)
	return s.saveFilter(ctx, f)
}

func (s *Service) saveFilter(ctx context.Context, f *Filter) (*Filter, error) {
	if err := s.repo.SaveFilter(ctx, f); err != nil {
		return nil, err
	}
	ev := websocket.NewEvent(websocket.EventFilterUpdated, "filter", string(f.FilterType), map[string]interface{}{
		"filterType": f.FilterType,
		"daysLimit":  f.DaysLimit,
		"isActive":   f.IsActive,
	})
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("filter_type", string(f.FilterType)).Msg("publish filter update")
	}
	return f, nil
}
