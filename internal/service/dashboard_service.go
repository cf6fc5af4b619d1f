package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/pnl"
)

type DashboardService struct {
	loader *Loader
}

func NewDashboardService(loader *Loader) *DashboardService {
	return &DashboardService{loader: loader}
}

// DashboardQuery selects a link and the filters applied to it.
type DashboardQuery struct {
	LinkID           string
	Criteria         domain.FilterCriteria
	ExcludeSeverance bool
}

// DashboardView is everything the dashboard page renders for one selection.
type DashboardView struct {
	Source     string           `json:"source"`
	Records    []domain.Record  `json:"records"`
	KPIs       domain.KPIBundle `json:"kpis"`
	Options    domain.Options   `json:"options"`
	FetchError string           `json:"fetchError,omitempty"`
}

func (s *DashboardService) View(ctx context.Context, q DashboardQuery) (*DashboardView, error) {
	if err := pnl.ValidatePeriodRange(q.Criteria.PeriodStart, q.Criteria.PeriodEnd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	ds, err := s.loader.Load(ctx, q.Criteria.Session, SlotDashboard, q.LinkID)
	if err != nil {
		return nil, err
	}

	records := pnl.FilterRecords(ds.Records, q.Criteria)
	return &DashboardView{
		Source:     ds.Source,
		Records:    records,
		KPIs:       pnl.ComputeKPIs(records, pnl.KPIOptions{ExcludeSeverance: q.ExcludeSeverance}),
		Options:    pnl.BuildOptions(ds.Records, q.Criteria.Session),
		FetchError: ds.FetchError,
	}, nil
}

func (s *DashboardService) Records(ctx context.Context, q DashboardQuery) ([]domain.Record, string, error) {
	view, err := s.View(ctx, q)
	if err != nil {
		return nil, "", err
	}
	return view.Records, view.FetchError, nil
}

func (s *DashboardService) KPIs(ctx context.Context, q DashboardQuery) (domain.KPIBundle, string, error) {
	view, err := s.View(ctx, q)
	if err != nil {
		return domain.KPIBundle{}, "", err
	}
	return view.KPIs, view.FetchError, nil
}

// Options lists selector values of the link as the session sees them.
func (s *DashboardService) Options(ctx context.Context, session domain.Session, linkID string) (domain.Options, string, error) {
	ds, err := s.loader.Load(ctx, session, SlotDashboard, linkID)
	if err != nil {
		return domain.Options{}, "", err
	}
	return pnl.BuildOptions(ds.Records, session), ds.FetchError, nil
}

// noDataError attaches a failed source's fetch error to ErrNoData so callers
// can tell a missing row from a missing source.
func noDataError(err error, sources ...*domain.Dataset) error {
	if !errors.Is(err, pnl.ErrNoData) {
		return err
	}
	for _, ds := range sources {
		if ds != nil && ds.FetchError != "" {
			return fmt.Errorf("%w: source %s: %s", pnl.ErrNoData, ds.Source, ds.FetchError)
		}
	}
	return err
}
