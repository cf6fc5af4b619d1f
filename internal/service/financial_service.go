package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/pnl"
	"golang.org/x/sync/errgroup"
)

type FinancialService struct {
	loader *Loader
}

func NewFinancialService(loader *Loader) *FinancialService {
	return &FinancialService{loader: loader}
}

// ComparisonQuery describes a variance request. BudgetLinkID is used by the
// actual-budget and YTD views; StoreB by store-store.
type ComparisonQuery struct {
	Session      domain.Session
	ActualLinkID string
	BudgetLinkID string
	Store        string
	StoreB       string
	Month        string
	Fields       []string
	Adjustment   domain.Adjustment
}

// LoadPair fetches the actual and budget sources concurrently. budgetID may
// be empty, in which case budget is nil.
func (s *FinancialService) LoadPair(ctx context.Context, session domain.Session, actualID, budgetID string) (actual, budget *domain.Dataset, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		actual, err = s.loader.Load(gctx, session, SlotActual, actualID)
		return err
	})
	if budgetID != "" {
		g.Go(func() error {
			var err error
			budget, err = s.loader.Load(gctx, session, SlotBudget, budgetID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return actual, budget, nil
}

func (s *FinancialService) ActualBudget(ctx context.Context, q ComparisonQuery) (domain.Comparison, error) {
	fields, err := s.prepare(q, q.Store)
	if err != nil {
		return domain.Comparison{}, err
	}
	if q.BudgetLinkID == "" {
		return domain.Comparison{}, fmt.Errorf("%w: budget link is required", ErrInvalidInput)
	}

	actual, budget, err := s.LoadPair(ctx, q.Session, q.ActualLinkID, q.BudgetLinkID)
	if err != nil {
		return domain.Comparison{}, err
	}
	cmp, err := pnl.CompareActualBudget(actual, budget, q.Store, q.Month, fields, q.Adjustment)
	return cmp, noDataError(err, actual, budget)
}

func (s *FinancialService) StoreStore(ctx context.Context, q ComparisonQuery) (domain.Comparison, error) {
	fields, err := s.prepare(q, q.Store, q.StoreB)
	if err != nil {
		return domain.Comparison{}, err
	}

	ds, err := s.loader.Load(ctx, q.Session, SlotCompare, q.ActualLinkID)
	if err != nil {
		return domain.Comparison{}, err
	}
	cmp, err := pnl.CompareStores(ds, q.Store, q.StoreB, q.Month, fields, q.Adjustment)
	return cmp, noDataError(err, ds)
}

// YTD sums the actual source, and the budget source when given, from the
// first month of the year up to q.Month.
func (s *FinancialService) YTD(ctx context.Context, q ComparisonQuery) (domain.YTDResult, error) {
	fields, err := s.prepare(q, q.Store)
	if err != nil {
		return domain.YTDResult{}, err
	}

	actual, budget, err := s.LoadPair(ctx, q.Session, q.ActualLinkID, q.BudgetLinkID)
	if err != nil {
		return domain.YTDResult{}, err
	}
	res, err := pnl.CompareYTD(actual, budget, q.Store, q.Month, fields, q.Adjustment)
	if err != nil {
		return domain.YTDResult{}, noDataError(err, actual, budget)
	}
	return res, nil
}

func (s *FinancialService) prepare(q ComparisonQuery, stores ...string) ([]domain.Field, error) {
	if q.ActualLinkID == "" {
		return nil, fmt.Errorf("%w: link is required", ErrInvalidInput)
	}
	if q.Month == "" {
		return nil, fmt.Errorf("%w: month is required", ErrInvalidInput)
	}
	for _, store := range stores {
		if store == "" {
			return nil, fmt.Errorf("%w: store is required", ErrInvalidInput)
		}
		if !pnl.Visible(q.Session, store) {
			return nil, fmt.Errorf("%w: %s", ErrForbidden, store)
		}
	}
	fields, err := pnl.ParseFields(q.Fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return fields, nil
}
