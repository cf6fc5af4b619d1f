package service

import (
	"context"
	"testing"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/pnl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFinancial() *FinancialService {
	links, fetcher := fixture()
	return NewFinancialService(NewLoader(links, fetcher, nil, nil))
}

func TestActualBudget(t *testing.T) {
	svc := newFinancial()

	cmp, err := svc.ActualBudget(context.Background(), ComparisonQuery{
		Session:      clientSession,
		ActualLinkID: "actual",
		BudgetLinkID: "budget",
		Store:        "Glyfada",
		Month:        "Jan-24",
		Fields:       []string{"sales", "ebitda"},
		Adjustment:   domain.Adjustment{ExcludeSalesOfServices: true},
	})
	require.NoError(t, err)

	assert.Equal(t, pnl.ModeActualBudget, cmp.Mode)
	require.Len(t, cmp.Rows, 2)

	sales := cmp.Rows[0]
	assert.Equal(t, domain.FieldSales, sales.Field)
	assert.Equal(t, 1000.0, sales.A)
	assert.Equal(t, 1200.0, sales.B)
	assert.Equal(t, -200.0, sales.Variance)
	assert.InDelta(t, -16.6667, sales.VariancePercent, 0.001)

	ebitda := cmp.Rows[1]
	assert.Equal(t, 100.0, ebitda.A)
	assert.Equal(t, 400.0, ebitda.B)
	assert.Equal(t, -75.0, ebitda.VariancePercent)
}

func TestActualBudget_Errors(t *testing.T) {
	svc := newFinancial()
	ctx := context.Background()
	base := ComparisonQuery{Session: adminSession, ActualLinkID: "actual", BudgetLinkID: "budget", Store: "Glyfada", Month: "Jan-24"}

	q := base
	q.Session = clientSession
	q.Store = "Kifisia"
	_, err := svc.ActualBudget(ctx, q)
	assert.ErrorIs(t, err, ErrForbidden)

	q = base
	q.Fields = []string{"revenue"}
	_, err = svc.ActualBudget(ctx, q)
	assert.ErrorIs(t, err, ErrInvalidInput)

	q = base
	q.BudgetLinkID = ""
	_, err = svc.ActualBudget(ctx, q)
	assert.ErrorIs(t, err, ErrInvalidInput)

	q = base
	q.Month = "Mar-24"
	_, err = svc.ActualBudget(ctx, q)
	assert.ErrorIs(t, err, pnl.ErrNoData)

	q = base
	q.BudgetLinkID = "broken"
	_, err = svc.ActualBudget(ctx, q)
	assert.ErrorIs(t, err, pnl.ErrNoData)
	assert.ErrorContains(t, err, "unexpected status 404")

	q = base
	q.BudgetLinkID = "missing"
	_, err = svc.ActualBudget(ctx, q)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreStore(t *testing.T) {
	svc := newFinancial()
	ctx := context.Background()

	cmp, err := svc.StoreStore(ctx, ComparisonQuery{
		Session:      adminSession,
		ActualLinkID: "actual",
		Store:        "Glyfada",
		StoreB:       "Kifisia",
		Month:        "Jan-24",
		Fields:       []string{"sales"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Glyfada", cmp.LabelA)
	assert.Equal(t, "Kifisia", cmp.LabelB)
	assert.Equal(t, 100.0, cmp.Rows[0].Variance)
	assert.InDelta(t, 11.111, cmp.Rows[0].VariancePercent, 0.001)

	_, err = svc.StoreStore(ctx, ComparisonQuery{
		Session: clientSession, ActualLinkID: "actual", Store: "Glyfada", StoreB: "Kifisia", Month: "Jan-24",
	})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.StoreStore(ctx, ComparisonQuery{
		Session: adminSession, ActualLinkID: "actual", Store: "Glyfada", Month: "Jan-24",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestYTD(t *testing.T) {
	svc := newFinancial()
	ctx := context.Background()

	res, err := svc.YTD(ctx, ComparisonQuery{
		Session:      adminSession,
		ActualLinkID: "actual",
		BudgetLinkID: "budget",
		Store:        "Glyfada",
		Month:        "Feb-24",
		Fields:       []string{"sales"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jan-24", "Feb-24"}, res.Months)
	assert.Equal(t, 2100.0, res.Actual[domain.FieldSales])
	assert.Equal(t, 2200.0, res.Budget[domain.FieldSales])
	require.Len(t, res.Variance, 1)
	assert.Equal(t, -100.0, res.Variance[0].Variance)

	actualOnly, err := svc.YTD(ctx, ComparisonQuery{
		Session: adminSession, ActualLinkID: "actual", Store: "Glyfada", Month: "Jan-24", Fields: []string{"sales"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, actualOnly.Actual[domain.FieldSales])
	assert.Nil(t, actualOnly.Budget)

	_, err = svc.YTD(ctx, ComparisonQuery{
		Session: adminSession, ActualLinkID: "broken", Store: "Glyfada", Month: "Jan-24",
	})
	assert.ErrorIs(t, err, pnl.ErrNoData)

	res, err = svc.YTD(ctx, ComparisonQuery{
		Session:      adminSession,
		ActualLinkID: "actual",
		BudgetLinkID: "broken",
		Store:        "Glyfada",
		Month:        "Feb-24",
		Fields:       []string{"sales"},
	})
	require.ErrorIs(t, err, pnl.ErrNoData)
	assert.Contains(t, err.Error(), "404")
	assert.Nil(t, res.Budget, "a failed budget is never reported as zero sums")
}

func TestLoadPair_Concurrent(t *testing.T) {
	svc := newFinancial()
	actual, budget, err := svc.LoadPair(context.Background(), adminSession, "actual", "budget")
	require.NoError(t, err)
	assert.Equal(t, 3, actual.Len())
	assert.Equal(t, 2, budget.Len())

	actual, budget, err = svc.LoadPair(context.Background(), adminSession, "actual", "")
	require.NoError(t, err)
	assert.NotNil(t, actual)
	assert.Nil(t, budget)
}
