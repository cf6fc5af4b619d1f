package pnl

import (
	"fmt"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
)

const (
	ModeActualBudget = "actual-budget"
	ModeStoreStore   = "store-store"
)

// Variance compares a against b for each field. A zero b gives a 0 percent,
// unlike PercentOfRevenue which reports Undefined.
func Variance(a, b domain.Record, fields []domain.Field) []domain.VarianceRow {
	rows := make([]domain.VarianceRow, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, varianceRow(f, a.Get(f), b.Get(f)))
	}
	return rows
}

func varianceRow(f domain.Field, a, b float64) domain.VarianceRow {
	diff := SumDecimal(a, -b)
	pct := 0.0
	if b != 0 {
		pct = finite(diff / b * 100)
	}
	return domain.VarianceRow{Field: f, A: a, B: b, Variance: diff, VariancePercent: pct}
}

// ParseFields resolves field names; an empty list selects every field.
func ParseFields(names []string) ([]domain.Field, error) {
	if len(names) == 0 {
		return domain.AllFields(), nil
	}
	fields := make([]domain.Field, 0, len(names))
	seen := make(map[domain.Field]bool, len(names))
	for _, n := range names {
		f, ok := domain.ParseField(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, n)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		fields = append(fields, f)
	}
	return fields, nil
}

// CompareActualBudget builds the variance table for one store and month.
// Each side is adjusted against its own dataset.
func CompareActualBudget(actual, budget *domain.Dataset, store, month string, fields []domain.Field, adj domain.Adjustment) (domain.Comparison, error) {
	if actual == nil || budget == nil {
		return domain.Comparison{}, ErrNoData
	}
	a, okA := actual.Lookup(store, month)
	b, okB := budget.Lookup(store, month)
	if !okA || !okB {
		return domain.Comparison{}, ErrNoData
	}
	return domain.Comparison{
		Mode:   ModeActualBudget,
		Month:  month,
		LabelA: "Actual",
		LabelB: "Budget",
		Rows:   Variance(Adjust(a, actual, adj), Adjust(b, budget, adj), fields),
	}, nil
}

// CompareStores builds the variance table of storeA against storeB for one
// month of the same dataset.
func CompareStores(ds *domain.Dataset, storeA, storeB, month string, fields []domain.Field, adj domain.Adjustment) (domain.Comparison, error) {
	if ds == nil {
		return domain.Comparison{}, ErrNoData
	}
	a, okA := ds.Lookup(storeA, month)
	b, okB := ds.Lookup(storeB, month)
	if !okA || !okB {
		return domain.Comparison{}, ErrNoData
	}
	return domain.Comparison{
		Mode:   ModeStoreStore,
		Month:  month,
		LabelA: storeA,
		LabelB: storeB,
		Rows:   Variance(Adjust(a, ds, adj), Adjust(b, ds, adj), fields),
	}, nil
}
