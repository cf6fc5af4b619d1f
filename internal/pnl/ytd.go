package pnl

import (
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
)

// YTD sums fields for store over every month of ds up to and including
// target. Months are taken from the dataset's chronological month list, so a
// month missing for this store simply contributes nothing.
func YTD(ds *domain.Dataset, store, target string, fields []domain.Field, adj domain.Adjustment) (map[domain.Field]float64, []string) {
	if ds == nil {
		return map[domain.Field]float64{}, nil
	}
	months := MonthsUpTo(ChronologicalMonths(ds.Records), target)
	return ytdSums(ds, store, months, fields, adj), months
}

func ytdSums(ds *domain.Dataset, store string, months []string, fields []domain.Field, adj domain.Adjustment) map[domain.Field]float64 {
	include := toSet(months)
	var picked []domain.Record
	for _, r := range ds.Records {
		if r.Store == store && include[r.Month] {
			picked = append(picked, Adjust(r, ds, adj))
		}
	}
	sums := make(map[domain.Field]float64, len(fields))
	for _, f := range fields {
		sums[f] = Sum(picked, f)
	}
	return sums
}

// CompareYTD computes actual YTD and, when a budget dataset is present, budget
// YTD over the same month list plus the variance between them. A source whose
// fetch failed yields ErrNoData rather than zero sums.
func CompareYTD(actual, budget *domain.Dataset, store, target string, fields []domain.Field, adj domain.Adjustment) (domain.YTDResult, error) {
	if actual == nil || actual.FetchError != "" {
		return domain.YTDResult{}, ErrNoData
	}
	if budget != nil && budget.FetchError != "" {
		return domain.YTDResult{}, ErrNoData
	}
	sums, months := YTD(actual, store, target, fields, adj)
	res := domain.YTDResult{
		Store:       store,
		TargetMonth: target,
		Months:      months,
		Actual:      sums,
	}
	if budget == nil {
		return res, nil
	}

	res.Budget = ytdSums(budget, store, months, fields, adj)
	res.Variance = make([]domain.VarianceRow, 0, len(fields))
	for _, f := range fields {
		res.Variance = append(res.Variance, varianceRow(f, res.Actual[f], res.Budget[f]))
	}
	return res, nil
}
