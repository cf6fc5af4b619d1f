package pnl

import "github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"

// Adjust derives EBITDA and net profit with the selected components taken out.
// It always starts from the unadjusted record held by source, so calling it on
// an already adjusted record does not compound. Records unknown to source are
// used as given.
func Adjust(rec domain.Record, source *domain.Dataset, adj domain.Adjustment) domain.Record {
	original := rec
	if o, ok := source.Lookup(rec.Store, rec.Month); ok {
		original = o
	}
	if adj.IsZero() {
		return original
	}

	ebitda := original.Get(domain.FieldEBITDA)
	netProfit := original.Get(domain.FieldNetProfit)
	if adj.ExcludeSalesOfServices {
		services := original.Get(domain.FieldSalesOfServices)
		ebitda = SumDecimal(ebitda, -services)
		netProfit = SumDecimal(netProfit, -services)
	}
	if adj.ExcludeBlueExpenses {
		blue := original.Get(domain.FieldBlueExpenses)
		ebitda = SumDecimal(ebitda, blue)
		netProfit = SumDecimal(netProfit, blue)
	}
	if adj.ExcludePepeExpenses {
		pepe := original.Get(domain.FieldPepeExpenses)
		ebitda = SumDecimal(ebitda, pepe)
		netProfit = SumDecimal(netProfit, pepe)
	}
	return original.With(domain.FieldEBITDA, ebitda).With(domain.FieldNetProfit, netProfit)
}

// AdjustAll applies Adjust to each record.
func AdjustAll(records []domain.Record, source *domain.Dataset, adj domain.Adjustment) []domain.Record {
	out := make([]domain.Record, len(records))
	for i, r := range records {
		out[i] = Adjust(r, source, adj)
	}
	return out
}
