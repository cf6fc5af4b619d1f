package pnl

import (
	"fmt"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
)

// Undefined is shown for a percentage whose denominator is zero.
const Undefined = "—"

// Sum adds field across records.
func Sum(records []domain.Record, field domain.Field) float64 {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.Get(field)
	}
	return SumDecimal(values...)
}

// TotalRevenue is sales plus sales of services.
func TotalRevenue(records []domain.Record) float64 {
	return SumDecimal(Sum(records, domain.FieldSales), Sum(records, domain.FieldSalesOfServices))
}

// PercentOfRevenue formats sum(field) as a share of total revenue.
func PercentOfRevenue(records []domain.Record, field domain.Field) string {
	return FormatPercent(Sum(records, field), TotalRevenue(records))
}

// FormatPercent renders value/base as "12.34%", or Undefined when base is 0.
func FormatPercent(value, base float64) string {
	if base == 0 {
		return Undefined
	}
	return fmt.Sprintf("%.2f%%", finite(value/base*100))
}

type KPIOptions struct {
	// ExcludeSeverance adds severance payments back into EBITDA.
	ExcludeSeverance bool
}

// ComputeKPIs builds the dashboard KPI bundle for records.
func ComputeKPIs(records []domain.Record, opts KPIOptions) domain.KPIBundle {
	sum := func(f domain.Field) float64 { return Sum(records, f) }

	k := domain.KPIBundle{
		Sales:              sum(domain.FieldSales),
		SalesOfServices:    sum(domain.FieldSalesOfServices),
		Purchases:          sum(domain.FieldPurchases),
		Payroll:            sum(domain.FieldPayroll),
		Utilities:          sum(domain.FieldUtilities),
		OtherExpenses:      sum(domain.FieldOtherExpenses),
		Rent:               sum(domain.FieldRent),
		Fees:               sum(domain.FieldFees),
		EBITDA:             sum(domain.FieldEBITDA),
		Severance:          sum(domain.FieldSeverance),
		ContributionMargin: sum(domain.FieldContributionMargin),
	}
	k.TotalRevenue = SumDecimal(k.Sales, k.SalesOfServices)
	if opts.ExcludeSeverance {
		k.EBITDA = SumDecimal(k.EBITDA, k.Severance)
	}

	k.FoodCostPercent = FormatPercent(k.Purchases, k.TotalRevenue)
	k.PayrollPercent = FormatPercent(k.Payroll, k.TotalRevenue)
	k.UtilitiesPercent = FormatPercent(k.Utilities, k.TotalRevenue)
	k.OtherExpensesPercent = FormatPercent(k.OtherExpenses, k.TotalRevenue)
	k.RentPercent = FormatPercent(k.Rent, k.TotalRevenue)
	k.FeesPercent = FormatPercent(k.Fees, k.TotalRevenue)
	k.EBITDAPercent = FormatPercent(k.EBITDA, k.TotalRevenue)
	k.ContributionMarginPercent = FormatPercent(k.ContributionMargin, k.TotalRevenue)
	return k
}
