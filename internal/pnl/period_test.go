package pnl_test

import (
	"testing"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/pnl"
	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	p, ok := pnl.ParsePeriod("Jan-24")
	assert.True(t, ok)
	assert.Equal(t, domain.Period{Month: 0, Year: 2024}, p)

	p, ok = pnl.ParsePeriod("Dec-99")
	assert.True(t, ok)
	assert.Equal(t, domain.Period{Month: 11, Year: 2099}, p)

	for _, bad := range []string{"jan-24", "January-24", "Jan-2024", "Jan 24", "Foo-24", "", "2024-01"} {
		_, ok := pnl.ParsePeriod(bad)
		assert.False(t, ok, "token %q", bad)
	}
}

func TestFormatPeriod(t *testing.T) {
	assert.Equal(t, "Mar-05", pnl.FormatPeriod(domain.Period{Month: 2, Year: 2005}))
	assert.Equal(t, "", pnl.FormatPeriod(domain.Period{Month: 12, Year: 2005}))
}

func TestSortMonths(t *testing.T) {
	got := pnl.SortMonths([]string{"Mar-24", "Jan-25", "Total", "Jan-24", "Mar-24", "", "Dec-23"})
	assert.Equal(t, []string{"Dec-23", "Jan-24", "Mar-24", "Jan-25", "Total"}, got)
}

func TestMonthsUpTo(t *testing.T) {
	months := []string{"Jan-24", "Feb-24", "Mar-24", "Apr-24"}
	assert.Equal(t, []string{"Jan-24", "Feb-24", "Mar-24"}, pnl.MonthsUpTo(months, "Mar-24"))
	assert.Equal(t, months, pnl.MonthsUpTo(months, "Jun-24"))
	assert.Empty(t, pnl.MonthsUpTo(nil, "Jan-24"))
}
