package pnl_test

import (
	"testing"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/pnl"
	"github.com/stretchr/testify/assert"
)

func adjustFixture() (domain.Record, *domain.Dataset) {
	original := domain.Record{Store: "A", Month: "Jan-24"}.
		With(domain.FieldEBITDA, 100).
		With(domain.FieldNetProfit, 50).
		With(domain.FieldSalesOfServices, 30).
		With(domain.FieldBlueExpenses, 10).
		With(domain.FieldPepeExpenses, 5)
	ds, _ := domain.NewDataset("actual", []domain.Record{original})
	return original, ds
}

func TestAdjust_NoTogglesReturnsOriginal(t *testing.T) {
	original, ds := adjustFixture()
	assert.Equal(t, original, pnl.Adjust(original, ds, domain.Adjustment{}))
}

func TestAdjust_ExcludeSalesOfServices(t *testing.T) {
	original, ds := adjustFixture()
	adj := domain.Adjustment{ExcludeSalesOfServices: true}

	once := pnl.Adjust(original, ds, adj)
	assert.Equal(t, 70.0, once.Get(domain.FieldEBITDA))
	assert.Equal(t, 20.0, once.Get(domain.FieldNetProfit))

	twice := pnl.Adjust(once, ds, adj)
	assert.Equal(t, once, twice, "adjusting re-reads the stored original")

	stored, _ := ds.Lookup("A", "Jan-24")
	assert.Equal(t, 100.0, stored.Get(domain.FieldEBITDA), "original is never mutated")
}

func TestAdjust_AllToggles(t *testing.T) {
	original, ds := adjustFixture()
	got := pnl.Adjust(original, ds, domain.Adjustment{
		ExcludeSalesOfServices: true,
		ExcludeBlueExpenses:    true,
		ExcludePepeExpenses:    true,
	})
	assert.Equal(t, 85.0, got.Get(domain.FieldEBITDA))
	assert.Equal(t, 35.0, got.Get(domain.FieldNetProfit))
	assert.Equal(t, 30.0, got.Get(domain.FieldSalesOfServices))
}

func TestAdjust_RecordMissingFromSource(t *testing.T) {
	_, ds := adjustFixture()
	other := domain.Record{Store: "B", Month: "Jan-24"}.With(domain.FieldEBITDA, 10).With(domain.FieldBlueExpenses, 4)

	got := pnl.Adjust(other, ds, domain.Adjustment{ExcludeBlueExpenses: true})
	assert.Equal(t, 14.0, got.Get(domain.FieldEBITDA))

	got = pnl.Adjust(other, nil, domain.Adjustment{ExcludeBlueExpenses: true})
	assert.Equal(t, 14.0, got.Get(domain.FieldEBITDA))
}
