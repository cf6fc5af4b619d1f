package pnl_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/pnl"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"empty string", "", 0},
		{"blank string", "   ", 0},
		{"currency with thousands", "€ 1,234.50", 1234.5},
		{"currency no space", "€1,000.00", 1000},
		{"negative currency", "-€2,500", -2500},
		{"nbsp padding", "  42.10  ", 42.1},
		{"trailing text", "12.5 EUR", 12.5},
		{"float", 99.25, 99.25},
		{"int", 7, 7},
		{"int64", int64(-3), -3},
		{"NaN", math.NaN(), 0},
		{"Inf", math.Inf(1), 0},
		{"NaN literal", "NaN", 0},
		{"Infinity literal", "Infinity", 0},
		{"garbage", "n/a", 0},
		{"json number", json.Number("3.5"), 3.5},
		{"decimal", decimal.RequireFromString("10.01"), 10.01},
		{"bool", true, 0},
		{"struct", struct{}{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pnl.ParseNumeric(tt.in)
			assert.Equal(t, tt.want, got)
			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
		})
	}
}

func TestParseDecimal(t *testing.T) {
	d, ok := pnl.ParseDecimal("€ 1,234.50")
	assert.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("1234.5")))

	_, ok = pnl.ParseDecimal("—")
	assert.False(t, ok)
}

func TestSumDecimal(t *testing.T) {
	assert.Equal(t, 0.3, pnl.SumDecimal(0.1, 0.2))
	assert.Equal(t, 0.0, pnl.SumDecimal())
	assert.Equal(t, 5.0, pnl.SumDecimal(5, math.NaN()))
}
