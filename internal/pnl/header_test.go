package pnl_test

import (
	"testing"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/pnl"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader_Lookalikes(t *testing.T) {
	assert.Equal(t, pnl.NormalizeHeader("ΕΝΟΙΚΙΟ"), pnl.NormalizeHeader("ΕΝΟIΚΙO"))
	assert.Equal(t, pnl.NormalizeHeader("ΔΕΚΟ (Utilities)"), pnl.NormalizeHeader("ΔΕΚO (Utilities)"))
	assert.Equal(t, pnl.NormalizeHeader("ΛΟΙΠΑ ΕΞΟΔΑ"), pnl.NormalizeHeader("ΛΟIΠΑ ΕΞΟΔΑ"))
}

func TestNormalizeHeader_CaseAndWhitespace(t *testing.T) {
	assert.Equal(t, pnl.NormalizeHeader("sales total"), pnl.NormalizeHeader("  Sales  Total "))
	assert.Equal(t, pnl.NormalizeHeader("ebitda"), pnl.NormalizeHeader("EBITDA"))
	assert.Equal(t, pnl.NormalizeHeader("ΚΑΘΑΡΟ ΚΕΡΔΟΣ"), pnl.NormalizeHeader("καθαρο κερδος"))
	assert.Equal(t, "", pnl.NormalizeHeader(" \t  "))
}

func TestNormalizeHeader_Accents(t *testing.T) {
	assert.Equal(t, pnl.NormalizeHeader("ΕΝΟΙΚΙΟ"), pnl.NormalizeHeader("ΕΝΟΊΚΙΟ"))
	assert.Equal(t, pnl.NormalizeHeader("Ενοίκιο"), pnl.NormalizeHeader("ΕΝΟΙΚΙΟ"))
}

func TestNormalizeHeader_Idempotent(t *testing.T) {
	inputs := []string{
		"ΠΩΛΗΣΕΙΣ (SALES)",
		"ΑΝΑΠ/ΜΕΝΗ ΜΙΣΘΟΔΟΣΙΑ (Payroll (Adjusted)",
		"ΕΝΟIΚΙO (RENT)",
		"Contributio n Margin",
		"  __EMPTY_1 ",
		"Kelvin Ωhm",
		"Ενοίκιο καταστήματος",
		"",
	}
	for _, in := range inputs {
		once := pnl.NormalizeHeader(in)
		assert.Equal(t, once, pnl.NormalizeHeader(once), "input %q", in)
	}
}
