package pnl

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	cellReplacer = strings.NewReplacer("€", "", ",", "")
	// leading numeric literal, the same prefix a lenient float parser accepts
	numericPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
)

// ParseNumeric converts a spreadsheet cell into a finite number. Empty,
// malformed and non-finite input all yield 0.
func ParseNumeric(cell any) float64 {
	switch v := cell.(type) {
	case nil:
		return 0
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case bool:
		return 0
	case decimal.Decimal:
		f, _ := v.Float64()
		return finite(f)
	case json.Number:
		return parseNumericString(v.String())
	case string:
		return parseNumericString(v)
	case []byte:
		return parseNumericString(string(v))
	default:
		return 0
	}
}

// ParseDecimal is the string path of ParseNumeric without the float
// conversion. ok is false when the cell holds no number.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	s = cellReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	literal := numericPrefix.FindString(s)
	if literal == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(literal, "+"))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseNumericString(s string) float64 {
	d, ok := ParseDecimal(s)
	if !ok {
		return 0
	}
	f, _ := d.Float64()
	return finite(f)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// SumDecimal adds values in decimal so currency amounts do not drift.
func SumDecimal(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(finite(v)))
	}
	f, _ := total.Float64()
	return finite(f)
}
