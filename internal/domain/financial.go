package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RawRow is one decoded spreadsheet row keyed by its raw header text.
type RawRow map[string]any

// Table is the decoded form of a tabular source: column order plus row objects.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []RawRow `json:"rows"`
}

// Field enumerates the canonical financial metrics.
type Field int

const (
	FieldSales Field = iota
	FieldSalesOfServices
	FieldPurchases
	FieldPayroll
	FieldUtilities
	FieldOtherExpenses
	FieldRent
	FieldFees
	FieldSeverance
	FieldContributionMargin
	FieldEBITDA
	FieldBlueExpenses
	FieldPepeExpenses
	FieldBankExpenses
	FieldNetProfit

	FieldCount
)

var fieldNames = [FieldCount]string{
	"sales",
	"salesOfServices",
	"purchases",
	"payroll",
	"utilities",
	"otherExpenses",
	"rent",
	"fees",
	"severance",
	"contributionMargin",
	"ebitda",
	"blueExpenses",
	"pepeExpenses",
	"bankExpenses",
	"netProfit",
}

func (f Field) String() string {
	if f < 0 || f >= FieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Field) UnmarshalText(text []byte) error {
	parsed, ok := ParseField(string(text))
	if !ok {
		return fmt.Errorf("unknown field %q", string(text))
	}
	*f = parsed
	return nil
}

// AllFields returns every canonical field in declaration order.
func AllFields() []Field {
	fields := make([]Field, FieldCount)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

// ParseField looks a field up by name, ignoring case.
func ParseField(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for i, n := range fieldNames {
		if strings.EqualFold(n, name) {
			return Field(i), true
		}
	}
	return 0, false
}

// Record is the canonical P&L row for one (store, month) pair.
// It is a value type; derived records are copies.
type Record struct {
	Month  string
	Store  string
	Values [FieldCount]float64
}

func (r Record) Get(f Field) float64 {
	if f < 0 || f >= FieldCount {
		return 0
	}
	return r.Values[f]
}

// With returns a copy of r with f set to v.
func (r Record) With(f Field, v float64) Record {
	if f >= 0 && f < FieldCount {
		r.Values[f] = v
	}
	return r
}

func (r Record) Key() RecordKey {
	return RecordKey{Store: r.Store, Month: r.Month}
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, int(FieldCount)+2)
	out["month"] = r.Month
	out["store"] = r.Store
	for i, v := range r.Values {
		out[fieldNames[i]] = v
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var rec Record
	if v, ok := raw["month"]; ok {
		if err := json.Unmarshal(v, &rec.Month); err != nil {
			return err
		}
	}
	if v, ok := raw["store"]; ok {
		if err := json.Unmarshal(v, &rec.Store); err != nil {
			return err
		}
	}
	for i, name := range fieldNames {
		v, ok := raw[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, &rec.Values[i]); err != nil {
			return err
		}
	}
	*r = rec
	return nil
}

type RecordKey struct {
	Store string
	Month string
}

// Dataset is an ordered, immutable set of records from one source link.
type Dataset struct {
	Source     string   `json:"source"`
	Records    []Record `json:"records"`
	FetchError string   `json:"fetchError,omitempty"`

	index map[RecordKey]int
}

// NewDataset indexes records by (store, month). Later duplicates replace the
// earlier value but keep the earlier position. The number of replaced rows is
// returned.
func NewDataset(source string, records []Record) (*Dataset, int) {
	ds := &Dataset{
		Source:  source,
		Records: make([]Record, 0, len(records)),
		index:   make(map[RecordKey]int, len(records)),
	}
	overwritten := 0
	for _, rec := range records {
		key := rec.Key()
		if pos, ok := ds.index[key]; ok {
			ds.Records[pos] = rec
			overwritten++
			continue
		}
		ds.index[key] = len(ds.Records)
		ds.Records = append(ds.Records, rec)
	}
	return ds, overwritten
}

// EmptyDataset is what a failed fetch produces.
func EmptyDataset(source string, fetchErr error) *Dataset {
	ds, _ := NewDataset(source, nil)
	if fetchErr != nil {
		ds.FetchError = fetchErr.Error()
	}
	return ds
}

// Lookup returns the record stored for (store, month).
func (d *Dataset) Lookup(store, month string) (Record, bool) {
	if d == nil {
		return Record{}, false
	}
	if d.index == nil {
		for _, rec := range d.Records {
			if rec.Store == store && rec.Month == month {
				return rec, true
			}
		}
		return Record{}, false
	}
	pos, ok := d.index[RecordKey{Store: store, Month: month}]
	if !ok {
		return Record{}, false
	}
	return d.Records[pos], true
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Period is a parsed month token. Month is 0-based.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}
