package pnl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
)

// Mapper turns raw spreadsheet rows into canonical records. The first column
// is always the month token and the second the store name, whatever their
// header text says.
type Mapper struct {
	table *CandidateTable
}

func NewMapper(table *CandidateTable) *Mapper {
	if table == nil {
		table = DefaultCandidates()
	}
	return &Mapper{table: table}
}

// MapStats describes one MapTable pass.
type MapStats struct {
	Rows        int               `json:"rows"`
	Mapped      int               `json:"mapped"`
	Dropped     int               `json:"dropped"`
	Overwritten int               `json:"overwritten"`
	Columns     map[string]string `json:"columns"`
	Unresolved  []string          `json:"unresolved"`
}

// resolution maps each field to its header, "" when unresolved.
type resolution struct {
	headers [domain.FieldCount]string
	tiers   [domain.FieldCount]Tier
}

// MapRow maps a single row. ok is false when the row has no month or store.
func (m *Mapper) MapRow(row domain.RawRow, columns []string) (domain.Record, bool) {
	if len(columns) < 2 {
		return domain.Record{}, false
	}
	headers := rowHeaders(row, columns)
	return m.mapWith(row, columns, m.resolve(headers))
}

// MapTable maps every row of a decoded source into a dataset.
func (m *Mapper) MapTable(source string, table domain.Table) (*domain.Dataset, MapStats, error) {
	stats := MapStats{Rows: len(table.Rows), Columns: map[string]string{}}
	if len(table.Columns) < 2 {
		return domain.EmptyDataset(source, nil), stats, ErrTooFewColumns
	}

	memo := make(map[string]*resolution)
	records := make([]domain.Record, 0, len(table.Rows))
	var first *resolution
	for _, row := range table.Rows {
		headers := rowHeaders(row, table.Columns)
		key := strings.Join(headers, "\x1f")
		res, ok := memo[key]
		if !ok {
			res = m.resolve(headers)
			memo[key] = res
		}

		rec, ok := m.mapWith(row, table.Columns, res)
		if !ok {
			stats.Dropped++
			continue
		}
		if first == nil {
			first = res
		}
		records = append(records, rec)
	}

	ds, overwritten := domain.NewDataset(source, records)
	stats.Mapped = ds.Len()
	stats.Overwritten = overwritten

	if first != nil {
		for i, h := range first.headers {
			f := domain.Field(i)
			if h == "" {
				stats.Unresolved = append(stats.Unresolved, f.String())
				continue
			}
			stats.Columns[f.String()] = h
		}
	}
	return ds, stats, nil
}

func (m *Mapper) mapWith(row domain.RawRow, columns []string, res *resolution) (domain.Record, bool) {
	month := CellText(row[columns[0]])
	store := CellText(row[columns[1]])
	if month == "" || store == "" {
		return domain.Record{}, false
	}
	rec := domain.Record{Month: month, Store: store}
	for i, h := range res.headers {
		if h == "" {
			continue
		}
		rec.Values[i] = ParseNumeric(row[h])
	}
	return rec, true
}

// resolve assigns headers to fields. Exact and normalized matches claim their
// columns first; keyword and substring matches only see unclaimed columns.
func (m *Mapper) resolve(headers []string) *resolution {
	res := &resolution{}
	compiled := compileHeaders(headers)
	claimed := make(map[string]bool, len(headers))

	for i := range res.headers {
		match, ok := resolveTiers(compiled, m.table.fields[i], TierExact, TierNormalized)
		if !ok {
			continue
		}
		res.headers[i] = match.Header
		res.tiers[i] = match.Tier
		claimed[match.Header] = true
	}

	for i := range res.headers {
		if res.headers[i] != "" {
			continue
		}
		free := make([]header, 0, len(compiled))
		for _, h := range compiled {
			if !claimed[h.raw] {
				free = append(free, h)
			}
		}
		match, ok := resolveTiers(free, m.table.fields[i], TierKeyword, TierSubstring)
		if !ok {
			continue
		}
		res.headers[i] = match.Header
		res.tiers[i] = match.Tier
		claimed[match.Header] = true
	}
	return res
}

// rowHeaders lists the row's value headers in column order followed by any
// keys the column list does not know, sorted. Positional columns are skipped.
func rowHeaders(row domain.RawRow, columns []string) []string {
	positional := map[string]bool{columns[0]: true, columns[1]: true}
	seen := make(map[string]bool, len(row))
	headers := make([]string, 0, len(row))
	for _, c := range columns[2:] {
		if positional[c] || seen[c] {
			continue
		}
		if _, ok := row[c]; !ok {
			continue
		}
		seen[c] = true
		headers = append(headers, c)
	}
	var extra []string
	for k := range row {
		if positional[k] || seen[k] {
			continue
		}
		extra = append(extra, k)
	}
	sort.Strings(extra)
	return append(headers, extra...)
}

// CellText renders a month or store cell as trimmed text.
func CellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
