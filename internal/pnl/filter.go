package pnl

import (
	"sort"
	"strings"
	"unicode"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
)

// StoreKey is the form store names are compared in for role scoping:
// lower case with every whitespace rune removed.
func StoreKey(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

// Visible reports whether session may see the store.
func Visible(session domain.Session, store string) bool {
	if !session.Restricted() {
		return true
	}
	key := StoreKey(store)
	for _, s := range session.AssignedStores {
		if StoreKey(s) == key {
			return true
		}
	}
	return false
}

// ScopeRecords keeps only what the session is allowed to see.
func ScopeRecords(records []domain.Record, session domain.Session) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if Visible(session, r.Store) {
			out = append(out, r)
		}
	}
	return out
}

// FilterRecords applies every active predicate of criteria. Role scoping is
// always evaluated for restricted sessions.
func FilterRecords(records []domain.Record, criteria domain.FilterCriteria) []domain.Record {
	months := toSet(criteria.Months)
	stores := toSet(criteria.Stores)

	start, okStart := ParsePeriod(criteria.PeriodStart)
	end, okEnd := ParsePeriod(criteria.PeriodEnd)
	useRange := okStart && okEnd

	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if !Visible(criteria.Session, r.Store) {
			continue
		}
		if len(months) > 0 && !months[r.Month] {
			continue
		}
		if len(stores) > 0 && !stores[r.Store] {
			continue
		}
		if criteria.Year != 0 || useRange {
			p, ok := ParsePeriod(r.Month)
			if !ok {
				continue
			}
			if criteria.Year != 0 && p.Year != criteria.Year {
				continue
			}
			if useRange && (p.Before(start) || end.Before(p)) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// ValidatePeriodRange rejects a range whose end precedes its start. Ranges
// with an unparseable end are left to FilterRecords, which ignores them.
func ValidatePeriodRange(start, end string) error {
	s, okS := ParsePeriod(start)
	e, okE := ParsePeriod(end)
	if okS && okE && e.Before(s) {
		return ErrInvalidPeriodRange
	}
	return nil
}

// BuildOptions lists selector values over the records the session can see.
func BuildOptions(records []domain.Record, session domain.Session) domain.Options {
	visible := ScopeRecords(records, session)

	monthTokens := make([]string, 0, len(visible))
	storeSeen := map[string]bool{}
	yearSeen := map[int]bool{}
	opts := domain.Options{Months: []string{}, Stores: []string{}, Years: []int{}}
	for _, r := range visible {
		monthTokens = append(monthTokens, r.Month)
		if !storeSeen[r.Store] {
			storeSeen[r.Store] = true
			opts.Stores = append(opts.Stores, r.Store)
		}
		if p, ok := ParsePeriod(r.Month); ok && !yearSeen[p.Year] {
			yearSeen[p.Year] = true
			opts.Years = append(opts.Years, p.Year)
		}
	}
	opts.Months = SortMonths(monthTokens)
	sort.Strings(opts.Stores)
	sort.Ints(opts.Years)
	return opts
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
