package pnl

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
)

var (
	monthToken = regexp.MustCompile(`^([A-Z][a-z]{2})-(\d{2})$`)
	monthIndex = map[string]int{
		"Jan": 0, "Feb": 1, "Mar": 2, "Apr": 3, "May": 4, "Jun": 5,
		"Jul": 6, "Aug": 7, "Sep": 8, "Oct": 9, "Nov": 10, "Dec": 11,
	}
	monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

// ParsePeriod parses a "Mon-YY" token such as "Jan-24". Two digit years are
// in the 2000s.
func ParsePeriod(token string) (domain.Period, bool) {
	m := monthToken.FindStringSubmatch(token)
	if m == nil {
		return domain.Period{}, false
	}
	month, ok := monthIndex[m[1]]
	if !ok {
		return domain.Period{}, false
	}
	yy, err := strconv.Atoi(m[2])
	if err != nil {
		return domain.Period{}, false
	}
	return domain.Period{Month: month, Year: 2000 + yy}, true
}

// FormatPeriod is the inverse of ParsePeriod for years 2000-2099.
func FormatPeriod(p domain.Period) string {
	if p.Month < 0 || p.Month > 11 {
		return ""
	}
	return monthNames[p.Month] + "-" + twoDigits(p.Year%100)
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// SortMonths returns the distinct tokens in chronological order. Tokens that
// do not parse follow the parseable ones in lexical order.
func SortMonths(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, oki := ParsePeriod(out[i])
		pj, okj := ParsePeriod(out[j])
		switch {
		case oki && okj:
			return pi.Before(pj)
		case oki != okj:
			return oki
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// ChronologicalMonths lists the distinct parseable months of the records.
func ChronologicalMonths(records []domain.Record) []string {
	tokens := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := ParsePeriod(r.Month); ok {
			tokens = append(tokens, r.Month)
		}
	}
	return SortMonths(tokens)
}

// MonthsUpTo returns the prefix of sorted ending at target. If target is not
// in the list the whole list is returned.
func MonthsUpTo(sorted []string, target string) []string {
	for i, m := range sorted {
		if m == target {
			return append([]string(nil), sorted[:i+1]...)
		}
	}
	return append([]string(nil), sorted...)
}
