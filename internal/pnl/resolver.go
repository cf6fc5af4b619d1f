package pnl

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tier identifies how a header was matched. Lower tiers are more precise.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierNormalized
	TierKeyword
	TierSubstring
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierNormalized:
		return "normalized"
	case TierKeyword:
		return "keyword"
	case TierSubstring:
		return "substring"
	default:
		return "none"
	}
}

// Match is a resolved header and the tier that produced it.
type Match struct {
	Header string
	Tier   Tier
}

var tokenSplitter = regexp.MustCompile(`[\s()/,]+`)

// candidate is an alias with its matching forms computed once.
type candidate struct {
	raw    string
	norm   string
	groups [][]string
}

func compileCandidate(raw string) candidate {
	c := candidate{raw: raw, norm: NormalizeHeader(raw)}
	c.addGroup(raw)

	// Bilingual labels ("ΠΩΛΗΣΕΙΣ (SALES)") may match on either language half.
	open := strings.Index(raw, "(")
	if open > 0 && hasGreek(raw[:open]) {
		inner := raw[open+1:]
		if end := strings.LastIndex(inner, ")"); end >= 0 {
			inner = inner[:end]
		}
		c.addGroup(inner)
		c.addGroup(raw[:open])
	}
	return c
}

func (c *candidate) addGroup(text string) {
	var group []string
	for _, tok := range tokenSplitter.Split(text, -1) {
		if utf8.RuneCountInString(tok) <= 2 {
			continue
		}
		group = append(group, NormalizeHeader(tok))
	}
	if len(group) == 0 {
		return
	}
	for _, existing := range c.groups {
		if sameTokens(existing, group) {
			return
		}
	}
	c.groups = append(c.groups, group)
}

func sameTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasGreek(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Greek, r) {
			return true
		}
	}
	return false
}

type header struct {
	raw  string
	norm string
}

func compileHeaders(headers []string) []header {
	out := make([]header, 0, len(headers))
	for _, h := range headers {
		out = append(out, header{raw: h, norm: NormalizeHeader(h)})
	}
	return out
}

// ResolveColumn finds the header that best matches the ordered candidate
// aliases. Headers are scanned in the given order, so callers pass them in
// column order for deterministic results.
func ResolveColumn(headers []string, candidates []string) (string, bool) {
	m, ok := ResolveMatch(headers, candidates)
	return m.Header, ok
}

// ResolveMatch is ResolveColumn reporting the matching tier.
func ResolveMatch(headers []string, candidates []string) (Match, bool) {
	compiled := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		compiled = append(compiled, compileCandidate(c))
	}
	return resolveTiers(compileHeaders(headers), compiled, TierExact, TierSubstring)
}

func resolveTiers(headers []header, candidates []candidate, from, to Tier) (Match, bool) {
	for tier := from; tier <= to; tier++ {
		for _, c := range candidates {
			for _, h := range headers {
				if matches(tier, h, c) {
					return Match{Header: h.raw, Tier: tier}, true
				}
			}
		}
	}
	return Match{}, false
}

func matches(tier Tier, h header, c candidate) bool {
	switch tier {
	case TierExact:
		return h.raw == c.raw
	case TierNormalized:
		return h.norm != "" && h.norm == c.norm
	case TierKeyword:
		for _, group := range c.groups {
			if containsAll(h.norm, group) {
				return true
			}
		}
		return false
	case TierSubstring:
		if h.norm == "" || c.norm == "" {
			return false
		}
		return strings.Contains(h.norm, c.norm) || strings.Contains(c.norm, h.norm)
	default:
		return false
	}
}

func containsAll(s string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(s, tok) {
			return false
		}
	}
	return true
}
