package pnl

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Latin letters that render identically to a Greek capital or small letter.
var lookalikes = map[rune]rune{
	'O': 'Ο', 'I': 'Ι', 'A': 'Α', 'B': 'Β', 'E': 'Ε', 'H': 'Η', 'K': 'Κ',
	'M': 'Μ', 'N': 'Ν', 'P': 'Ρ', 'T': 'Τ', 'Y': 'Υ', 'X': 'Χ',
	'o': 'ο', 'i': 'ι', 'a': 'α', 'b': 'β', 'e': 'ε', 'h': 'η', 'k': 'κ',
	'm': 'μ', 'n': 'ν', 'p': 'ρ', 't': 'τ', 'y': 'υ', 'x': 'χ',
	'ς': 'σ',
}

// NormalizeHeader canonicalizes a column name for matching. The result is
// never shown to users.
func NormalizeHeader(name string) string {
	if name == "" {
		return ""
	}
	stripped, _, err := transform.String(stripMarks(), name)
	if err != nil {
		stripped = name
	}
	folded := strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if g, ok := lookalikes[r]; ok {
			return g
		}
		return r
	}, stripped)
	return strings.Join(strings.Fields(folded), " ")
}

// transformers are stateful, so each call gets its own chain
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
