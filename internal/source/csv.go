package source

import (
	"bytes"
	"encoding/csv"
	"io"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV decodes delimited text. Input that is not valid UTF-8 is read
// through the legacy Greek code page.
func (d *Decoder) readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var r io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		r = transform.NewReader(r, d.legacy.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errorf(FormatCSV, err)
	}
	return rows, nil
}

// sniffDelimiter picks the most frequent of , ; and tab on the first
// non-empty line. Greek locale exports commonly use ;.
func sniffDelimiter(data []byte) rune {
	line := data
	for len(line) > 0 {
		i := bytes.IndexByte(line, '\n')
		if i < 0 {
			break
		}
		if len(bytes.TrimSpace(line[:i])) > 0 {
			line = line[:i]
			break
		}
		line = line[i+1:]
	}

	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
