package source

import (
	"bytes"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Format is the detected container of a source file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatHTML Format = "html"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Decoder turns raw file bytes into a table. The first non-blank row is the
// header row.
type Decoder struct {
	legacy encoding.Encoding
}

// NewDecoder builds a decoder; legacyCharset names the fallback used for CSV
// files that are not valid UTF-8 ("windows-1253" or "iso-8859-7").
func NewDecoder(legacyCharset string) *Decoder {
	return &Decoder{legacy: legacyEncoding(legacyCharset)}
}

func legacyEncoding(name string) encoding.Encoding {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "iso-8859-7", "iso8859-7", "greek":
		return charmap.ISO8859_7
	default:
		return charmap.Windows1253
	}
}

// Detect sniffs the format from magic bytes, then content type and name.
func Detect(blob *domain.Blob) Format {
	data := blob.Data
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS
	}

	ct := strings.ToLower(blob.ContentType)
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(blob.Name), "."))
	switch {
	case strings.Contains(ct, "text/csv"), ext == "csv", ext == "tsv":
		return FormatCSV
	case strings.Contains(ct, "html"), ext == "html", ext == "htm", looksLikeHTML(data):
		return FormatHTML
	}
	return FormatCSV
}

func looksLikeHTML(data []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM)))
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(head, []byte("<!doctype html")) ||
		bytes.HasPrefix(head, []byte("<html")) ||
		bytes.HasPrefix(head, []byte("<table"))
}

func (d *Decoder) Decode(blob *domain.Blob) (*domain.Table, error) {
	if blob == nil || len(bytes.TrimSpace(blob.Data)) == 0 {
		return nil, ErrEmptySource
	}

	var (
		rows [][]string
		err  error
	)
	switch Detect(blob) {
	case FormatXLSX:
		rows, err = readXLSX(blob.Data)
	case FormatXLS:
		rows, err = readXLS(blob.Data)
	case FormatHTML:
		rows, err = readHTML(blob.Data)
	default:
		rows, err = d.readCSV(blob.Data)
	}
	if err != nil {
		return nil, err
	}
	return buildTable(rows)
}

// buildTable keys every data row by header. Blank headers become __EMPTY,
// __EMPTY_1, ... and repeated headers get _1, _2 suffixes, as spreadsheet
// JSON exports name them. Cells missing from short rows are "".
func buildTable(rows [][]string) (*domain.Table, error) {
	start := -1
	for i, r := range rows {
		if !blankRow(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrEmptySource
	}

	width := 0
	for _, r := range rows[start:] {
		if len(r) > width {
			width = len(r)
		}
	}

	columns := uniqueHeaders(rows[start], width)
	table := &domain.Table{Columns: columns, Rows: make([]domain.RawRow, 0, len(rows)-start-1)}
	for _, r := range rows[start+1:] {
		if blankRow(r) {
			continue
		}
		row := make(domain.RawRow, width)
		for i, col := range columns {
			cell := ""
			if i < len(r) {
				cell = r[i]
			}
			row[col] = cell
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func uniqueHeaders(header []string, width int) []string {
	counts := make(map[string]int, width)
	used := make(map[string]bool, width)
	out := make([]string, width)
	for i := 0; i < width; i++ {
		base := ""
		if i < len(header) {
			base = header[i]
		}
		if strings.TrimSpace(base) == "" {
			base = "__EMPTY"
		}
		name := base
		for used[name] {
			counts[base]++
			name = base + "_" + strconv.Itoa(counts[base])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func blankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func errorf(format Format, err error) error {
	return fmt.Errorf("read %s: %w", format, err)
}
