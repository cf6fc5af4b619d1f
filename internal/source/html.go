package source

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// readHTML reads the largest <table> of a published sheet page. Header cells
// used for row numbers and column letters (<th>) are skipped, so only <td>
// content is kept.
func readHTML(data []byte) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, errorf(FormatHTML, err)
	}

	var best *goquery.Selection
	bestRows := 0
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if n := table.Find("tr").Length(); n > bestRows {
			best, bestRows = table, n
		}
	})
	if best == nil {
		return nil, errorf(FormatHTML, fmt.Errorf("page has no table"))
	}

	var out [][]string
	best.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if len(cells) > 0 {
			out = append(out, cells)
		}
	})
	return out, nil
}
