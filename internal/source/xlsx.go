package source

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first sheet of a workbook as formatted cell text.
func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errorf(FormatXLSX, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errorf(FormatXLSX, fmt.Errorf("workbook has no sheets"))
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, errorf(FormatXLSX, fmt.Errorf("rows of sheet %s: %w", sheet, err))
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, errorf(FormatXLSX, err)
		}
		out = append(out, record)
	}
	if err := rows.Error(); err != nil {
		return nil, errorf(FormatXLSX, err)
	}
	return out, nil
}
