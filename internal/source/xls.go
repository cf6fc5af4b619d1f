package source

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// readXLS reads the first sheet of a legacy BIFF workbook.
func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, errorf(FormatXLS, err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errorf(FormatXLS, fmt.Errorf("workbook has no sheets"))
	}

	out := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			out = append(out, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		out = append(out, cells)
	}
	return out, nil
}
