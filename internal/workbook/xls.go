package workbook

import (
	"bytes"
	"fmt"

	"github.com/shakinm/xlsReader/xls"

	"github.com/JonMunkholm/ticketsheet/internal/core"
)

// decodeXLS reads a legacy BIFF workbook. The reader exposes cell text only,
// so numeric-looking text is typed back into Number cells.
func decodeXLS(content []byte) ([]core.RawSheet, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	var sheets []core.RawSheet
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil {
			return nil, fmt.Errorf("sheet %d: %w", i, err)
		}

		var grid []core.Row
		for _, row := range sheet.GetRows() {
			cols := row.GetCols()
			cells := make(core.Row, len(cols))
			for c, col := range cols {
				cells[c] = parseValue(col.GetString())
			}
			grid = append(grid, cells)
		}

		sheets = append(sheets, core.RawSheet{Name: uniqueSheetName(sheet.GetName(), seen), Rows: grid})
	}
	return sheets, nil
}
