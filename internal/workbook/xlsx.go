package workbook

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/ticketsheet/internal/core"
)

func decodeXLSX(content []byte) ([]core.RawSheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := make(map[string]int)
	var sheets []core.RawSheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}

		grid := make([]core.Row, len(rows))
		for r, row := range rows {
			cells := make(core.Row, len(row))
			for c, raw := range row {
				if raw == "" {
					continue
				}
				ref, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return nil, err
				}
				typ, err := f.GetCellType(name, ref)
				if err != nil {
					return nil, fmt.Errorf("sheet %q cell %s: %w", name, ref, err)
				}
				cells[c] = xlsxCell(typ, raw)
			}
			grid[r] = cells
		}

		sheets = append(sheets, core.RawSheet{Name: uniqueSheetName(name, seen), Rows: grid})
	}
	return sheets, nil
}

// xlsxCell types a raw cell value. Cells without a type attribute hold numbers.
func xlsxCell(typ excelize.CellType, raw string) core.Cell {
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return core.Number(f)
		}
		return core.Text(raw)
	case excelize.CellTypeBool:
		return core.BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if t, ok := core.ParseDateText(raw); ok {
			return core.TimeCell(t)
		}
		return core.Text(raw)
	default:
		return core.Text(raw)
	}
}

// EncodeXLSX writes a single-sheet workbook. Number cells stay numeric.
func EncodeXLSX(w io.Writer, sheet core.RawSheet) error {
	f := excelize.NewFile()
	defer f.Close()

	name := sheet.Name
	if name == "" {
		name = csvSheetName
	}
	if def := f.GetSheetName(0); def != name {
		if err := f.SetSheetName(def, name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	for r, row := range sheet.Rows {
		values := make([]any, len(row))
		for c, cell := range row {
			values[c] = xlsxValue(cell)
		}
		ref, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, ref, &values); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func xlsxValue(c core.Cell) any {
	switch c.Kind {
	case core.CellNumber:
		return c.Num
	case core.CellBool:
		return c.Bool
	case core.CellEmpty:
		return nil
	default:
		return c.String()
	}
}
