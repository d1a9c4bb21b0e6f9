package core

import "slices"

// directed applies a direction to an ascending comparison result.
// Descending negates, so ties stay in input order either way.
func directed(c int, dir Direction) int {
	if dir == Desc {
		return -c
	}
	return c
}

// SortRows returns a stably sorted copy of rows ordered by column.
func SortRows(rows []Row, column int, dir Direction) []Row {
	keys := make([]Classified, len(rows))
	for i, r := range rows {
		keys[i] = Classify(r.At(column))
	}

	idx := sortedIndex(keys, dir)
	out := make([]Row, len(rows))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

// SortRecords returns a stably sorted copy of records ordered by field.
func SortRecords(records []Record, field Field, dir Direction) []Record {
	keys := make([]Classified, len(records))
	for i, r := range records {
		keys[i] = Classify(r.Get(field))
	}

	idx := sortedIndex(keys, dir)
	out := make([]Record, len(records))
	for i, j := range idx {
		out[i] = records[j]
	}
	return out
}

// sortedIndex stably orders positions by their pre-classified keys.
func sortedIndex(keys []Classified, dir Direction) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return directed(compareClassified(keys[a], keys[b]), dir)
	})
	return idx
}

// SheetSort is the outcome of sorting a sheet.
type SheetSort struct {
	Sheet  RawSheet
	Column int
	Label  string
	Dir    Direction
}

// SortSheet sorts the data rows of sheet by column, keeping the header first.
// Date columns of the result are canonicalized. The input sheet is never modified.
func SortSheet(sheet RawSheet, column int, dir Direction) (SheetSort, error) {
	header := sheet.Header()
	if column < 0 || column >= len(header) {
		return SheetSort{}, &MissingColumnError{Column: column, Sheet: sheet.Name}
	}
	if dir != Desc {
		dir = Asc
	}

	data := SortRows(sheet.DataRows(), column, dir)
	rows := make([]Row, 0, len(data)+1)
	rows = append(rows, header)
	rows = append(rows, data...)

	return SheetSort{
		Sheet:  recanonicalizeDates(RawSheet{Name: sheet.Name, Rows: rows}),
		Column: column,
		Label:  sheet.Columns()[column],
		Dir:    dir,
	}, nil
}

// SortSheetByField resolves field through the header and sorts on its column.
func SortSheetByField(sheet RawSheet, field Field, dir Direction) (SheetSort, error) {
	col := MapHeader(sheet.Header()).Column(field)
	if col < 0 {
		return SheetSort{}, &MissingColumnError{Field: field, Sheet: sheet.Name}
	}
	return SortSheet(sheet, col, dir)
}
