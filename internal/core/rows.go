package core

// IsBlankRow reports whether every cell is empty or whitespace-only.
// A zero-length row is blank.
func IsBlankRow(row Row) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// CountDataRows returns the number of non-blank rows after the header.
func CountDataRows(sheet RawSheet) int {
	n := 0
	for _, row := range sheet.DataRows() {
		if !IsBlankRow(row) {
			n++
		}
	}
	return n
}

// recanonicalizeDates rewrites the added and curr_stat_date columns of the
// data rows as DateText. Rows are copied before they are changed.
func recanonicalizeDates(sheet RawSheet) RawSheet {
	hm := MapHeader(sheet.Header())
	var cols []int
	for i, f := range hm {
		if f == FieldAdded || f == FieldCurrStatDate {
			cols = append(cols, i)
		}
	}
	if len(cols) == 0 {
		return sheet
	}

	out := sheet.clone()
	for r := 1; r < len(out.Rows); r++ {
		row := out.Rows[r]
		var copied Row
		for _, col := range cols {
			c := row.At(col)
			if c.IsEmpty() {
				continue
			}
			next := Text(NormalizeDate(c))
			if next == c {
				continue
			}
			if copied == nil {
				copied = make(Row, len(row))
				copy(copied, row)
			}
			copied[col] = next
		}
		if copied != nil {
			out.Rows[r] = copied
		}
	}
	return out
}
