package core

// BuildRecords converts a raw sheet into canonical records.
//
// The header is resolved once. Blank rows are skipped; every field present in
// the header is set on each record, Empty when the row is short. Date fields
// are stored as DateText and work_date as YYYY-MM-DD. Rows without a ticket
// number are kept.
func BuildRecords(sheet RawSheet) []Record {
	hm := MapHeader(sheet.Header())
	fields := hm.Fields()
	if len(fields) == 0 {
		return nil
	}

	records := make([]Record, 0, len(sheet.DataRows()))
	for _, row := range sheet.DataRows() {
		if IsBlankRow(row) {
			continue
		}
		records = append(records, buildRecord(hm, fields, row))
	}
	return records
}

func buildRecord(hm HeaderMap, fields []Field, row Row) Record {
	rec := make(Record, len(fields))
	for _, f := range fields {
		rec[f] = Cell{}
	}

	for col, f := range hm {
		if f == "" {
			continue
		}
		// Duplicate header columns: the first non-empty value wins.
		if !rec[f].IsEmpty() {
			continue
		}
		rec[f] = normalizeField(f, row.At(col))
	}
	return rec
}

func normalizeField(f Field, c Cell) Cell {
	if c.IsEmpty() {
		return Cell{}
	}
	switch {
	case f == FieldWorkDate:
		return Text(NormalizeWorkDate(c))
	case f.IsDate():
		return Text(NormalizeDate(c))
	case c.Kind == CellText:
		return Text(CleanCell(c.Text))
	default:
		return c
	}
}
