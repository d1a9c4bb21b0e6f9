package core

import "strings"

// DedupeResult holds the rows that survived deduplication.
type DedupeResult struct {
	Survivors []Row
	Removed   int
}

// Dedupe keeps the first row for each non-empty trimmed key in keyColumn.
// Rows with an empty key always survive and never mark a key as seen.
// Survivors keep their input order.
func Dedupe(rows []Row, keyColumn int) DedupeResult {
	seen := make(map[string]struct{}, len(rows))
	survivors := make([]Row, 0, len(rows))
	removed := 0

	for _, row := range rows {
		key := strings.TrimSpace(row.At(keyColumn).String())
		if key == "" {
			survivors = append(survivors, row)
			continue
		}
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		survivors = append(survivors, row)
	}

	return DedupeResult{Survivors: survivors, Removed: removed}
}

// SheetDedupe is the outcome of deduplicating a sheet.
type SheetDedupe struct {
	Sheet     RawSheet
	Removed   int
	KeyColumn int
	KeyLabel  string // Header text of the key column
}

// DedupeSheet deduplicates the data rows of sheet on the column mapped to key.
// The header row is kept and date columns of the result are canonicalized.
// The input sheet is never modified.
func DedupeSheet(sheet RawSheet, key Field) (SheetDedupe, error) {
	col := MapHeader(sheet.Header()).Column(key)
	if col < 0 {
		return SheetDedupe{}, &MissingColumnError{Field: key, Sheet: sheet.Name}
	}

	res := Dedupe(sheet.DataRows(), col)

	rows := make([]Row, 0, len(res.Survivors)+1)
	rows = append(rows, sheet.Header())
	rows = append(rows, res.Survivors...)

	return SheetDedupe{
		Sheet:     recanonicalizeDates(RawSheet{Name: sheet.Name, Rows: rows}),
		Removed:   res.Removed,
		KeyColumn: col,
		KeyLabel:  sheet.Columns()[col],
	}, nil
}
