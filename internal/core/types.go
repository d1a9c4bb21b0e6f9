package core

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// CellKind tags the value held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
	CellTime
	CellBool
)

// Cell is a single spreadsheet value.
type Cell struct {
	Kind CellKind
	Num  float64
	Text string
	Time time.Time
	Bool bool
}

// Empty returns an empty cell.
func Empty() Cell { return Cell{} }

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{Kind: CellNumber, Num: f} }

// Text returns a text cell.
func Text(s string) Cell { return Cell{Kind: CellText, Text: s} }

// TimeCell returns a structured date cell in UTC.
func TimeCell(t time.Time) Cell { return Cell{Kind: CellTime, Time: t.UTC()} }

// BoolCell returns a boolean cell.
func BoolCell(b bool) Cell { return Cell{Kind: CellBool, Bool: b} }

// IsEmpty reports whether the cell is empty or whitespace-only text.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	default:
		return false
	}
}

// String coerces the cell to text. Empty cells become "".
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellText:
		return c.Text
	case CellTime:
		return FormatDateText(c.Time)
	case CellBool:
		return strconv.FormatBool(c.Bool)
	default:
		return ""
	}
}

// Row is an ordered sequence of cells. Columns past the end are empty.
type Row []Cell

// At returns the cell at column i, or an empty cell past the row's end.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// TextRow builds a row of text cells; "" becomes an empty cell.
func TextRow(values ...string) Row {
	r := make(Row, len(values))
	for i, v := range values {
		if v != "" {
			r[i] = Text(v)
		}
	}
	return r
}

// RawSheet is a named grid; Rows[0] is the header row.
type RawSheet struct {
	Name string
	Rows []Row
}

// Header returns the header row, or nil for an empty sheet.
func (s RawSheet) Header() Row {
	if len(s.Rows) == 0 {
		return nil
	}
	return s.Rows[0]
}

// DataRows returns all rows after the header.
func (s RawSheet) DataRows() []Row {
	if len(s.Rows) <= 1 {
		return nil
	}
	return s.Rows[1:]
}

// Columns returns display labels for the header; unnamed columns get "Column N".
func (s RawSheet) Columns() []string {
	header := s.Header()
	cols := make([]string, len(header))
	for i, c := range header {
		label := strings.TrimSpace(c.String())
		if label == "" {
			label = "Column " + strconv.Itoa(i+1)
		}
		cols[i] = label
	}
	return cols
}

// clone copies the row slice so replacements never alias the original.
func (s RawSheet) clone() RawSheet {
	rows := make([]Row, len(s.Rows))
	copy(rows, s.Rows)
	return RawSheet{Name: s.Name, Rows: rows}
}

// Workbook is a decoded spreadsheet file.
type Workbook struct {
	FileName string
	Sheets   []RawSheet
}

// SheetNames returns the sheet names in file order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the sheet with the given name.
func (w *Workbook) Sheet(name string) (RawSheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return RawSheet{}, false
}

// Record is a canonical ticket keyed by field.
type Record map[Field]Cell

// Get returns the field value, empty when absent.
func (r Record) Get(f Field) Cell {
	return r[f]
}

// Key returns the trimmed conflict key.
func (r Record) Key() string {
	return strings.TrimSpace(r[ConflictKey].String())
}

// Strings returns the record as field key → text, for persistence and JSON.
func (r Record) Strings() map[string]string {
	out := make(map[string]string, len(r))
	for f, c := range r {
		out[string(f)] = c.String()
	}
	return out
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "desc" case-insensitively; anything else is ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// SortSpec selects a sort key and direction. Records sort by Field; raw
// sheets sort by Column when Field is empty.
type SortSpec struct {
	Field  Field
	Column int
	Dir    Direction
}

// DefaultSort is the listing order: ticket number ascending.
var DefaultSort = SortSpec{Field: FieldTicketNumber, Dir: Asc}

// DecodeFunc decodes an uploaded file into a workbook.
type DecodeFunc func(ctx context.Context, fileName string, data []byte) (*Workbook, error)
