package core

import (
	"cmp"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericLiteralRegex matches plain decimal literals: optional minus, digits,
// optional fraction. Grouping separators and exponents are text.
var numericLiteralRegex = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// ValueClass is the comparison domain of a cell.
type ValueClass int

const (
	ClassText ValueClass = iota
	ClassNumeric
	ClassTemporal
)

func (c ValueClass) String() string {
	switch c {
	case ClassNumeric:
		return "numeric"
	case ClassTemporal:
		return "temporal"
	default:
		return "text"
	}
}

// Classified is a cell tagged with its comparison domain. Only the field
// matching Class is meaningful; Text is always set.
type Classified struct {
	Class ValueClass
	Num   float64
	Time  time.Time
	Text  string
}

// Classify decides whether a cell compares as a number, an instant or text.
// Empty cells classify as the empty string.
func Classify(c Cell) Classified {
	switch c.Kind {
	case CellNumber:
		if !math.IsNaN(c.Num) && !math.IsInf(c.Num, 0) {
			return Classified{Class: ClassNumeric, Num: c.Num, Text: c.String()}
		}
		return Classified{Class: ClassText, Text: c.String()}
	case CellTime:
		return Classified{Class: ClassTemporal, Time: c.Time, Text: c.String()}
	}

	s := c.String()
	trimmed := strings.TrimSpace(s)
	if numericLiteralRegex.MatchString(trimmed) {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) {
			return Classified{Class: ClassNumeric, Num: f, Text: s}
		}
	}
	if t, ok := ParseDateText(trimmed); ok {
		return Classified{Class: ClassTemporal, Time: t, Text: s}
	}
	return Classified{Class: ClassText, Text: s}
}

// Compare orders two cells and returns -1, 0 or 1.
//
// Both numeric: numeric order. Both temporal: by instant. Anything else,
// including a numeric/text pair, compares as case-insensitive text. Columns
// mixing domains therefore sort in clusters and the order is not transitive
// across them.
func Compare(a, b Cell) int {
	return compareClassified(Classify(a), Classify(b))
}

func compareClassified(a, b Classified) int {
	switch {
	case a.Class == ClassNumeric && b.Class == ClassNumeric:
		return cmp.Compare(a.Num, b.Num)
	case a.Class == ClassTemporal && b.Class == ClassTemporal:
		return a.Time.Compare(b.Time)
	default:
		return strings.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text))
	}
}

// CompareText compares two raw strings with the same rules as Compare.
func CompareText(a, b string) int {
	return Compare(Text(a), Text(b))
}
