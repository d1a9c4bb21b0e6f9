package core

// convert.go canonicalizes spreadsheet date values.
//
// Tickets arrive from many exporters, so a single date column can hold:
//   - spreadsheet day serials (44197.5)
//   - free text in US, ISO or long form ("1/1/2021 12:00 PM", "2021-01-01T12:00:00Z")
//   - structured dates decoded by the workbook reader
//
// Every one of these is rendered as DateText: "M/D/YYYY  h:mm:ss AM/PM" in UTC.
// Normalizing an already canonical value returns it unchanged.

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// canonicalDateRegex matches DateText exactly (two spaces between date and time).
var canonicalDateRegex = regexp.MustCompile(`(?i)^\d{1,2}/\d{1,2}/\d{4}\s{2}\d{1,2}:\d{2}:\d{2}\s(AM|PM)$`)

// workDateRegex matches the pass-through work_date form.
var workDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// serialEpochOffset is the number of days between 1899-12-30 and 1970-01-01.
const serialEpochOffset = 25569

// Text date layouts, tried in order against an upper-cased, whitespace-collapsed value.
var (
	dateTimeLayouts = []string{
		"1/2/2006 3:04:05 PM", "1/2/2006 3:04 PM", "1/2/2006 15:04:05", "1/2/2006 15:04",
		"1-2-2006 3:04:05 PM", "1-2-2006 15:04:05",
		time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04",
		"2006/01/02 15:04:05", "2006/01/02 3:04:05 PM",
		"Jan 2, 2006 3:04:05 PM", "Jan 2, 2006 3:04 PM", "Jan 2, 2006 15:04:05",
		"January 2, 2006 3:04:05 PM", "January 2, 2006 15:04:05",
		time.RFC1123, time.RFC1123Z, time.ANSIC,
	}
	dateOnlyLayouts = []string{
		"1/2/2006", "1-2-2006", "1.2.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "Jan 2 2006", "2 Jan 2006", "January 2, 2006", "2 January 2006",
		"Mon Jan 2 2006", "Mon, Jan 2, 2006",
	}
)

// IsDateText reports whether s is already canonical DateText.
func IsDateText(s string) bool {
	return canonicalDateRegex.MatchString(s)
}

// FormatDateText renders t as DateText using UTC fields.
func FormatDateText(t time.Time) string {
	t = t.UTC()
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	ampm := "AM"
	if t.Hour() >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf("%d/%d/%d  %d:%02d:%02d %s",
		int(t.Month()), t.Day(), t.Year(), hour, t.Minute(), t.Second(), ampm)
}

// SerialToTime converts a spreadsheet day serial to a UTC instant, rounded to the millisecond.
func SerialToTime(serial float64) time.Time {
	ms := math.Round((serial - serialEpochOffset) * 86400 * 1000)
	return time.UnixMilli(int64(ms)).UTC()
}

// ParseDateText parses free-text calendar dates in UTC.
// Numeric literals are never dates; they stay numbers for sorting.
func ParseDateText(s string) (time.Time, bool) {
	s = strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if s == "" || numericLiteralRegex.MatchString(s) {
		return time.Time{}, false
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range dateOnlyLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// NormalizeDate converts a cell to DateText. Values that are not dates are
// returned as their string form, so the call never fails.
func NormalizeDate(c Cell) string {
	switch c.Kind {
	case CellText:
		if IsDateText(c.Text) {
			return c.Text
		}
		if t, ok := ParseDateText(c.Text); ok {
			return FormatDateText(t)
		}
		return c.Text
	case CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return c.String()
		}
		return FormatDateText(SerialToTime(c.Num))
	case CellTime:
		return FormatDateText(c.Time)
	default:
		return c.String()
	}
}

// NormalizeWorkDate renders work_date values as YYYY-MM-DD. Values already in
// that shape pass through; anything that is not a date is stringified.
func NormalizeWorkDate(c Cell) string {
	if c.Kind == CellText {
		s := strings.TrimSpace(c.Text)
		if workDateRegex.MatchString(s) {
			return s
		}
		if t, ok := ParseDateText(s); ok {
			return t.Format(time.DateOnly)
		}
		return c.Text
	}
	switch c.Kind {
	case CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return c.String()
		}
		return SerialToTime(c.Num).Format(time.DateOnly)
	case CellTime:
		return c.Time.UTC().Format(time.DateOnly)
	default:
		return c.String()
	}
}

// CleanCell unwraps the ="..." formula wrapper spreadsheet exports use to
// keep identifiers as text. Any other value is returned unchanged.
func CleanCell(s string) string {
	t := strings.TrimSpace(s)
	if len(t) >= 3 && strings.HasPrefix(t, `="`) && strings.HasSuffix(t, `"`) {
		return t[2 : len(t)-1]
	}
	return s
}
