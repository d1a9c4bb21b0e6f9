package core

// query.go filters, sorts and paginates canonical records for display.
//
// The pipeline always runs in the same order:
//  1. filter (conjunction of owner, month/day and search predicates)
//  2. stable sort via Compare
//  3. slice one page of PageSize records
//
// Totals are computed from the filtered set, and the requested page is
// clamped into range.

import (
	"strconv"
	"strings"
)

// PageSize is the fixed number of records per page.
const PageSize = 20

// searchFields are matched by the free-text search.
var searchFields = []Field{FieldTicketNumber, FieldRequestID, FieldContactName}

// FilterSpec is a conjunction of predicates. Zero values disable a predicate.
type FilterSpec struct {
	Owner     string // Exact match after trimming both sides
	DateField Field  // Date field read by Month/Day; defaults to added
	Month     int    // 1-12
	Day       int    // 1-31
	Search    string // Case-insensitive substring over ticket, request id and contact
}

// IsZero reports whether the filter matches everything.
func (f FilterSpec) IsZero() bool {
	return strings.TrimSpace(f.Owner) == "" && f.Month == 0 && f.Day == 0 && strings.TrimSpace(f.Search) == ""
}

// dateField returns the configured date field, defaulting to added.
func (f FilterSpec) dateField() Field {
	if f.DateField == "" {
		return FieldAdded
	}
	return f.DateField
}

// Match reports whether rec satisfies every active predicate.
func (f FilterSpec) Match(rec Record) bool {
	if owner := strings.TrimSpace(f.Owner); owner != "" {
		if strings.TrimSpace(rec.Get(FieldOwner).String()) != owner {
			return false
		}
	}

	if f.Month != 0 || f.Day != 0 {
		m, d, ok := ParseMonthDay(rec.Get(f.dateField()).String())
		if !ok {
			return false
		}
		if f.Month != 0 && m != f.Month {
			return false
		}
		if f.Day != 0 && d != f.Day {
			return false
		}
	}

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		found := false
		for _, sf := range searchFields {
			if strings.Contains(strings.ToLower(rec.Get(sf).String()), q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// ParseMonthDay reads the leading "M/D" token of s. Anything after the second
// number is ignored, and no full date parsing is attempted.
func ParseMonthDay(s string) (month, day int, ok bool) {
	s = strings.TrimSpace(s)
	month, n := leadingInt(s)
	if n == 0 || n >= len(s) || s[n] != '/' {
		return 0, 0, false
	}
	day, m := leadingInt(s[n+1:])
	if m == 0 {
		return 0, 0, false
	}
	return month, day, true
}

// leadingInt parses the unsigned decimal digits at the start of s and
// returns the value and the number of bytes consumed.
func leadingInt(s string) (int, int) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || end > 9 {
		return 0, 0
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, 0
	}
	return v, end
}

// Page is one slice of a filtered, sorted record set.
type Page struct {
	Items      []Record
	PageNumber int
	PageSize   int
	TotalItems int
	TotalPages int
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.PageNumber > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.PageNumber < p.TotalPages }

// TotalPagesFor returns max(1, ceil(n/PageSize)).
func TotalPagesFor(n int) int {
	pages := (n + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage moves page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// FilterRecords returns the records matching filter, in input order.
func FilterRecords(records []Record, filter FilterSpec) []Record {
	if filter.IsZero() {
		out := make([]Record, len(records))
		copy(out, records)
		return out
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if filter.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Query filters, sorts and paginates records. An empty sort field leaves
// the filtered order untouched.
func Query(records []Record, filter FilterSpec, sort SortSpec, page int) Page {
	filtered := FilterRecords(records, filter)
	if sort.Field != "" {
		filtered = SortRecords(filtered, sort.Field, sort.Dir)
	}

	total := len(filtered)
	totalPages := TotalPagesFor(total)
	page = ClampPage(page, totalPages)

	start := (page - 1) * PageSize
	end := min(start+PageSize, total)

	return Page{
		Items:      filtered[start:end],
		PageNumber: page,
		PageSize:   PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
