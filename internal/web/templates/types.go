package templates

// SortHeader is one column heading of the ticket table. URL applies the
// sort toggle for that column.
type SortHeader struct {
	Label  string
	URL    string
	Active bool
	Desc   bool
}

// Indicator is the direction arrow shown after the active column's label.
func (h SortHeader) Indicator() string {
	switch {
	case !h.Active:
		return ""
	case h.Desc:
		return " ▼"
	default:
		return " ▲"
	}
}

// Option is one entry of a select box.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// FilterForm holds the current listing filter as form values.
type FilterForm struct {
	Owner      string
	Search     string
	Month      string
	Day        string
	DateFields []Option
	SortField  string
	SortDir    string
}

// TicketsView is everything the tickets page renders.
type TicketsView struct {
	Filter     FilterForm
	Headers    []SortHeader
	Rows       [][]string
	TotalItems int
	PageNumber int
	TotalPages int
	PrevURL    string
	NextURL    string
}
