package core

// ViewState is the mutable filter, sort and page selection of a listing.
// It is owned by one caller and is not safe for concurrent use.
type ViewState struct {
	Filter FilterSpec
	Sort   SortSpec
	Page   int

	// memo of the last Apply
	lastRecords []Record
	lastFilter  FilterSpec
	lastSort    SortSpec
	lastSorted  []Record
}

// NewViewState returns a view on page 1 sorted by ticket number ascending.
func NewViewState() *ViewState {
	return &ViewState{Sort: DefaultSort, Page: 1}
}

// SetFilter replaces the filter and returns to page 1.
func (v *ViewState) SetFilter(f FilterSpec) error {
	if f.DateField != "" && !f.DateField.IsDate() {
		return &MissingColumnError{Field: f.DateField}
	}
	v.Filter = f
	v.Page = 1
	return nil
}

// SetSort replaces the sort key and direction. The page is kept and clamped on Apply.
func (v *ViewState) SetSort(s SortSpec) error {
	if _, ok := LookupField(s.Field); !ok {
		return &MissingColumnError{Field: s.Field}
	}
	if s.Dir != Desc {
		s.Dir = Asc
	}
	v.Sort = s
	return nil
}

// ToggleSort selects field as the sort key. Selecting the current key flips
// the direction; a new key starts ascending.
func (v *ViewState) ToggleSort(field Field) error {
	next := SortSpec{Field: field, Dir: Asc}
	if v.Sort.Field == field && v.Sort.Dir == Asc {
		next.Dir = Desc
	}
	return v.SetSort(next)
}

// SetPage requests a page; Apply clamps it.
func (v *ViewState) SetPage(page int) {
	v.Page = page
}

// Apply runs the query over records and stores the clamped page number.
// Filtering and sorting are reused while records, filter and sort are unchanged.
func (v *ViewState) Apply(records []Record) Page {
	if !v.memoValid(records) {
		sorted := FilterRecords(records, v.Filter)
		if v.Sort.Field != "" {
			sorted = SortRecords(sorted, v.Sort.Field, v.Sort.Dir)
		}
		v.lastRecords = records
		v.lastFilter = v.Filter
		v.lastSort = v.Sort
		v.lastSorted = sorted
	}

	// Already filtered and sorted: paginate only.
	p := Query(v.lastSorted, FilterSpec{}, SortSpec{}, v.Page)
	v.Page = p.PageNumber
	return p
}

func (v *ViewState) memoValid(records []Record) bool {
	if v.lastSorted == nil || v.lastFilter != v.Filter || v.lastSort != v.Sort {
		return false
	}
	if len(records) != len(v.lastRecords) {
		return false
	}
	return len(records) == 0 || &records[0] == &v.lastRecords[0]
}
