package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/ticketsheet/internal/core"
	"github.com/JonMunkholm/ticketsheet/internal/web/templates"
)

// ticketsView converts a listing page into the template view model.
func ticketsView(lq listQuery, page core.Page) templates.TicketsView {
	fields := core.Fields()

	v := templates.TicketsView{
		Filter:     filterForm(lq),
		Headers:    make([]templates.SortHeader, len(fields)),
		Rows:       make([][]string, len(page.Items)),
		TotalItems: page.TotalItems,
		PageNumber: page.PageNumber,
		TotalPages: page.TotalPages,
	}
	for i, fi := range fields {
		v.Headers[i] = templates.SortHeader{
			Label:  fi.Label,
			URL:    sortLink(lq, fi.Field),
			Active: lq.Sort.Field == fi.Field,
			Desc:   lq.Sort.Dir == core.Desc,
		}
	}
	for i, rec := range page.Items {
		row := make([]string, len(fields))
		for c, fi := range fields {
			row[c] = rec.Get(fi.Field).String()
		}
		v.Rows[i] = row
	}
	if page.HasPrev() {
		v.PrevURL = pageLink(lq, page.PageNumber-1)
	}
	if page.HasNext() {
		v.NextURL = pageLink(lq, page.PageNumber+1)
	}
	return v
}

func filterForm(lq listQuery) templates.FilterForm {
	f := templates.FilterForm{
		Owner:  lq.Filter.Owner,
		Search: lq.Filter.Search,
	}
	if lq.Filter.Month != 0 {
		f.Month = strconv.Itoa(lq.Filter.Month)
	}
	if lq.Filter.Day != 0 {
		f.Day = strconv.Itoa(lq.Filter.Day)
	}
	dateField := lq.Filter.DateField
	if dateField == "" {
		dateField = core.FieldAdded
	}
	for _, fi := range core.Fields() {
		if fi.Date {
			f.DateFields = append(f.DateFields, templates.Option{
				Value:    string(fi.Field),
				Label:    fi.Label,
				Selected: fi.Field == dateField,
			})
		}
	}
	if lq.Sort.Field != "" {
		f.SortField = string(lq.Sort.Field)
		f.SortDir = string(lq.Sort.Dir)
	}
	return f
}

// sortLink is the header link: the current key flips direction, a new
// key starts ascending, and the page resets.
func sortLink(lq listQuery, field core.Field) string {
	v := &core.ViewState{Sort: lq.Sort}
	if err := v.ToggleSort(field); err != nil {
		return "/tickets"
	}
	next := lq
	next.Sort = v.Sort
	next.Page = 1
	return "/tickets?" + next.values().Encode()
}

func pageLink(lq listQuery, page int) string {
	next := lq
	next.Page = page
	return "/tickets?" + next.values().Encode()
}

func (s *Server) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.UploadPage().Render(r.Context(), w)
}

func (s *Server) handleTicketsPage(w http.ResponseWriter, r *http.Request) {
	lq, page, err := s.listPage(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.TicketsPage(ticketsView(lq, page)).Render(r.Context(), w)
}
