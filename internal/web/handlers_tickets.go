package web

import (
	"net/http"

	"github.com/JonMunkholm/ticketsheet/internal/core"
)

// TicketPage is the JSON form of one listing page.
type TicketPage struct {
	Items      []map[string]string `json:"items"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalItems int                 `json:"total_items"`
	TotalPages int                 `json:"total_pages"`
	Sort       string              `json:"sort"`
	Dir        core.Direction      `json:"dir"`
}

func toTicketPage(p core.Page, sort core.SortSpec) TicketPage {
	items := make([]map[string]string, len(p.Items))
	for i, rec := range p.Items {
		items[i] = rec.Strings()
	}
	return TicketPage{
		Items:      items,
		Page:       p.PageNumber,
		PageSize:   p.PageSize,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
		Sort:       string(sort.Field),
		Dir:        sort.Dir,
	}
}

// listPage runs the listing query for r.
func (s *Server) listPage(r *http.Request) (listQuery, core.Page, error) {
	lq, err := parseListQuery(r)
	if err != nil {
		return lq, core.Page{}, err
	}
	view, err := lq.view()
	if err != nil {
		return lq, core.Page{}, err
	}
	page, err := s.service.List(r.Context(), view)
	if err != nil {
		return lq, core.Page{}, err
	}
	lq.Page = page.PageNumber
	lq.Sort = view.Sort
	return lq, page, nil
}

// handleListTickets returns one page of stored tickets as JSON.
func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	lq, page, err := s.listPage(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTicketPage(page, lq.Sort))
}

// handleHealth reports liveness and open session count.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.service.SessionCount(),
		"saves":    s.service.Limiter().Status(),
	})
}
