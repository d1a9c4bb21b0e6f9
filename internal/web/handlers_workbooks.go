package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/ticketsheet/internal/core"
	"github.com/JonMunkholm/ticketsheet/internal/logging"
	"github.com/JonMunkholm/ticketsheet/internal/workbook"
	"github.com/go-chi/chi/v5"
)

// DedupeResponse reports a dedupe of the current sheet.
type DedupeResponse struct {
	Removed int                 `json:"removed"`
	Key     string              `json:"key"`
	Message string              `json:"message"`
	Summary core.SessionSummary `json:"summary"`
}

// SortRequest is the body of a sheet sort.
type SortRequest struct {
	Column int    `json:"column"`
	Dir    string `json:"dir"`
}

// SortResponse reports a sort of the current sheet.
type SortResponse struct {
	Column  string              `json:"column"`
	Dir     core.Direction      `json:"dir"`
	Message string              `json:"message"`
	Summary core.SessionSummary `json:"summary"`
}

// SaveResponse reports a persisted sheet.
type SaveResponse struct {
	Saved   int    `json:"saved"`
	Chunks  int    `json:"chunks"`
	Message string `json:"message"`
}

// handleOpenWorkbook decodes an uploaded file into a new session.
func (s *Server) handleOpenWorkbook(w http.ResponseWriter, r *http.Request) {
	name, data, err := readUpload(w, r, s.cfg.Upload.MaxFileSize)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, err := s.service.Open(r.Context(), name, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sess.Summary())
}

// session looks up the {id} session, writing the error response on failure.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*core.Session, bool) {
	sess, err := s.service.Session(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleWorkbookSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Summary())
}

func (s *Server) handleCloseWorkbook(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Close(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSelectSheet switches the session to another sheet of the workbook.
func (s *Server) handleSelectSheet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Sheet string `json:"sheet"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := sess.SelectSheet(req.Sheet); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Summary())
}

func (s *Server) handleDedupe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.service.Dedupe(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, DedupeResponse{
		Removed: res.Removed,
		Key:     res.KeyLabel,
		Message: fmt.Sprintf("Removed %d duplicate rows by %q", res.Removed, res.KeyLabel),
		Summary: sess.Summary(),
	})
}

func (s *Server) handleSortSheet(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	res, err := s.service.Sort(id, req.Column, core.ParseDirection(req.Dir))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, SortResponse{
		Column:  res.Label,
		Dir:     res.Dir,
		Message: fmt.Sprintf("Sorted by %q (%s)", res.Label, res.Dir),
		Summary: sess.Summary(),
	})
}

// handleExport downloads the current sheet as xlsx (default) or csv.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	format, err := workbook.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, badRequest("format must be xlsx or csv"))
		return
	}

	var buf bytes.Buffer
	if err := workbook.Encode(&buf, sess.Sheet(), format); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", workbook.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, workbook.ExportName(sess.FileName, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// handleSave persists the session's canonical records. A partial save is
// reported with the committed count.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	log := logging.WithFields(r.Context(), "session_id", id)

	res, err := s.service.Save(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	log.Info("save complete", "saved", res.Saved)
	writeJSON(w, http.StatusOK, SaveResponse{
		Saved:   res.Saved,
		Chunks:  res.Chunks,
		Message: fmt.Sprintf("Saved %d tickets", res.Saved),
	})
}

// handleSaveQueueStatus returns the current state of the save limiter.
func (s *Server) handleSaveQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Limiter().Status())
}
