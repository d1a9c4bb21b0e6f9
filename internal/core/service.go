package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SaveTimeout is the maximum duration for persisting one workbook.
var SaveTimeout = 10 * time.Minute

// ServiceOptions tunes a Service. Zero values take defaults.
type ServiceOptions struct {
	MaxConcurrentSaves int
	MaxSaveWait        time.Duration
	SaveTimeout        time.Duration
}

// Service owns the open workbook sessions and the record store.
type Service struct {
	store       RecordStore
	decode      DecodeFunc
	limiter     *UploadLimiter
	saveTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a Service. decode turns uploaded bytes into a workbook.
func NewService(store RecordStore, decode DecodeFunc, opts ServiceOptions) *Service {
	timeout := opts.SaveTimeout
	if timeout <= 0 {
		timeout = SaveTimeout
	}
	return &Service{
		store:       store,
		decode:      decode,
		limiter:     NewUploadLimiter(opts.MaxConcurrentSaves, opts.MaxSaveWait),
		saveTimeout: timeout,
		sessions:    make(map[string]*Session),
	}
}

// Limiter exposes the save limiter for status and graceful shutdown.
func (s *Service) Limiter() *UploadLimiter {
	return s.limiter
}

// Open decodes an uploaded file and starts a session on its first sheet.
// A FormatError leaves no session behind.
func (s *Service) Open(ctx context.Context, fileName string, data []byte) (*Session, error) {
	wb, err := s.decode(ctx, fileName, data)
	if err != nil {
		return nil, err
	}

	sess, err := NewSession(uuid.New().String(), wb)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	slog.Info("workbook opened",
		"session_id", sess.ID,
		"file", fileName,
		"sheets", len(wb.Sheets),
		"rows", sess.RowCount(),
	)
	return sess, nil
}

// Session returns an open session and marks it used.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.Touch()
	return sess, nil
}

// Close drops a session.
func (s *Service) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Dedupe removes duplicate ticket numbers from a session's sheet.
func (s *Service) Dedupe(id string) (SheetDedupe, error) {
	sess, err := s.Session(id)
	if err != nil {
		return SheetDedupe{}, err
	}
	res, err := sess.Dedupe()
	if err != nil {
		return SheetDedupe{}, err
	}
	slog.Info("sheet deduplicated",
		"session_id", id,
		"key", res.KeyLabel,
		"removed", res.Removed,
	)
	return res, nil
}

// Sort orders a session's sheet by column.
func (s *Service) Sort(id string, column int, dir Direction) (SheetSort, error) {
	sess, err := s.Session(id)
	if err != nil {
		return SheetSort{}, err
	}
	res, err := sess.Sort(column, dir)
	if err != nil {
		return SheetSort{}, err
	}
	slog.Info("sheet sorted", "session_id", id, "column", res.Label, "dir", res.Dir)
	return res, nil
}

// Save persists the canonical records of a session's current sheet.
// Concurrent saves are bounded by the limiter.
func (s *Service) Save(ctx context.Context, id string) (SaveResult, error) {
	sess, err := s.Session(id)
	if err != nil {
		return SaveResult{}, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return SaveResult{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()

	records := sess.Records()
	start := time.Now()
	res, err := SaveRecords(ctx, s.store, records)
	if err != nil {
		slog.Error("save failed", "session_id", id, "committed", res.Saved, "error", err)
		return res, err
	}

	slog.Info("records saved",
		"session_id", id,
		"saved", res.Saved,
		"chunks", res.Chunks,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// List fetches every stored record and applies the view.
func (s *Service) List(ctx context.Context, view *ViewState) (Page, error) {
	records, err := FetchRecords(ctx, s.store)
	if err != nil {
		return Page{}, err
	}
	return view.Apply(records), nil
}

// ListRecords is List for a one-off query.
func (s *Service) ListRecords(ctx context.Context, filter FilterSpec, sort SortSpec, page int) (Page, error) {
	view := NewViewState()
	if err := view.SetFilter(filter); err != nil {
		return Page{}, err
	}
	if sort.Field != "" {
		if err := view.SetSort(sort); err != nil {
			return Page{}, err
		}
	}
	view.SetPage(page)
	return s.List(ctx, view)
}

// Import opens a file, optionally selects a sheet and dedupes, then saves.
// The session is closed afterwards.
func (s *Service) Import(ctx context.Context, fileName string, data []byte, sheet string, dedupe bool) (SaveResult, error) {
	sess, err := s.Open(ctx, fileName, data)
	if err != nil {
		return SaveResult{}, err
	}
	defer s.Close(sess.ID)

	if sheet != "" {
		if err := sess.SelectSheet(sheet); err != nil {
			return SaveResult{}, fmt.Errorf("select %q: %w", sheet, err)
		}
	}
	if dedupe {
		if _, err := s.Dedupe(sess.ID); err != nil {
			return SaveResult{}, err
		}
	}
	return s.Save(ctx, sess.ID)
}

// SweepIdle closes sessions unused for longer than ttl and returns how many were closed.
func (s *Service) SweepIdle(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	closed := 0
	for id, sess := range s.sessions {
		if sess.IdleSince(now) > ttl {
			delete(s.sessions, id)
			closed++
		}
	}
	return closed
}
