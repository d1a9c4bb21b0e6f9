package core

import (
	"slices"
	"sync"
	"time"
)

// Session holds one loaded workbook and the sheet being edited.
//
// The selected sheet is replaced wholesale by dedupe and sort; readers see
// either the old sheet or the new one. Edited sheets are written back to the
// session's own copy of the workbook, so they survive switching sheets.
// Records are derived lazily and cached until the sheet changes.
type Session struct {
	ID        string
	FileName  string
	CreatedAt time.Time

	mu       sync.RWMutex
	workbook *Workbook
	selected string
	sheet    RawSheet
	version  int
	records  []Record
	cached   int // sheet version the records were built from; -1 when stale
	lastUsed time.Time
}

// NewSession opens a session on wb with its first sheet selected.
func NewSession(id string, wb *Workbook) (*Session, error) {
	if wb == nil || len(wb.Sheets) == 0 {
		name := ""
		if wb != nil {
			name = wb.FileName
		}
		return nil, &FormatError{FileName: name, Reason: "no sheets", Err: ErrNoSheets}
	}
	now := time.Now()
	return &Session{
		ID:        id,
		FileName:  wb.FileName,
		CreatedAt: now,
		workbook:  &Workbook{FileName: wb.FileName, Sheets: slices.Clone(wb.Sheets)},
		selected:  wb.Sheets[0].Name,
		sheet:     wb.Sheets[0],
		cached:    -1,
		lastUsed:  now,
	}, nil
}

// SessionSummary is a read-only snapshot for display.
type SessionSummary struct {
	ID       string   `json:"id"`
	FileName string   `json:"file_name"`
	Sheets   []string `json:"sheets"`
	Selected string   `json:"selected"`
	Columns  []string `json:"columns"`
	RowCount int      `json:"row_count"`
	Version  int      `json:"version"`
}

// Summary returns the current sheet list, selection, columns and row count.
func (s *Session) Summary() SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionSummary{
		ID:       s.ID,
		FileName: s.FileName,
		Sheets:   s.workbook.SheetNames(),
		Selected: s.selected,
		Columns:  s.sheet.Columns(),
		RowCount: CountDataRows(s.sheet),
		Version:  s.version,
	}
}

// Sheet returns the current sheet.
func (s *Session) Sheet() RawSheet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sheet
}

// SelectSheet switches to the named sheet. Edits made to any sheet earlier in
// the session are kept.
func (s *Session) SelectSheet(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sheet, ok := s.workbook.Sheet(name)
	if !ok {
		return ErrSheetNotFound
	}
	s.selected = name
	s.swap(sheet)
	return nil
}

// Dedupe removes duplicate ticket numbers from the current sheet.
// On error the sheet is unchanged.
func (s *Session) Dedupe() (SheetDedupe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := DedupeSheet(s.sheet, ConflictKey)
	if err != nil {
		return SheetDedupe{}, err
	}
	s.swap(res.Sheet)
	return res, nil
}

// Sort orders the current sheet by column. On error the sheet is unchanged.
func (s *Session) Sort(column int, dir Direction) (SheetSort, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := SortSheet(s.sheet, column, dir)
	if err != nil {
		return SheetSort{}, err
	}
	s.swap(res.Sheet)
	return res, nil
}

// Records returns the canonical records of the current sheet.
// The slice is shared; callers must not modify it.
func (s *Session) Records() []Record {
	s.mu.RLock()
	if s.cached == s.version {
		recs := s.records
		s.mu.RUnlock()
		return recs
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != s.version {
		s.records = BuildRecords(s.sheet)
		s.cached = s.version
	}
	return s.records
}

// RowCount returns the number of non-blank data rows in the current sheet.
func (s *Session) RowCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CountDataRows(s.sheet)
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

// IdleSince returns how long the session has been unused at now.
func (s *Session) IdleSince(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastUsed)
}

// swap installs a new sheet and stores it in the workbook under the selected
// name. The sheet list is replaced, never written in place. Caller holds mu.
func (s *Session) swap(sheet RawSheet) {
	sheet.Name = s.selected
	sheets := slices.Clone(s.workbook.Sheets)
	for i := range sheets {
		if sheets[i].Name == s.selected {
			sheets[i] = sheet
			break
		}
	}
	s.workbook = &Workbook{FileName: s.workbook.FileName, Sheets: sheets}
	s.sheet = sheet
	s.version++
	s.records = nil
	s.cached = -1
	s.lastUsed = time.Now()
}
