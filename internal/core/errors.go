package core

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for session lookups.
var (
	ErrSessionNotFound = errors.New("workbook session not found")
	ErrSheetNotFound   = errors.New("sheet not found")
	ErrNoSheets        = errors.New("workbook contains no sheets")

	// ErrUnsupportedExtension is wrapped by FormatError for files that are
	// not .xlsx, .xls or .csv.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)

// FormatError reports an upload that could not be decoded: a disallowed
// extension, a corrupt container or a workbook without sheets.
type FormatError struct {
	FileName string
	Reason   string
	Err      error
}

func (e *FormatError) Error() string {
	msg := "cannot read " + strconv.Quote(e.FileName) + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// MissingColumnError reports a key, sort or filter target that does not
// resolve to a column of the sheet.
type MissingColumnError struct {
	Field  Field // Set when a canonical field was requested
	Column int   // Set when a column index was requested
	Sheet  string
}

func (e *MissingColumnError) Error() string {
	target := "column " + strconv.Itoa(e.Column)
	if e.Field != "" {
		target = "column for " + strconv.Quote(e.Field.Label())
	}
	if e.Sheet != "" {
		return fmt.Sprintf("sheet %q: %s not found", e.Sheet, target)
	}
	return target + " not found"
}

// PersistenceError reports a failed upsert or fetch. Committed counts the
// records written by earlier chunks; they are not rolled back.
type PersistenceError struct {
	Op        string // "upsert" or "fetch"
	Committed int
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.Op == "fetch" {
		return "fetch records: " + e.Err.Error()
	}
	return fmt.Sprintf("upsert records (%d committed): %v", e.Committed, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
