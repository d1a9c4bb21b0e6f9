package core

// error_messages.go maps technical errors to user-facing messages with
// support codes. Users quote the code; support finds the technical error in
// the logs.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Unsupported file: extension is not .xlsx, .xls or .csv
//	FILE002 - Unreadable file: container is corrupt or not a spreadsheet
//	FILE003 - Empty workbook: the file has no sheets
//	FILE004 - No file: the request carried no file
//	FILE005 - File too large: upload exceeds the size limit
//
// # Column Errors (COL001-COL099)
//
//	COL001 - Missing column: dedupe key or sort target is not in the header
//	COL002 - Sheet not found: the requested sheet is not in the workbook
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Partial save: a chunk failed after earlier chunks were committed
//	DB002 - Save failed: nothing was committed
//	DB003 - Read failed: stored tickets could not be fetched
//	DB004 - Connection refused: store unreachable
//	DB005 - Timeout: store did not answer in time
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Session expired: the workbook session is gone
//	UPL002 - System busy: too many saves in progress
//	UPL003 - Request cancelled
//	UPL004 - Request timeout
//
// # Rate Limiting
//
//	RATE001 - Too many requests
//
// # Default
//
//	ERR000 - Anything else; check the logs for the technical error.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage is a user-facing description of an error.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code,omitempty"`
}

// errorPattern maps a lower-case substring of a technical error to a message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is consulted after typed errors, first match wins.
var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File too large",
			Action:  "Split the workbook or remove unused sheets",
			Code:    "FILE005",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose an .xlsx, .xls or .csv file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the ticket store",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message. Typed
// errors are matched first, then substring patterns, then ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var fe *FormatError
	if errors.As(err, &fe) {
		switch {
		case errors.Is(err, ErrNoSheets):
			return UserMessage{Message: "The workbook has no sheets", Action: "Upload a file that contains ticket data", Code: "FILE003"}
		case errors.Is(err, ErrUnsupportedExtension):
			return UserMessage{Message: "Unsupported file type", Action: "Upload an .xlsx, .xls or .csv file", Code: "FILE001"}
		default:
			return UserMessage{Message: "The file could not be read", Action: "Check that the file opens in a spreadsheet program and re-export it", Code: "FILE002"}
		}
	}

	var mc *MissingColumnError
	if errors.As(err, &mc) {
		return UserMessage{
			Message: "Column not found: " + mc.target(),
			Action:  "Check the header row of the selected sheet",
			Code:    "COL001",
		}
	}

	var pe *PersistenceError
	if errors.As(err, &pe) {
		if pe.Op == "fetch" {
			return UserMessage{Message: "Tickets could not be loaded", Action: "Please try again", Code: "DB003"}
		}
		if pe.Committed > 0 {
			return UserMessage{
				Message: fmt.Sprintf("Save stopped after %d tickets were stored", pe.Committed),
				Action:  "Save again; stored tickets are updated in place",
				Code:    "DB001",
			}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return UserMessage{Message: "The ticket store timed out", Action: "Try again later", Code: "DB005"}
		}
		return UserMessage{Message: "Tickets could not be saved", Action: "Please try again", Code: "DB002"}
	}

	switch {
	case errors.Is(err, ErrSheetNotFound):
		return UserMessage{Message: "Sheet not found", Action: "Pick one of the listed sheets", Code: "COL002"}
	case errors.Is(err, ErrSessionNotFound):
		return UserMessage{Message: "Workbook session expired", Action: "Upload the file again", Code: "UPL001"}
	case errors.Is(err, ErrTooManyUploads):
		return UserMessage{Message: "Too many saves in progress", Action: "Please wait a moment and try again", Code: "UPL002"}
	case errors.Is(err, context.Canceled):
		return UserMessage{Message: "Request was cancelled", Action: "Please try again", Code: "UPL003"}
	case errors.Is(err, context.DeadlineExceeded):
		return UserMessage{Message: "Request timed out", Action: "Try a smaller file or check your connection", Code: "UPL004"}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

func (e *MissingColumnError) target() string {
	if e.Field != "" {
		return e.Field.Label()
	}
	return fmt.Sprintf("column %d", e.Column+1)
}
