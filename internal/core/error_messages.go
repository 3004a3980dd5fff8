package core

// error_messages.go maps technical errors to user messages with a code that
// can be quoted when reporting a problem.
//
// # Error Codes Reference
//
// Typed errors are matched first, with errors.As / errors.Is:
//
//	CFG001 - Column mapping invalid (*ConfigError)
//	         Action: Fix the column settings or reset them to the defaults
//
//	IMP001 - Import rolled back (*ImportError)
//	         Action: Check the reported file and line, then import again
//
//	IMP002 - Column out of range (*ColumnRangeError)
//	         Action: Check the column settings against the file layout
//
//	IMP003 - Part number not valid UTF-8 (ErrInvalidPartNumber)
//	         Action: Save the file as UTF-8 and import again
//
//	KEY001 - Part number mismatch (*KeyMismatchError)
//	         Action: Reload the results and try again
//
//	LKP001 - Part missing from working results (*LookupError)
//	         Action: Run the query again before saving
//
//	FILE001 - File unreadable or unwritable (*FileError)
//	          Action: Check the path and permissions
//
//	OPS001 - Operation in progress (ErrOperationInProgress)
//	         Action: Wait for the running import, update or restore to finish
//
//	OPS002 - Restore not confirmed (ErrRestoreNotConfirmed)
//	         Action: Confirm the restore to replace the part library
//
// Anything else falls through to the pattern table, matched
// case-insensitively with strings.Contains. The first match wins:
//
//	DB001 - Database busy ("database is locked", "sqlite_busy")
//	DB002 - Constraint failed ("constraint failed")
//	DB003 - Database file damaged ("malformed", "not a database")
//	DB004 - Request cancelled ("context canceled")
//	DB005 - Request timed out ("context deadline exceeded")
//	REQ001 - Request unreadable ("invalid request body")
//	REQ002 - No file in upload ("no file provided")
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Reference code
}

// typedMessages matches error types and sentinels. Order matters: an
// ImportError usually wraps one of the more specific errors below it, so
// the specific match is tried first.
var typedMessages = []struct {
	match func(error) bool
	msg   UserMessage
}{
	{
		match: isType[*ColumnRangeError],
		msg: UserMessage{
			Message: "A mapped column is beyond the end of a line",
			Action:  "Check the column settings against the file layout",
			Code:    "IMP002",
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, ErrInvalidPartNumber) },
		msg: UserMessage{
			Message: "A part number contains bytes that are not valid text",
			Action:  "Save the file as UTF-8 and import again",
			Code:    "IMP003",
		},
	},
	{
		match: isType[*ConfigError],
		msg: UserMessage{
			Message: "The column settings are invalid",
			Action:  "Fix the column settings or reset them to the defaults",
			Code:    "CFG001",
		},
	},
	{
		match: isType[*ImportError],
		msg: UserMessage{
			Message: "Import failed and was rolled back",
			Action:  "Check the reported file and line, then import again",
			Code:    "IMP001",
		},
	},
	{
		match: isType[*KeyMismatchError],
		msg: UserMessage{
			Message: "Records with different part numbers were compared",
			Action:  "Reload the results and try again",
			Code:    "KEY001",
		},
	},
	{
		match: isType[*LookupError],
		msg: UserMessage{
			Message: "A part is missing from the edited results",
			Action:  "Run the query again before saving",
			Code:    "LKP001",
		},
	},
	{
		match: isType[*FileError],
		msg: UserMessage{
			Message: "A file could not be read or written",
			Action:  "Check the path and permissions",
			Code:    "FILE001",
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, ErrOperationInProgress) },
		msg: UserMessage{
			Message: "Another operation is in progress",
			Action:  "Wait for the running import, update or restore to finish",
			Code:    "OPS001",
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, ErrRestoreNotConfirmed) },
		msg: UserMessage{
			Message: "Restore was not confirmed",
			Action:  "Confirm the restore to replace the part library",
			Code:    "OPS002",
		},
	},
}

func isType[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps driver error text (lowercase) to user messages.
var errorPatterns = []errorPattern{
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "The part library is busy",
			Action:  "Close other programs using the library and try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "sqlite_busy",
		msg: UserMessage{
			Message: "The part library is busy",
			Action:  "Close other programs using the library and try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "constraint failed",
		msg: UserMessage{
			Message: "A database constraint was violated",
			Action:  "Check the data for empty or duplicate part numbers",
			Code:    "DB002",
		},
	},
	{
		pattern: "malformed",
		msg: UserMessage{
			Message: "The part library file is damaged",
			Action:  "Restore the library from the backup",
			Code:    "DB003",
		},
	},
	{
		pattern: "not a database",
		msg: UserMessage{
			Message: "The part library file is damaged",
			Action:  "Restore the library from the backup",
			Code:    "DB003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB005",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Check the request format and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to import",
			Code:    "REQ002",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the logs",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Typed
// errors are checked before the text patterns; ERR000 is the fallback.
//
// Example:
//
//	msg := MapError(&LookupError{PartNumber: "R1"})
//	// msg.Code == "LKP001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, tm := range typedMessages {
		if tm.match(err) {
			return tm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Err error
	Msg UserMessage
}

// NewUserError wraps err with its mapped message. Returns nil for nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Err: err, Msg: MapError(err)}
}

func (e *UserError) Error() string { return e.Msg.Message }

func (e *UserError) Unwrap() error { return e.Err }
