package core

// error_messages.go maps technical errors to user-facing messages.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Missing columns: The file lacks columns this view needs
//	         Action: Export the report again with the listed columns included
//	         Patterns: "missing required columns"
//
// # Parse Errors (PRS001-PRS099)
//
//	PRS001 - Unsupported file type: Only CSV and Excel workbooks are accepted
//	         Action: Save the export as .csv or .xlsx
//	         Patterns: "unsupported file type"
//
//	PRS002 - Invalid CSV: The file could not be read as CSV
//	         Action: Ensure the file is comma-separated with a header row
//	         Patterns: "invalid csv"
//
//	PRS003 - Invalid workbook: The Excel workbook could not be opened
//	         Action: Re-save the workbook in Excel and upload it again
//	         Patterns: "invalid workbook"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds maximum size limit
//	FILE004 - No file: No file was selected
//	FILE005 - Empty file: The uploaded file has no header row
//
// # Dataset and Query Errors (DS001, QRY001-QRY099)
//
//	DS001  - No dataset: Nothing has been uploaded yet
//	QRY001 - Section not found: No section has that class number
//	QRY002 - Course not found: The course has no marker sections
//
// # Request Errors (VAL001-VAL099, UPL003-UPL005, RATE001)
//
//	VAL001 - Invalid parameter: A query parameter failed validation
//	UPL003 - Busy: Too many uploads in progress
//	UPL004 - Request cancelled
//	UPL005 - Request timeout
//	RATE001 - Rate limited: Too many requests
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Check application logs for the original technical error.
//
// # Pattern Matching
//
// Typed errors (SchemaError, ParseError, the Err* sentinels) are matched
// first with errors.As / errors.Is. Remaining errors are matched
// case-insensitively with strings.Contains; the first matching pattern wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgMissingColumns = UserMessage{
		Message: "The file is missing columns this view needs",
		Action:  "Export the report again with the listed columns included",
		Code:    "SCH001",
	}
	msgUnsupportedType = UserMessage{
		Message: "Unsupported file type",
		Action:  "Save the export as .csv or .xlsx and upload it again",
		Code:    "PRS001",
	}
	msgNoDataset = UserMessage{
		Message: "No enrollment data has been uploaded yet",
		Action:  "Upload a CSV or Excel export first",
		Code:    "DS001",
	}
	msgSectionNotFound = UserMessage{
		Message: "No section has that class number",
		Action:  "Check the SOC Class Nbr and try again",
		Code:    "QRY001",
	}
	msgCourseNotFound = UserMessage{
		Message: "This course has no DLC sections",
		Action:  "Pick a course from the DLC course list",
		Code:    "QRY002",
	}
	msgInvalidParameter = UserMessage{
		Message: "A request parameter is invalid",
		Action:  "Check the subject, course number and filters",
		Code:    "VAL001",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Order matters: more specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{pattern: "missing required columns", msg: msgMissingColumns},
	{pattern: "unsupported file type", msg: msgUnsupportedType},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with a header row",
			Code:    "PRS002",
		},
	},
	{
		pattern: "invalid workbook",
		msg: UserMessage{
			Message: "The Excel workbook could not be opened",
			Action:  "Re-save the workbook in Excel and upload it again",
			Code:    "PRS003",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Remove unused columns or split the export by term",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV or Excel file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a file with a header row",
			Code:    "FILE005",
		},
	},
	{pattern: "no dataset loaded", msg: msgNoDataset},
	{pattern: "section not found", msg: msgSectionNotFound},
	{pattern: "course not found", msg: msgCourseNotFound},
	{pattern: "validation failed", msg: msgInvalidParameter},
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "The server is busy processing other uploads",
			Action:  "Please wait a moment and upload again",
			Code:    "UPL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
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

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Typed errors are matched first; then known patterns; otherwise ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		msg := msgMissingColumns
		msg.Message = fmt.Sprintf("%s: %s", msg.Message, strings.Join(schemaErr.Missing, ", "))
		return msg
	}

	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		msg := msgInvalidParameter
		msg.Message = fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
		return msg
	}

	switch {
	case errors.Is(err, ErrNoDataset):
		return msgNoDataset
	case errors.Is(err, ErrSectionNotFound):
		return msgSectionNotFound
	case errors.Is(err, ErrCourseNotFound):
		return msgCourseNotFound
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// Display formats the message for logs and plain-text output:
// "Message (Code: XXX). Action"
func (e *UserError) Display() string {
	return fmt.Sprintf("%s (Code: %s). %s", e.User.Message, e.User.Code, e.User.Action)
}

// NewUserError creates a UserError by mapping a technical error.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
