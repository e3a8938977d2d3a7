package core

// error_messages.go maps technical errors to user-facing messages with a
// code that support staff can look up.
//
// # Error Codes Reference
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Source unreachable: The record source could not be contacted
//	         Patterns: "connection refused", "no such host", "source unreachable"
//	SRC002 - Malformed dataset: The source did not return a record list
//	         Patterns: "malformed dataset"
//	SRC003 - Unsupported source: The SOURCE_URL scheme is not recognised
//	         Patterns: "unsupported source"
//	SRC004 - Source status: The source answered with an error status
//	         Patterns: "unexpected status"
//	SRC005 - Source missing: The file or table does not exist
//	         Patterns: "no such file", "no such table", "does not exist"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid date          Patterns: "invalid date"
//	VAL002 - Invalid number        Patterns: "invalid number"
//	VAL003 - Required field        Patterns: "required field"
//	VAL004 - Unknown column        Patterns: "unknown column"
//	VAL005 - Invalid sort order    Patterns: "invalid sort direction"
//	VAL006 - Duplicate record ID   Patterns: "duplicate key"
//	VAL007 - Malformed request     Patterns: "invalid criteria"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session not found     Patterns: "session not found"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Export busy           Patterns: "too many concurrent exports"
//	REQ002 - Request cancelled     Patterns: "context canceled"
//	REQ003 - Request timeout       Patterns: "context deadline exceeded", "timeout"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited         Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application logs for the
// original error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgUnreachable = UserMessage{
		Message: "The record source could not be reached",
		Action:  "Check SOURCE_URL and that the source is running",
		Code:    "SRC001",
	}
	msgSourceMissing = UserMessage{
		Message: "The record source does not exist",
		Action:  "Check the file path or SOURCE_TABLE setting",
		Code:    "SRC005",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Please try again",
		Code:    "REQ003",
	}
)

// errorPatterns is ordered: specific patterns first.
var errorPatterns = []errorPattern{
	// Source errors
	{pattern: "connection refused", msg: msgUnreachable},
	{pattern: "no such host", msg: msgUnreachable},
	{pattern: "source unreachable", msg: msgUnreachable},
	{
		pattern: "malformed dataset",
		msg: UserMessage{
			Message: "The record source did not return a list of records",
			Action:  "Verify the source returns a JSON array of product records",
			Code:    "SRC002",
		},
	},
	{
		pattern: "unsupported source",
		msg: UserMessage{
			Message: "The record source type is not supported",
			Action:  "Use a file path, http(s), postgres or sqlite URL",
			Code:    "SRC003",
		},
	},
	{
		pattern: "unexpected status",
		msg: UserMessage{
			Message: "The record source returned an error",
			Action:  "Check the source service logs",
			Code:    "SRC004",
		},
	},
	{pattern: "no such file", msg: msgSourceMissing},
	{pattern: "no such table", msg: msgSourceMissing},
	{pattern: "does not exist", msg: msgSourceMissing},

	// Validation errors
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "Invalid date format detected",
			Action:  "Use ISO-8601 dates such as 2024-01-15 or 2024-01-15T10:00:00Z",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "Invalid number format detected",
			Action:  "Use a plain non-negative decimal such as 19.99",
			Code:    "VAL002",
		},
	},
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is missing",
			Action:  "Ensure every record has all required fields",
			Code:    "VAL003",
		},
	},
	{
		pattern: "unknown column",
		msg: UserMessage{
			Message: "Unknown column",
			Action:  "Use one of the columns listed by /api/columns",
			Code:    "VAL004",
		},
	},
	{
		pattern: "invalid sort direction",
		msg: UserMessage{
			Message: "Invalid sort direction",
			Action:  "Use asc or desc",
			Code:    "VAL005",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID was already loaded",
			Action:  "Remove duplicate IDs from the source",
			Code:    "VAL006",
		},
	},
	{
		pattern: "invalid criteria",
		msg: UserMessage{
			Message: "The view criteria could not be read",
			Action:  "Check the request body is valid JSON",
			Code:    "VAL007",
		},
	},

	// Session errors
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "View session not found",
			Action:  "The session may have expired. Please start a new one",
			Code:    "SES001",
		},
	},

	// Request errors
	{
		pattern: "too many concurrent exports",
		msg: UserMessage{
			Message: "System is busy with other exports",
			Action:  "Please wait a moment and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{pattern: "context deadline exceeded", msg: msgTimeout},
	{pattern: "timeout", msg: msgTimeout},

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
// It returns the first matching pattern, or ERR000 when none match.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
