package core

// # Error Codes Reference
//
// User-facing messages with codes for support reference. Users can quote the
// code; support staff look it up here.
//
// # Selection Errors (SEL001-SEL099)
//
//	SEL001 - Empty selection: compare was requested with no country selected
//	         Action: 请至少选择一个国家进行比较。
//	         Sentinel: ErrEmptySelection
//
// # Directory Errors (REG001-REG099)
//
//	REG001 - Unknown region: the region is not in the directory
//	         Action: Pick a region from the list
//	         Sentinel: ErrUnknownRegion
//
// # Indicator Errors (IND001-IND099)
//
//	IND001 - Unknown indicator: the indicator key is not in the catalog
//	         Action: Pick indicators from the list
//	         Sentinel: ErrUnknownIndicator
//
// # Data Errors (DATA001-DATA099)
//
//	DATA001 - Dataset unavailable: a dataset could not be read
//	          Patterns: "no such file", "load dataset"
//	DATA002 - Dataset malformed: a dataset could not be parsed
//	          Patterns: "invalid character", "unexpected end of json"
//	DATA003 - Export unavailable: no comparison has been built yet
//	          Patterns: "no table"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled. Patterns: "context canceled"
//	REQ002 - Request timed out. Patterns: "context deadline exceeded"
//	REQ003 - Bad request body. Patterns: "invalid request"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests. Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// Sentinels are matched with errors.Is before any pattern. Patterns are
// matched case-insensitively with strings.Contains; the first match wins.

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

type sentinelMessage struct {
	target error
	msg    UserMessage
}

// sentinelMessages is checked in order with errors.Is.
var sentinelMessages = []sentinelMessage{
	{
		target: ErrEmptySelection,
		msg: UserMessage{
			Message: "No country selected",
			Action:  "请至少选择一个国家进行比较。",
			Code:    "SEL001",
		},
	},
	{
		target: ErrUnknownRegion,
		msg: UserMessage{
			Message: "Region not found",
			Action:  "Pick a region from the list",
			Code:    "REG001",
		},
	},
	{
		target: ErrUnknownIndicator,
		msg: UserMessage{
			Message: "Indicator not found",
			Action:  "Pick indicators from the list",
			Code:    "IND001",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Data Errors (DATA001-DATA003)
	// =========================================================================
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "Dataset is unavailable",
			Action:  "Run the merge job or check the data paths",
			Code:    "DATA001",
		},
	},
	{
		pattern: "load dataset",
		msg: UserMessage{
			Message: "Dataset is unavailable",
			Action:  "Run the merge job or check the data paths",
			Code:    "DATA001",
		},
	},
	{
		pattern: "invalid character",
		msg: UserMessage{
			Message: "Dataset could not be parsed",
			Action:  "Regenerate the dataset with the merge job",
			Code:    "DATA002",
		},
	},
	{
		pattern: "unexpected end of json",
		msg: UserMessage{
			Message: "Dataset could not be parsed",
			Action:  "Regenerate the dataset with the merge job",
			Code:    "DATA002",
		},
	},
	{
		pattern: "no table",
		msg: UserMessage{
			Message: "There is no comparison to export",
			Action:  "Run a comparison first",
			Code:    "DATA003",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Check the submitted fields",
			Code:    "REQ003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
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

// MapError converts a technical error to a user-friendly message.
// Known sentinels win over text patterns; unmatched errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
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

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error       // Underlying error for logging
	User      UserMessage // User-friendly message for display
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
