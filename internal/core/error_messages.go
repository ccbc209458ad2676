// error_messages.go: Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Users can quote the code to support staff for faster diagnosis.
//
// # Database Constraint Errors (DB001-DB003)
//
//	DB001 - A record with this key already exists
//	        Patterns: "duplicate key"
//	DB002 - This value must be unique but already exists
//	        Patterns: "unique constraint"
//	DB002 - A duplicate value was found
//	        Patterns: "violates unique"
//	DB003 - Referenced record does not exist
//	        Patterns: "foreign key constraint"
//	DB003 - Referenced record does not exist
//	        Patterns: "violates foreign key"
//
// # Database Connection Errors (DB004-DB007)
//
//	DB004 - Unable to connect to database
//	        Patterns: "connection refused"
//	DB005 - Database connection was interrupted
//	        Patterns: "connection reset"
//	DB006 - Operation timed out
//	        Patterns: "timeout"
//	DB007 - Database was busy with conflicting operations
//	        Patterns: "deadlock"
//
// # Validation Errors (VAL001-VAL009)
//
//	VAL001 - Invalid date format detected
//	         Patterns: "invalid date"
//	VAL002 - Invalid number format detected
//	         Patterns: "invalid number"
//	VAL003 - A key field value is missing
//	         Patterns: "missing key value"
//	VAL004 - This column cannot be edited
//	         Patterns: "not editable"
//	VAL005 - This table is read-only
//	         Patterns: "table is read-only"
//	VAL006 - Column not found in table definition
//	         Patterns: "column not found"
//	VAL007 - Unknown change action
//	         Patterns: "unknown action"
//	VAL008 - Invalid yes/no value
//	         Patterns: "must be yes/no"
//	VAL009 - Invalid filter criterion
//	         Patterns: "invalid filter criterion"
//
// # Definition Errors (DEF001-DEF006)
//
//	DEF001 - Table definition is incomplete
//	         Patterns: "missing required key"
//	DEF002 - Table definition has an unknown column data type
//	         Patterns: "invalid data type"
//	DEF002 - Table definition has an unknown column edit type
//	         Patterns: "invalid edit type"
//	DEF003 - Table definition declares a column twice
//	         Patterns: "duplicate column"
//	DEF004 - Table definition has an invalid filter row count
//	         Patterns: "invalid filter row count"
//	DEF005 - Table definition places a filter outside the grid
//	         Patterns: "invalid filter position"
//	DEF006 - Table definition uses a name the file format cannot hold
//	         Patterns: "must not contain whitespace", "invalid key field"
//
// # Request Errors (REQ001-REQ003)
//
//	REQ001 - Request was cancelled
//	         Patterns: "context canceled"
//	REQ002 - Request timed out
//	         Patterns: "context deadline exceeded"
//	REQ003 - Request body could not be read
//	         Patterns: "invalid request body"
//
// # Table Errors (TBL001-TBL003)
//
//	TBL001 - Table not found
//	         Patterns: "unknown table"
//	TBL002 - Table has no data query
//	         Patterns: "table has no query"
//	TBL003 - The row was changed or deleted by someone else
//	         Patterns: "no row matches key"
//
// # Rate Limiting (RATE001-RATE002)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//	RATE002 - Too many updates in progress
//	          Patterns: "too many concurrent updates"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - An unexpected error occurred
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones.

package core

import (
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

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Database Constraint Errors (DB001-DB003)
	// These errors occur when an update violates database constraints.
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Reload the table and review the key fields",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries in your edits",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Review your edits for duplicate key values",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure parent records exist first",
			Code:    "DB003",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure parent records exist first",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB007)
	// These errors occur when database connectivity is disrupted.
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller update batch or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001-VAL009)
	// These errors occur when row edits do not match the table definition.
	// =========================================================================
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "Invalid date format detected",
			Action:  "Use YYYY-MM-DD, MM/DD/YYYY, or Jan 15, 2024",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "Invalid number format detected",
			Action:  "Remove currency symbols and use standard decimal format",
			Code:    "VAL002",
		},
	},
	{
		pattern: "missing key value",
		msg: UserMessage{
			Message: "A key field value is missing",
			Action:  "Include every key field when updating or deleting rows",
			Code:    "VAL003",
		},
	},
	{
		pattern: "not editable",
		msg: UserMessage{
			Message: "This column cannot be edited",
			Action:  "Only edit columns that accept input",
			Code:    "VAL004",
		},
	},
	{
		pattern: "table is read-only",
		msg: UserMessage{
			Message: "This table is read-only",
			Action:  "The table has no update target configured",
			Code:    "VAL005",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "Column not found in table definition",
			Action:  "Verify the column names match the table definition",
			Code:    "VAL006",
		},
	},
	{
		pattern: "unknown action",
		msg: UserMessage{
			Message: "Unknown change action",
			Action:  "Use insert, update or delete",
			Code:    "VAL007",
		},
	},
	{
		pattern: "must be yes/no",
		msg: UserMessage{
			Message: "Invalid yes/no value",
			Action:  "Use yes/no, true/false, or 1/0",
			Code:    "VAL008",
		},
	},
	{
		pattern: "invalid filter criterion",
		msg: UserMessage{
			Message: "Invalid filter criterion",
			Action:  "Use min..max for ranges and YYYY-MM-DD dates",
			Code:    "VAL009",
		},
	},

	// =========================================================================
	// Definition Errors (DEF001-DEF006)
	// These errors occur when a table definition file cannot be used.
	// =========================================================================
	{
		pattern: "missing required key",
		msg: UserMessage{
			Message: "Table definition is incomplete",
			Action:  "Add the missing key to the definition file",
			Code:    "DEF001",
		},
	},
	{
		pattern: "invalid data type",
		msg: UserMessage{
			Message: "Table definition has an unknown column data type",
			Action:  "Use one of: Text, Number, Currency, Date, Boolean",
			Code:    "DEF002",
		},
	},
	{
		pattern: "invalid edit type",
		msg: UserMessage{
			Message: "Table definition has an unknown column edit type",
			Action:  "Use one of: None, Text, Dropdown, Checkbox, Date",
			Code:    "DEF002",
		},
	},
	{
		pattern: "duplicate column",
		msg: UserMessage{
			Message: "Table definition declares a column twice",
			Action:  "Rename or remove the duplicate column",
			Code:    "DEF003",
		},
	},
	{
		pattern: "invalid filter row count",
		msg: UserMessage{
			Message: "Table definition has an invalid filter row count",
			Action:  "Set filter.rows to a non-negative integer",
			Code:    "DEF004",
		},
	},
	{
		pattern: "invalid filter position",
		msg: UserMessage{
			Message: "Table definition places a filter outside the grid",
			Action:  "Use non-negative positions and filter rows below 1024",
			Code:    "DEF005",
		},
	},
	{
		pattern: "must not contain whitespace",
		msg: UserMessage{
			Message: "Table definition uses a name the file format cannot hold",
			Action:  "Remove spaces from column and filter names",
			Code:    "DEF006",
		},
	},
	{
		pattern: "invalid key field",
		msg: UserMessage{
			Message: "Table definition uses a name the file format cannot hold",
			Action:  "Key fields must be non-empty, without commas or surrounding spaces",
			Code:    "DEF006",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// These errors occur when a request is interrupted.
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
			Action:  "Please try again or check your connection",
			Code:    "REQ002",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "Request body could not be read",
			Action:  "Send a JSON array of changes",
			Code:    "REQ003",
		},
	},

	// =========================================================================
	// Table Errors (TBL001-TBL003)
	// These errors occur when a table service is missing or incomplete.
	// =========================================================================
	{
		pattern: "unknown table",
		msg: UserMessage{
			Message: "Table not found",
			Action:  "Verify the service name is correct",
			Code:    "TBL001",
		},
	},
	{
		pattern: "table has no query",
		msg: UserMessage{
			Message: "Table has no data query",
			Action:  "Add a query to the table definition",
			Code:    "TBL002",
		},
	},
	{
		pattern: "no row matches key",
		msg: UserMessage{
			Message: "The row was changed or deleted by someone else",
			Action:  "Reload the table and try again",
			Code:    "TBL003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001-RATE002)
	// Errors related to request throttling.
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "too many concurrent updates",
		msg: UserMessage{
			Message: "Too many updates in progress",
			Action:  "Please retry the update shortly",
			Code:    "RATE002",
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
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}
