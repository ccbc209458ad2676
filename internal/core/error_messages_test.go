package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "duplicate key maps correctly",
			err:         errors.New("ERROR: duplicate key value violates unique constraint"),
			wantCode:    "DB001",
			wantMessage: "A record with this key already exists",
		},
		{
			name:        "foreign key maps correctly",
			err:         errors.New("violates foreign key constraint"),
			wantCode:    "DB003",
			wantMessage: "Referenced record does not exist",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "unknown table maps correctly",
			err:         fmt.Errorf("%w: orders", ErrUnknownTable),
			wantCode:    "TBL001",
			wantMessage: "Table not found",
		},
		{
			name:        "missing query maps correctly",
			err:         fmt.Errorf("%w: orders", ErrNoQuery),
			wantCode:    "TBL002",
			wantMessage: "Table has no data query",
		},
		{
			name:        "read-only table maps correctly",
			err:         ErrReadOnly,
			wantCode:    "VAL005",
			wantMessage: "This table is read-only",
		},
		{
			name: "validation errors map by first matching pattern",
			err: ValidationErrors{
				{Row: 0, Field: "id", Message: "missing key value"},
			},
			wantCode:    "VAL003",
			wantMessage: "A key field value is missing",
		},
		{
			name:        "invalid number maps correctly",
			err:         ValidationErrors{{Row: 1, Field: "amount", Value: "abc", Message: "invalid number format"}},
			wantCode:    "VAL002",
			wantMessage: "Invalid number format detected",
		},
		{
			name:        "unknown action maps correctly",
			err:         ValidationErrors{{Row: 0, Value: "upsert", Message: "unknown action"}},
			wantCode:    "VAL007",
			wantMessage: "Unknown change action",
		},
		{
			name:        "filter criterion maps correctly",
			err:         errors.New(`invalid filter criterion: date "yesterday"`),
			wantCode:    "VAL009",
			wantMessage: "Invalid filter criterion",
		},
		{
			name:        "stale row maps correctly",
			err:         errors.New("update orders: no row matches key"),
			wantCode:    "TBL003",
			wantMessage: "The row was changed or deleted by someone else",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "filter outside grid maps correctly",
			err:         fmt.Errorf("filter.row4096: %w", ErrInvalidPosition),
			wantCode:    "DEF005",
			wantMessage: "Table definition places a filter outside the grid",
		},
		{
			name:        "unwritable column name maps correctly",
			err:         fmt.Errorf("%w: %q", ErrInvalidColumnName, "first name"),
			wantCode:    "DEF006",
			wantMessage: "Table definition uses a name the file format cannot hold",
		},
		{
			name:        "update limiter maps correctly",
			err:         ErrTooManyUpdates,
			wantCode:    "RATE002",
			wantMessage: "Too many updates in progress",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DUPLICATE KEY value violates"),
			wantCode:    "DB001",
			wantMessage: "A record with this key already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := errors.New("duplicate key value violates")
	result := FormatUserError(err)

	expected := "A record with this key already exists (Code: DB001). Reload the table and review the key fields"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrUnknownTable,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
