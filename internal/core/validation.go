package core

// validation.go checks client row changes against a table definition
// before anything reaches the store.
//
// Validation happens at two levels:
//  1. Shape: action is known, every key field is present, columns exist
//  2. Cells: each value parses as its column's DataType and the column is editable
//
// All problems in a batch are collected so the client can show them at once.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrReadOnly is returned when updating a table without an update target.
var ErrReadOnly = errors.New("table is read-only")

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Row     int    // Index of the change in its batch
	Field   string // Field/column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("change %d: %s: %s", e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("change %d: %s", e.Row, e.Message)
}

// ValidationErrors collects every problem found in an update batch.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// ValidateCell validates a single cell value against its column.
// Returns nil if valid, or an error describing the problem.
func ValidateCell(value string, col Column) error {
	if value == "" {
		return nil // Empty values are allowed (will be NULL)
	}

	switch col.DataType {
	case DataNumber, DataCurrency:
		if _, ok := ParseNumber(value); !ok {
			return fmt.Errorf("invalid number format")
		}
	case DataDate:
		if _, ok := ParseDate(value); !ok {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD or similar)")
		}
	case DataBoolean:
		if _, ok := ParseBool(value); !ok {
			return fmt.Errorf("must be yes/no, true/false, or 1/0")
		}
	}
	return nil
}

// PrepareChanges validates a batch against def and converts it into typed
// row changes. Keys are ordered as def.KeyFields and values follow column
// order. Returns ValidationErrors listing every problem.
func PrepareChanges(def *TableDefinition, changes []Change) ([]RowChange, error) {
	if def.ReadOnly() {
		return nil, ErrReadOnly
	}

	var errs ValidationErrors
	result := make([]RowChange, 0, len(changes))

	for i, ch := range changes {
		rc := RowChange{Action: ch.Action}

		switch ch.Action {
		case ActionInsert, ActionUpdate, ActionDelete:
		default:
			errs = append(errs, ValidationError{Row: i, Value: string(ch.Action), Message: "unknown action"})
			continue
		}

		if ch.Action != ActionInsert {
			if len(def.KeyFields) == 0 {
				errs = append(errs, ValidationError{Row: i, Message: "table has no key fields defined"})
				continue
			}
			for _, field := range def.KeyFields {
				v, ok := ch.Keys[field]
				if !ok || v == "" {
					errs = append(errs, ValidationError{Row: i, Field: field, Message: "missing key value"})
					continue
				}
				rc.Keys = append(rc.Keys, FieldValue{Column: field, Type: keyType(def, field), Value: v})
			}
		}

		if ch.Action != ActionDelete {
			for name := range ch.Values {
				if _, ok := def.Column(name); !ok {
					errs = append(errs, ValidationError{Row: i, Field: name, Message: "column not found"})
				}
			}
			for _, col := range def.Columns() {
				v, ok := ch.Values[col.Name]
				if !ok {
					continue
				}
				if !col.EditType.Editable() && ch.Action == ActionUpdate {
					errs = append(errs, ValidationError{Row: i, Field: col.Name, Value: v, Message: "column is not editable"})
					continue
				}
				if err := ValidateCell(v, col); err != nil {
					errs = append(errs, ValidationError{Row: i, Field: col.Name, Value: v, Message: err.Error()})
					continue
				}
				rc.Values = append(rc.Values, FieldValue{Column: col.Name, Type: col.DataType, Value: v})
			}
			if len(ch.Values) == 0 {
				errs = append(errs, ValidationError{Row: i, Message: "no values to write"})
			}
		}

		result = append(result, rc)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return result, nil
}

// keyType returns the data type of a key field, defaulting to text for
// key fields that are not display columns.
func keyType(def *TableDefinition, field string) DataType {
	if c, ok := def.Column(field); ok {
		return c.DataType
	}
	return DataText
}
