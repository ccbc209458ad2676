package props

import (
	"errors"
	"fmt"
)

// Structural error causes.
var (
	ErrMissingKey      = errors.New("missing required key")
	ErrInvalidCount    = errors.New("invalid filter row count")
	ErrInvalidDataType = errors.New("invalid data type")
	ErrInvalidEditType = errors.New("invalid edit type")
)

// StructuralError is a decode failure that leaves no usable definition.
// Key names the offending flat key.
type StructuralError struct {
	Key   string
	Value string
	Err   error
}

func (e *StructuralError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %v (%q)", e.Key, e.Err, e.Value)
	}
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// Defect is a recoverable problem found while decoding. The definition is
// still produced; the affected entry was defaulted or dropped.
type Defect struct {
	Key    string // Flat key that carried the problem
	Column string // Column or filter name, when known
	Value  string // Offending value, empty when the key was absent
	Reason string
}

func (d Defect) String() string {
	return fmt.Sprintf("%s: %s", d.Key, d.Reason)
}
