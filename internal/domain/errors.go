package domain

import (
	"errors"
	"fmt"
)

// ErrDataIntegrity matches every *IntegrityError via errors.Is.
var ErrDataIntegrity = errors.New("data integrity error")

// IntegrityError reports malformed or inconsistent analytics data for one run.
type IntegrityError struct {
	ExeID string
	Field string
	Row   int // -1 when the failure is not tied to a table row
	Err   error
}

// NewIntegrityError creates an IntegrityError. Pass row -1 when not applicable.
func NewIntegrityError(exeID, field string, row int, err error) *IntegrityError {
	return &IntegrityError{ExeID: exeID, Field: field, Row: row, Err: err}
}

func (e *IntegrityError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("data integrity: run %s: row %d: %s: %v", e.ExeID, e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("data integrity: run %s: %s: %v", e.ExeID, e.Field, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// Is reports ErrDataIntegrity as a match.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}
