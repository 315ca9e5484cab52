/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Validation errors - Bad input (closing day, month, quantities)
  2. Date errors - Unparseable date strings at the boundary
  3. Lookup errors - Referenced client or entry missing on mutation
  4. Store errors - Persistence failures

USAGE:
  if errors.Is(err, generic.ErrValidation) {
      // 400
  }

  var dateErr *generic.InvalidDateError
  if errors.As(err, &dateErr) {
      log.Printf("bad date %q", dateErr.Input)
  }

SEE ALSO:
  - billing/period.go: Raises ValidationError for closing days
  - factory/document.go: Raises InvalidDateError while decoding documents
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidDate is the root of every *InvalidDateError.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrClientNotFound is returned when a mutation references a missing client.
	ErrClientNotFound = errors.New("client not found")

	// ErrEntryNotFound is returned when a mutation references a missing work entry.
	ErrEntryNotFound = errors.New("work entry not found")

	// ErrDuplicateID is returned when adding a record whose id already exists.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrSnapshotNotFound is returned by stores that distinguish "never saved".
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a single invalid field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// InvalidDateError reports a date string that could not be parsed.
type InvalidDateError struct {
	Input string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", e.Input)
}

func (e *InvalidDateError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidDate}
	}
	return []error{ErrInvalidDate, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrDuplicateID)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrSnapshotNotFound)
}
