package outbreak

import (
	"errors"
	"fmt"
)

// ErrNoAffectedTotals is returned when the affected totals export has no data row.
var ErrNoAffectedTotals = errors.New("missing affected totals data")

// MissingFieldError reports a required field that is absent or blank.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// InvalidNumberError reports a field that could not be coerced to a number
// or whose value is outside the allowed range.
type InvalidNumberError struct {
	Field  string
	Value  string
	Reason string // optional detail, e.g. "must be non-negative"
}

func (e *InvalidNumberError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid number for %q: %q (%s)", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid number for %q: %q", e.Field, e.Value)
}

// InvalidDateFormatError reports detection text that contains no M/D/YYYY token.
type InvalidDateFormatError struct {
	Text string
}

func (e *InvalidDateFormatError) Error() string {
	return "invalid date format: " + e.Text
}

// InvalidDateValueError reports an M/D/YYYY token that is not a real calendar date.
type InvalidDateValueError struct {
	Text string
}

func (e *InvalidDateValueError) Error() string {
	return "invalid date value: " + e.Text
}

// RowError ties a transformation failure to the 0-based index of the row
// that caused it.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("data transformation failed at row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
