package adjudication

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRecord is returned when an operation needs a current record but the
// cursor sits past the end of the table or nothing is loaded.
var ErrNoRecord = errors.New("adjudication: no current record")

// ValidationError reports required columns absent from an uploaded table.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("adjudication: missing required columns: %s", strings.Join(e.Missing, ", "))
}

// MalformedInputError reports an upload that could not be parsed as a table.
type MalformedInputError struct {
	Name string
	Err  error
}

func (e *MalformedInputError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("adjudication: malformed input: %v", e.Err)
	}
	return fmt.Sprintf("adjudication: malformed input %s: %v", e.Name, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

func malformed(name string, format string, args ...any) error {
	return &MalformedInputError{Name: name, Err: fmt.Errorf(format, args...)}
}
