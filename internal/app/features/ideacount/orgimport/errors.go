package orgimport

import "fmt"

// MissingColumnError means the header lacks a required column.
// Nothing was applied.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

// UnknownCodeError means a row named an organization code that does not
// exist. Applied is how many rows were committed before the failure; it is
// always 0 in atomic mode.
type UnknownCodeError struct {
	Code    string
	Line    int
	Applied int
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("line %d: organization with code %q does not exist (%d rows applied)", e.Line, e.Code, e.Applied)
}

// InvalidValueError means a cell could not be read as a non-negative count,
// or a required cell was empty. Nothing was applied.
type InvalidValueError struct {
	Line   int
	Column string
	Value  string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("line %d: invalid value %q for %s", e.Line, e.Value, e.Column)
}

// PersistenceError wraps a store failure. Applied rows stay applied in
// sequential mode.
type PersistenceError struct {
	Applied int
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("import persistence failed after %d rows: %v", e.Applied, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
