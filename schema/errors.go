package schema

import "fmt"

// MappingError reports a column the configuration expects but the record lacks.
type MappingError struct {
	Column string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}

// FormatError reports a value that does not match its declared type.
type FormatError struct {
	Column string
	Value  string
	Type   Type
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("column %q: cannot read %q as %s: %v", e.Column, e.Value, e.Type, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
