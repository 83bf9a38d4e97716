package warehouse

import "fmt"

// ConnectionError means the warehouse could not be reached or rejected the
// credentials.
type ConnectionError struct {
	Database string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Database, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TableMissingError means the destination table did not answer the probe.
type TableMissingError struct {
	Table Table
	Err   error
}

func (e *TableMissingError) Error() string {
	return fmt.Sprintf("table %s does not exist: %v", e.Table, e.Err)
}

func (e *TableMissingError) Unwrap() error { return e.Err }

// StatementError means the upsert of one row failed. Rows before Row were
// written; the rest of the batch was not attempted.
type StatementError struct {
	Row int
	Err error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("failed to upsert row %d: %v", e.Row, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }
