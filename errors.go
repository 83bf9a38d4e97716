package wqloader

import (
	"errors"

	"github.com/kernwater/wqloader/schema"
	"github.com/kernwater/wqloader/warehouse"
)

// ErrorKind classifies a batch failure.
type ErrorKind string

const (
	KindConnection   ErrorKind = "connection"
	KindTableMissing ErrorKind = "table_missing"
	KindMapping      ErrorKind = "mapping"
	KindFormat       ErrorKind = "format"
	KindStatement    ErrorKind = "statement"
	KindUnknown      ErrorKind = "unknown"
)

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) ErrorKind {
	var (
		ce *warehouse.ConnectionError
		te *warehouse.TableMissingError
		se *warehouse.StatementError
		me *schema.MappingError
		fe *schema.FormatError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &ce):
		return KindConnection
	case errors.As(err, &te):
		return KindTableMissing
	case errors.As(err, &se):
		return KindStatement
	case errors.As(err, &me):
		return KindMapping
	case errors.As(err, &fe):
		return KindFormat
	}
	return KindUnknown
}
