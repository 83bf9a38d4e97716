// Package schema describes the shape of laboratory records before and after
// they are mapped onto the warehouse table.
package schema

import "golang.org/x/xerrors"

// Type is a declared column type.
type Type string

const (
	Text      Type = "text"
	Real      Type = "real"
	Timestamp Type = "timestamp"
)

// TimestampLayout is the layout laboratory exports use for date-times.
const TimestampLayout = "1/2/2006 3:04:05 PM"

// Valid reports whether t is a known column type.
func (t Type) Valid() bool {
	switch t {
	case Text, Real, Timestamp:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler so configuration can
// reject unknown types early.
func (t *Type) UnmarshalText(b []byte) error {
	v := Type(b)
	if v == "" {
		v = Text
	}
	if !v.Valid() {
		return xerrors.Errorf("unknown column type %q", string(b))
	}
	*t = v
	return nil
}

// Column is a named, typed column.
type Column struct {
	Name string `yaml:"name"`
	Type Type   `yaml:"type"`
}

// Schema is an ordered list of columns.
type Schema []Column

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column or -1.
func (s Schema) Index(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Record is one row keyed by column name. An empty cell is null.
type Record map[string]string

// Row holds typed values aligned with a Schema: string, float64, time.Time or
// nil for null.
type Row []any

// Batch is the cleaned content of one source file.
type Batch struct {
	Schema Schema
	Rows   []Row
}

// Len returns the number of rows.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// Value returns the value of the named column in row i.
func (b *Batch) Value(i int, column string) (any, bool) {
	j := b.Schema.Index(column)
	if j < 0 || i < 0 || i >= len(b.Rows) {
		return nil, false
	}
	return b.Rows[i][j], true
}
