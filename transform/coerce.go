package transform

import (
	"strconv"
	"strings"
	"time"

	"github.com/kernwater/wqloader/schema"
)

// Coerce converts r into a row typed by s. Empty cells become nil.
func Coerce(r schema.Record, s schema.Schema, loc *time.Location) (schema.Row, error) {
	if loc == nil {
		loc = time.UTC
	}

	row := make(schema.Row, len(s))
	for i, c := range s {
		v := r[c.Name]
		if strings.TrimSpace(v) == "" {
			continue
		}

		switch c.Type {
		case schema.Timestamp:
			t, err := time.ParseInLocation(schema.TimestampLayout, strings.TrimSpace(v), loc)
			if err != nil {
				return nil, &schema.FormatError{Column: c.Name, Value: v, Type: c.Type, Err: err}
			}
			row[i] = t
		case schema.Real:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, &schema.FormatError{Column: c.Name, Value: v, Type: c.Type, Err: err}
			}
			row[i] = f
		default:
			row[i] = v
		}
	}

	return row, nil
}
