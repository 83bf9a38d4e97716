package schema

import (
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// Decode turns parsed rows, header first, into records holding only the
// declared source columns. Declared real columns must hold a number or nothing.
func Decode(rows [][]string, declared Schema) ([]Record, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}

	for _, c := range declared {
		if _, ok := pos[c.Name]; !ok {
			return nil, &MappingError{Column: c.Name}
		}
	}

	records := make([]Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		r := make(Record, len(declared))
		for _, c := range declared {
			v := ""
			if i := pos[c.Name]; i < len(row) {
				v = row[i]
			}

			if c.Type == Real && strings.TrimSpace(v) != "" {
				if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
					return nil, xerrors.Errorf("line %d: %w", n+2, &FormatError{Column: c.Name, Value: v, Type: Real, Err: err})
				}
			}

			r[c.Name] = v
		}
		records = append(records, r)
	}

	return records, nil
}
