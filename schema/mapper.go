package schema

import (
	"regexp"
	"time"
)

// DateAddedColumn is stamped with the processing time of the batch.
const DateAddedColumn = "date_added"

// Mapping renames a source column.
type Mapping struct {
	Source string
	Target string
}

// Mapper renames, stamps, drops and reorders columns.
type Mapper struct {
	Mappings []Mapping
	Drop     []string
	Order    []string

	// SampleDate names the (renamed) column whose qualifier text is removed
	// by Strip. Either may be empty.
	SampleDate string
	Strip      *regexp.Regexp
}

// Map returns a record with exactly the columns of m.Order.
func (m *Mapper) Map(r Record, addedAt time.Time) (Record, error) {
	out := make(Record, len(r)+1)
	renamed := make(map[string]bool, len(m.Mappings))

	for _, mp := range m.Mappings {
		v, ok := r[mp.Source]
		if !ok {
			return nil, &MappingError{Column: mp.Source}
		}
		out[mp.Target] = v
		renamed[mp.Source] = true
	}

	for k, v := range r {
		if renamed[k] {
			continue
		}
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}

	out[DateAddedColumn] = addedAt.Format(TimestampLayout)

	for _, d := range m.Drop {
		delete(out, d)
	}

	mapped := make(Record, len(m.Order))
	for _, name := range m.Order {
		v, ok := out[name]
		if !ok {
			return nil, &MappingError{Column: name}
		}
		mapped[name] = v
	}

	if m.Strip != nil && m.SampleDate != "" {
		if v, ok := mapped[m.SampleDate]; ok {
			mapped[m.SampleDate] = stripFirst(m.Strip, v)
		}
	}

	return mapped, nil
}

func stripFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}
