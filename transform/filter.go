// Package transform turns decoded laboratory records into a typed batch
// ready for the warehouse.
package transform

import (
	"strings"

	"github.com/kernwater/wqloader/schema"
)

// DefaultExcludedMarkers mark quality-control samples that are not production
// results: field blanks, trip blanks and trip controls.
var DefaultExcludedMarkers = []string{"Field Blank", "TB", "TCP"}

// Filter drops non-production samples and rows without a result.
type Filter struct {
	WellColumn   string
	ResultColumn string
	Markers      []string
}

// Keep reports whether r survives the filter. Blank cells count as missing,
// the same as Coerce treats them.
func (f *Filter) Keep(r schema.Record) bool {
	well := r[f.WellColumn]
	if strings.TrimSpace(well) == "" {
		return false
	}

	for _, m := range f.Markers {
		if strings.Contains(well, m) {
			return false
		}
	}

	return strings.TrimSpace(r[f.ResultColumn]) != ""
}

// Apply returns the records that survive the filter, in order.
func (f *Filter) Apply(records []schema.Record) []schema.Record {
	kept := make([]schema.Record, 0, len(records))
	for _, r := range records {
		if f.Keep(r) {
			kept = append(kept, r)
		}
	}
	return kept
}
