package transform

import (
	"strings"

	"github.com/kernwater/wqloader/schema"
)

// Path selects which rows a destination receives.
type Path string

const (
	// General receives rows that do not belong to the configured site.
	General Path = "general"
	// Site receives only rows of the configured site.
	Site Path = "site"
)

// Router partitions records by a case-sensitive substring match of the
// sample name against a site name.
type Router struct {
	Column string
	Site   string
	Path   Path

	// ExcludeSites name sites whose files are discarded without loading.
	ExcludeSites []string
}

// Match reports whether r belongs to the configured site.
func (rt *Router) Match(r schema.Record) bool {
	return rt.Site != "" && strings.Contains(r[rt.Column], rt.Site)
}

// Route returns the records destined for rt.Path.
func (rt *Router) Route(records []schema.Record) []schema.Record {
	if rt.Site == "" {
		return records
	}

	out := make([]schema.Record, 0, len(records))
	for _, r := range records {
		if rt.Match(r) == (rt.Path == Site) {
			out = append(out, r)
		}
	}
	return out
}

// Excluded reports whether every record belongs to one of the excluded sites.
// An empty batch is never excluded.
func (rt *Router) Excluded(records []schema.Record) bool {
	if len(rt.ExcludeSites) == 0 || len(records) == 0 {
		return false
	}

	for _, r := range records {
		if !containsAny(r[rt.Column], rt.ExcludeSites) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
