package transform

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"

	"github.com/kernwater/wqloader/schema"
)

// Transformer maps, filters, routes, normalizes and coerces one batch.
// Any failing record abandons the whole batch.
type Transformer struct {
	Source     schema.Schema
	Target     schema.Schema
	Mapper     *schema.Mapper
	Filter     *Filter
	Router     *Router
	Normalize  func(string) string
	WellColumn string

	// Location interprets timestamps without a zone. Defaults to UTC.
	Location *time.Location
	Now      func() time.Time
}

// Decode reads parsed rows, header first, into records.
func (t *Transformer) Decode(rows [][]string) ([]schema.Record, error) {
	return schema.Decode(rows, t.Source)
}

// Excluded reports whether decoded records belong entirely to excluded sites.
func (t *Transformer) Excluded(records []schema.Record) bool {
	if t.Router == nil {
		return false
	}

	rt := *t.Router
	rt.Column = t.sourceColumn(rt.Column)

	return rt.Excluded(records)
}

func (t *Transformer) sourceColumn(target string) string {
	if t.Mapper != nil {
		for _, m := range t.Mapper.Mappings {
			if m.Target == target {
				return m.Source
			}
		}
	}
	return target
}

// Transform produces the cleaned batch for records.
func (t *Transformer) Transform(ctx context.Context, records []schema.Record) (*schema.Batch, error) {
	l := log.Ctx(ctx)

	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	addedAt := now()

	mapped := make([]schema.Record, 0, len(records))
	for i, r := range records {
		m, err := t.Mapper.Map(r, addedAt)
		if err != nil {
			l.Error().Err(err).Int("row", i).Msg("failed to map record")
			return nil, xerrors.Errorf("failed to map row %d: %w", i, err)
		}
		mapped = append(mapped, m)
	}

	kept := mapped
	if t.Filter != nil {
		kept = t.Filter.Apply(kept)
	}
	if t.Router != nil {
		kept = t.Router.Route(kept)
	}
	l.Debug().Int("records", len(records)).Int("kept", len(kept)).Msg("filtered records")

	loc := t.Location
	if loc == nil {
		loc = time.UTC
	}
	added := -1
	if i := t.Target.Index(schema.DateAddedColumn); i >= 0 && t.Target[i].Type == schema.Timestamp {
		added = i
	}

	batch := &schema.Batch{Schema: t.Target, Rows: make([]schema.Row, 0, len(kept))}
	for i, r := range kept {
		if t.Normalize != nil {
			r[t.WellColumn] = t.Normalize(r[t.WellColumn])
		}

		row, err := Coerce(r, t.Target, t.Location)
		if err != nil {
			l.Error().Err(err).Int("row", i).Msg("failed to coerce record")
			return nil, xerrors.Errorf("failed to coerce row %d: %w", i, err)
		}
		// replaces the mapped text, which has whole seconds only
		if added >= 0 {
			row[added] = addedAt.In(loc)
		}
		batch.Rows = append(batch.Rows, row)
	}

	return batch, nil
}
