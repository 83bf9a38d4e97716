package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"

	"github.com/kernwater/wqloader/schema"
)

// BigQueryLoader upserts batches into a BigQuery table with one MERGE per
// row. Table.Database is the project and Table.Schema the dataset.
type BigQueryLoader struct {
	Table Table

	// NewClient defaults to bigquery.NewClient.
	NewClient func(ctx context.Context, project string) (*bigquery.Client, error)
}

// Load follows the same contract as UpsertLoader.Load.
func (l *BigQueryLoader) Load(ctx context.Context, batch *schema.Batch) (int, error) {
	lg := log.Ctx(ctx).With().Str("table", l.Table.String()).Logger()

	newClient := l.NewClient
	if newClient == nil {
		newClient = func(ctx context.Context, project string) (*bigquery.Client, error) {
			return bigquery.NewClient(ctx, project)
		}
	}

	bq, err := newClient(ctx, l.Table.Database)
	if err != nil {
		lg.Error().Err(err).Msg("failed to build bigquery client")
		return 0, &ConnectionError{Database: l.Table.Database, Err: err}
	}
	defer bq.Close()

	if _, err := bq.Dataset(l.Table.Schema).Table(l.Table.Name).Metadata(ctx); err != nil {
		lg.Error().Err(err).Msg("table does not exist")
		return 0, &TableMissingError{Table: l.Table, Err: err}
	}

	stmt, err := BuildMerge(l.Table, batch.Schema.Names())
	if err != nil {
		return 0, &StatementError{Row: 0, Err: err}
	}

	n := 0
	for i, row := range batch.Rows {
		params, err := mergeParameters(batch.Schema, row)
		if err != nil {
			return n, &StatementError{Row: i, Err: err}
		}

		q := bq.Query(stmt)
		q.Parameters = params

		if err := runQuery(ctx, q); err != nil {
			lg.Error().Err(err).Int("row", i).Int("written", n).Msg("failed to merge row")
			return n, &StatementError{Row: i, Err: err}
		}
		n++
	}

	lg.Info().Int("rows", n).Msg("loaded rows")

	return n, nil
}

func runQuery(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return xerrors.Errorf("failed to run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return xerrors.Errorf("failed to wait job: %w", err)
	}

	return status.Err()
}

// BuildMerge renders a MERGE statement taking one row as parameters @p0..@pN
// in column order.
func BuildMerge(t Table, columns []string) (string, error) {
	if len(t.PrimaryKey) == 0 {
		return "", xerrors.Errorf("table %s has no primary key", t)
	}

	selects := make([]string, len(columns))
	targets := make([]string, len(columns))
	sources := make([]string, len(columns))
	for i, c := range columns {
		id := bqIdent(c)
		selects[i] = fmt.Sprintf("@p%d AS %s", i, id)
		targets[i] = id
		sources[i] = "source." + id
	}

	on := make([]string, len(t.PrimaryKey))
	for i, k := range t.PrimaryKey {
		on[i] = fmt.Sprintf("target.%s = source.%s", bqIdent(k), bqIdent(k))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MERGE %s AS target\n", bqIdent(t.Database+"."+t.Schema+"."+t.Name))
	fmt.Fprintf(&b, "USING (SELECT %s) AS source\n", strings.Join(selects, ", "))
	fmt.Fprintf(&b, "ON %s\n", strings.Join(on, " AND "))

	if len(t.UpdateColumns) > 0 {
		sets := make([]string, len(t.UpdateColumns))
		for i, c := range t.UpdateColumns {
			sets[i] = fmt.Sprintf("%s = source.%s", bqIdent(c), bqIdent(c))
		}
		fmt.Fprintf(&b, "WHEN MATCHED THEN UPDATE SET %s\n", strings.Join(sets, ", "))
	}

	fmt.Fprintf(&b, "WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)", strings.Join(targets, ", "), strings.Join(sources, ", "))

	return b.String(), nil
}

func bqIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}

func mergeParameters(s schema.Schema, row schema.Row) ([]bigquery.QueryParameter, error) {
	if len(s) != len(row) {
		return nil, xerrors.Errorf("row has %d values for %d columns", len(row), len(s))
	}

	params := make([]bigquery.QueryParameter, len(row))
	for i, v := range row {
		params[i] = bigquery.QueryParameter{Name: fmt.Sprintf("p%d", i), Value: bqValue(s[i].Type, v)}
	}
	return params, nil
}

func bqValue(t schema.Type, v any) any {
	if v != nil {
		if tm, ok := v.(time.Time); ok {
			return tm.UTC()
		}
		return v
	}

	switch t {
	case schema.Real:
		return bigquery.NullFloat64{}
	case schema.Timestamp:
		return bigquery.NullTimestamp{}
	default:
		return bigquery.NullString{}
	}
}
