package warehouse

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/kernwater/wqloader/schema"
)

// UpsertLoader upserts batches row by row through database/sql.
type UpsertLoader struct {
	Table   Table
	Connect Connector
}

// NewPostgresLoader returns a loader for table on the server described by c.
func NewPostgresLoader(table Table, c Credentials) *UpsertLoader {
	return &UpsertLoader{Table: table, Connect: PostgresConnector(c)}
}

// Load opens a connection, checks the table, upserts every row and closes
// the connection on every path. Loading the same batch twice leaves the
// table as loading it once.
func (l *UpsertLoader) Load(ctx context.Context, batch *schema.Batch) (int, error) {
	lg := log.Ctx(ctx).With().Str("table", l.Table.String()).Logger()

	db, err := l.Connect(ctx, l.Table.Database)
	if err != nil {
		lg.Error().Err(err).Msg("failed to open database")
		return 0, &ConnectionError{Database: l.Table.Database, Err: err}
	}
	defer func() {
		if err := db.Close(); err != nil {
			lg.Warn().Err(err).Msg("failed to close database")
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		lg.Error().Err(err).Msg("failed to connect")
		return 0, &ConnectionError{Database: l.Table.Database, Err: err}
	}

	rows, err := db.QueryContext(ctx, ProbeQuery(l.Table))
	if err == nil {
		err = rows.Close()
	}
	if err != nil {
		lg.Error().Err(err).Msg("table does not exist")
		return 0, &TableMissingError{Table: l.Table, Err: err}
	}

	columns := batch.Schema.Names()
	n := 0
	for i, row := range batch.Rows {
		stmt, err := BuildUpsert(l.Table, columns, row)
		if err != nil {
			lg.Error().Err(err).Int("row", i).Msg("failed to build statement")
			return n, &StatementError{Row: i, Err: err}
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			lg.Error().Err(err).Int("row", i).Int("written", n).Msg("failed to upsert row")
			return n, &StatementError{Row: i, Err: err}
		}
		n++
	}

	lg.Info().Str("database", l.Table.Database).Str("name", l.Table.Name).Int("rows", n).Msg("loaded rows")

	return n, nil
}
