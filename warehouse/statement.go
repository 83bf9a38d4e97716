package warehouse

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"golang.org/x/xerrors"

	"github.com/kernwater/wqloader/schema"
)

const literalTimeLayout = "2006-01-02 15:04:05"

// BuildUpsert renders an INSERT ... ON CONFLICT statement for one row.
// Identifiers are quoted as identifiers and values as literals.
func BuildUpsert(t Table, columns []string, row schema.Row) (string, error) {
	if len(columns) != len(row) {
		return "", xerrors.Errorf("row has %d values for %d columns", len(row), len(columns))
	}
	if len(t.PrimaryKey) == 0 {
		return "", xerrors.Errorf("table %s has no primary key", t)
	}

	values := make([]string, len(row))
	for i, v := range row {
		lit, err := literal(v)
		if err != nil {
			return "", xerrors.Errorf("column %q: %w", columns[i], err)
		}
		values[i] = lit
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(qualifiedName(t))
	b.WriteString(" (")
	b.WriteString(identList(columns))
	b.WriteString(") VALUES (")
	b.WriteString(strings.Join(values, ", "))
	b.WriteString(") ON CONFLICT (")
	b.WriteString(identList(t.PrimaryKey))
	b.WriteString(")")

	if len(t.UpdateColumns) == 0 {
		b.WriteString(" DO NOTHING")
		return b.String(), nil
	}

	b.WriteString(" DO UPDATE SET ")
	for i, c := range t.UpdateColumns {
		if i > 0 {
			b.WriteString(", ")
		}
		id := ident(c)
		b.WriteString(id)
		b.WriteString(" = EXCLUDED.")
		b.WriteString(id)
	}

	return b.String(), nil
}

// ProbeQuery returns the bounded query used to check that t exists.
func ProbeQuery(t Table) string {
	return "SELECT * FROM " + qualifiedName(t) + " LIMIT 1"
}

func qualifiedName(t Table) string {
	if t.Schema == "" {
		return pgx.Identifier{t.Name}.Sanitize()
	}
	return pgx.Identifier{t.Schema, t.Name}.Sanitize()
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func identList(names []string) string {
	ids := make([]string, len(names))
	for i, n := range names {
		ids[i] = ident(n)
	}
	return strings.Join(ids, ", ")
}

// literal renders v for a statement. A time.Time is written as the wall clock
// of its own location, since lab tables use timestamp without time zone.
func literal(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return pq.QuoteLiteral(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return pq.QuoteLiteral(strconv.FormatFloat(x, 'g', -1, 64)), nil
		}
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int:
		return strconv.Itoa(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case time.Time:
		return pq.QuoteLiteral(x.Format(literalTimeLayout)), nil
	default:
		return "", xerrors.Errorf("unsupported value type %T", v)
	}
}
