// Package snapshot keeps a columnar copy of every cleaned batch so it can be
// audited or loaded again without the source file.
package snapshot

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
	"golang.org/x/xerrors"

	"github.com/kernwater/wqloader/schema"
)

const (
	rootName    = "parquet_go_root"
	parallelism = 4
)

// Mirror copies a written snapshot to remote storage.
type Mirror interface {
	Upload(ctx context.Context, path string) error
}

// Writer writes batches to <Dir>/<Prefix>_<stem>_<YYYY-MM-DD>.parquet, where
// stem is the base name of the source file without its extension.
type Writer struct {
	Dir     string
	Prefix  string
	Mirrors []Mirror
	Now     func() time.Time
}

// Path returns the snapshot path for the source file processed at t.
func (w *Writer) Path(source string, t time.Time) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(w.Dir, fmt.Sprintf("%s_%s_%s.parquet", w.Prefix, stem, t.Format("2006-01-02")))
}

// Write stores the batch cleaned from source and returns its path.
func (w *Writer) Write(ctx context.Context, source string, batch *schema.Batch) (string, error) {
	l := log.Ctx(ctx)

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	path := w.Path(source, now())

	if err := WriteFile(path, batch); err != nil {
		l.Error().Err(err).Str("path", path).Msg("failed to write snapshot")
		return "", err
	}
	l.Debug().Str("path", path).Int("rows", batch.Len()).Msg("wrote snapshot")

	for _, m := range w.Mirrors {
		if err := m.Upload(ctx, path); err != nil {
			l.Error().Err(err).Str("path", path).Msg("failed to mirror snapshot")
			return path, xerrors.Errorf("failed to mirror %s: %w", path, err)
		}
	}

	return path, nil
}

// WriteFile writes batch as a parquet file at path.
func WriteFile(path string, batch *schema.Batch) (err error) {
	md, err := metadata(batch.Schema)
	if err != nil {
		return err
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return xerrors.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil && err == nil {
			err = xerrors.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	pw, err := writer.NewCSVWriter(md, fw, parallelism)
	if err != nil {
		return xerrors.Errorf("failed to init parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, row := range batch.Rows {
		cells, err := encodeRow(batch.Schema, row)
		if err != nil {
			return xerrors.Errorf("row %d: %w", i, err)
		}
		if err := pw.WriteString(cells); err != nil {
			return xerrors.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return xerrors.Errorf("failed to finish parquet file: %w", err)
	}

	return nil
}

// Read loads a snapshot written with the columns of s. Timestamps come back
// in loc, the zone the batch was cleaned in, so that they format to the same
// wall clock as before. A nil loc means UTC.
func Read(path string, s schema.Schema, loc *time.Location) (*schema.Batch, error) {
	if loc == nil {
		loc = time.UTC
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetColumnReader(fr, parallelism)
	if err != nil {
		return nil, xerrors.Errorf("failed to read parquet footer: %w", err)
	}
	defer pr.ReadStop()

	num := pr.GetNumRows()
	batch := &schema.Batch{Schema: s, Rows: make([]schema.Row, num)}
	for i := range batch.Rows {
		batch.Rows[i] = make(schema.Row, len(s))
	}

	for j, c := range s {
		values, _, _, err := pr.ReadColumnByPath(common.ReformPathStr(rootName+"."+c.Name), num)
		if err != nil {
			return nil, xerrors.Errorf("failed to read column %q: %w", c.Name, err)
		}
		if int64(len(values)) != num {
			return nil, xerrors.Errorf("column %q has %d values, want %d", c.Name, len(values), num)
		}
		for i, v := range values {
			batch.Rows[i][j], err = decodeValue(c.Type, v, loc)
			if err != nil {
				return nil, xerrors.Errorf("column %q row %d: %w", c.Name, i, err)
			}
		}
	}

	return batch, nil
}

func metadata(s schema.Schema) ([]string, error) {
	md := make([]string, len(s))
	for i, c := range s {
		switch c.Type {
		case schema.Real:
			md[i] = fmt.Sprintf("name=%s, type=DOUBLE, repetitiontype=OPTIONAL", c.Name)
		case schema.Timestamp:
			md[i] = fmt.Sprintf("name=%s, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL", c.Name)
		case schema.Text, "":
			md[i] = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL", c.Name)
		default:
			return nil, xerrors.Errorf("column %q: unsupported type %q", c.Name, c.Type)
		}
	}
	return md, nil
}

func encodeRow(s schema.Schema, row schema.Row) ([]*string, error) {
	cells := make([]*string, len(s))
	for i, v := range row {
		var str string
		switch x := v.(type) {
		case nil:
			continue
		case string:
			str = x
		case float64:
			str = strconv.FormatFloat(x, 'g', -1, 64)
		case time.Time:
			str = strconv.FormatInt(x.UnixMilli(), 10)
		default:
			return nil, xerrors.Errorf("column %q: unsupported value type %T", s[i].Name, v)
		}
		cells[i] = &str
	}
	return cells, nil
}

func decodeValue(t schema.Type, v any, loc *time.Location) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return x, nil
	case int64:
		if t == schema.Timestamp {
			return time.UnixMilli(x).In(loc), nil
		}
		return float64(x), nil
	default:
		return nil, xerrors.Errorf("unexpected parquet value %T", v)
	}
}
