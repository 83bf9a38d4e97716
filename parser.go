package wqloader

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/extrame/xls"
	"gitlab.com/osaki-lab/iowrapper"
	"golang.org/x/xerrors"
)

// Parser parses files from storage.
type Parser func(context.Context, io.Reader) ([][]string, error)

// CSVParser provides a parser to parse CSV files. Rows may have differing
// lengths.
func CSVParser() Parser {
	return func(_ context.Context, r io.Reader) ([][]string, error) {
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		return cr.ReadAll()
	}
}

// XLSParser provides a parser for legacy Excel workbooks. Only the given
// sheet is read.
func XLSParser(sheet int) Parser {
	return func(_ context.Context, r io.Reader) ([][]string, error) {
		wb, err := xls.OpenReader(iowrapper.NewSeeker(r), "utf-8")
		if err != nil {
			return nil, xerrors.Errorf("failed to open xls file: %w", err)
		}

		s := wb.GetSheet(sheet)
		if s == nil {
			return nil, xerrors.Errorf("sheet %d not found", sheet)
		}

		records := [][]string{}
		for i := 0; i <= int(s.MaxRow); i++ {
			row, ok := sheetRow(s, i)
			if !ok {
				continue
			}

			record := []string{}
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				record = append(record, row.Col(c))
			}
			records = append(records, record)
		}

		return records, nil
	}
}

// sheetRow guards against the panic xls raises for rows it did not store.
func sheetRow(s *xls.WorkSheet, i int) (r *xls.Row, ok bool) {
	defer func() {
		if recover() != nil {
			r, ok = nil, false
		}
	}()

	return s.Row(i), true
}
