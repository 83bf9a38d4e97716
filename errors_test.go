package wqloader

import (
	"errors"
	"testing"

	"golang.org/x/xerrors"

	"github.com/kernwater/wqloader/schema"
	"github.com/kernwater/wqloader/warehouse"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{err: nil, want: ""},
		{err: cause, want: KindUnknown},
		{err: &warehouse.ConnectionError{Err: cause}, want: KindConnection},
		{err: &warehouse.TableMissingError{Err: cause}, want: KindTableMissing},
		{err: &warehouse.StatementError{Row: 3, Err: cause}, want: KindStatement},
		{err: &schema.MappingError{Column: "Sample.SampleName"}, want: KindMapping},
		{err: &schema.FormatError{Column: "result", Value: "n/a", Type: schema.Real, Err: cause}, want: KindFormat},
		{
			err:  xerrors.Errorf("failed to load: %w", &warehouse.StatementError{Row: 0, Err: cause}),
			want: KindStatement,
		},
		{
			err:  xerrors.Errorf("failed to transform: %w", xerrors.Errorf("failed to coerce row 2: %w", &schema.FormatError{})),
			want: KindFormat,
		},
	}

	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Errorf("KindOf(%v) should be %q, but %q", c.err, c.want, got)
		}
	}
}
