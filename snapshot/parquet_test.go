package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/kernwater/wqloader/schema"
)

var labSchema = schema.Schema{
	{Name: "state_well_number", Type: schema.Text},
	{Name: "sample_date", Type: schema.Timestamp},
	{Name: "result", Type: schema.Text},
	{Name: "mdl", Type: schema.Real},
}

func labBatch() *schema.Batch {
	return &schema.Batch{
		Schema: labSchema,
		Rows: []schema.Row{
			{"30S/25E-02D01", time.Date(2024, 9, 23, 10, 15, 0, 0, time.UTC), "4.2", 0.4},
			{"30S/25E-20D01", time.Date(2024, 9, 23, 11, 0, 0, 0, time.UTC), "ND", nil},
		},
	}
}

func TestWriter_Path(t *testing.T) {
	t.Parallel()

	w := &Writer{Dir: "data_dump", Prefix: "bsk_cleaned_data"}
	got := w.Path("gs://lab-inbox/exports/bsk_export.csv", time.Date(2024, 9, 24, 23, 59, 0, 0, time.UTC))

	if want := filepath.Join("data_dump", "bsk_cleaned_data_bsk_export_2024-09-24.parquet"); got != want {
		t.Errorf("path should be %q, but %q", want, got)
	}
}

func TestWriter_SameDay(t *testing.T) {
	t.Parallel()

	w := &Writer{
		Dir:    t.TempDir(),
		Prefix: "cleaned_data",
		Now:    func() time.Time { return time.Date(2024, 9, 24, 14, 48, 0, 0, time.UTC) },
	}

	first, err := w.Write(context.Background(), "inbox/bsk_export_am.csv", labBatch())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	second := labBatch()
	second.Rows = second.Rows[:1]
	next, err := w.Write(context.Background(), "inbox/bsk_export_pm.csv", second)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if first == next {
		t.Fatalf("snapshots of two files should not share %q", first)
	}

	for path, rows := range map[string]int{first: 2, next: 1} {
		b, err := Read(path, labSchema, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if b.Len() != rows {
			t.Errorf("Size of %s should be %d, but %d", filepath.Base(path), rows, b.Len())
		}
	}
}

func TestWriter_WriteAndRead(t *testing.T) {
	t.Parallel()

	m := &recordingMirror{}
	w := &Writer{
		Dir:     t.TempDir(),
		Prefix:  "bsk_cleaned_data",
		Mirrors: []Mirror{m},
		Now:     func() time.Time { return time.Date(2024, 9, 24, 14, 48, 0, 0, time.UTC) },
	}

	path, err := w.Write(context.Background(), "bsk_export.csv", labBatch())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot should exist: %v", err)
	}
	if len(m.paths) != 1 || m.paths[0] != path {
		t.Errorf("mirror should receive %q, but %v", path, m.paths)
	}

	got, err := Read(path, labSchema, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := labBatch()
	if got.Len() != want.Len() {
		t.Fatalf("Size of replayed batch should be %d, but %d", want.Len(), got.Len())
	}

	for i := range want.Rows {
		for j := range want.Rows[i] {
			w, g := want.Rows[i][j], got.Rows[i][j]
			if wt, ok := w.(time.Time); ok {
				if gt, ok := g.(time.Time); !ok || !gt.Equal(wt) {
					t.Errorf("rows[%d][%d] should be %v, but %v", i, j, w, g)
				}
				continue
			}
			if w != g {
				t.Errorf("rows[%d][%d] should be %v, but %v", i, j, w, g)
			}
		}
	}
}

func TestRead_Location(t *testing.T) {
	t.Parallel()

	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	sampled := time.Date(2024, 9, 23, 10, 15, 0, 0, la)
	batch := &schema.Batch{
		Schema: labSchema,
		Rows:   []schema.Row{{"30S/25E-02D01", sampled, "4.2", 0.4}},
	}

	path := filepath.Join(t.TempDir(), "la.parquet")
	if err := WriteFile(path, batch); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := Read(path, labSchema, la)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v, _ := got.Value(0, "sample_date")
	gt, ok := v.(time.Time)
	if !ok {
		t.Fatalf("sample_date should be time.Time, but %T", v)
	}
	if !gt.Equal(sampled) {
		t.Errorf("sample_date should be %v, but %v", sampled, gt)
	}

	const layout = "2006-01-02 15:04:05"
	if want, g := sampled.Format(layout), gt.Format(layout); g != want {
		t.Errorf("wall clock should be %q, but %q", want, g)
	}
}

func TestMetadata_UnknownType(t *testing.T) {
	t.Parallel()

	if _, err := metadata(schema.Schema{{Name: "x", Type: "blob"}}); err == nil {
		t.Error("expected error for unknown type")
	}
}

type recordingMirror struct {
	paths []string
}

func (m *recordingMirror) Upload(_ context.Context, p string) error {
	m.paths = append(m.paths, p)
	return nil
}
