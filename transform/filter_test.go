package transform

import (
	"testing"

	"github.com/kernwater/wqloader/schema"
)

func newTestFilter() *Filter {
	return &Filter{WellColumn: "state_well_number", ResultColumn: "result", Markers: DefaultExcludedMarkers}
}

func TestFilter_Keep(t *testing.T) {
	t.Parallel()

	cases := []struct {
		well   string
		result string
		keep   bool
	}{
		{well: "30S/25E-02D01", result: "4.2", keep: true},
		{well: "30S/25E-02D01", result: "ND", keep: true},
		{well: "30S/25E-02D01", result: "", keep: false},
		{well: "Field Blank", result: "0.1", keep: false},
		{well: "Field Blank 2", result: "0.1", keep: false},
		{well: "field blank", result: "0.1", keep: true},
		{well: "TB-1", result: "0.1", keep: false},
		{well: "TCP 09/24", result: "0.1", keep: false},
		{well: "30S/25E-02TB1", result: "0.1", keep: false},
		{well: "", result: "0.1", keep: false},
		{well: "30S/25E-02D01", result: " ", keep: false},
		{well: "30S/25E-02D01", result: "\t", keep: false},
		{well: "   ", result: "0.1", keep: false},
	}

	f := newTestFilter()
	for _, c := range cases {
		r := schema.Record{"state_well_number": c.well, "result": c.result}
		if got := f.Keep(r); got != c.keep {
			t.Errorf("Keep(well=%q, result=%q) should be %v, but %v", c.well, c.result, c.keep, got)
		}
	}
}

func TestFilter_Apply(t *testing.T) {
	t.Parallel()

	records := []schema.Record{
		{"state_well_number": "30S/25E-02D01", "result": "1"},
		{"state_well_number": "TB", "result": "2"},
		{"state_well_number": "30S/25E-03D01", "result": "3"},
	}

	kept := newTestFilter().Apply(records)
	if len(kept) != 2 {
		t.Fatalf("Size of kept records should be 2, but %d", len(kept))
	}
	if kept[0]["result"] != "1" || kept[1]["result"] != "3" {
		t.Errorf("kept records should preserve order, but %v", kept)
	}
}
