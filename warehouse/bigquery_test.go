package warehouse

import (
	"testing"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/kernwater/wqloader/schema"
)

func TestBuildMerge(t *testing.T) {
	t.Parallel()

	table := Table{
		Database:      "kwb-project",
		Schema:        "water_quality",
		Name:          "bsk_lab_results",
		PrimaryKey:    []string{"state_well_number", "analyte"},
		UpdateColumns: []string{"result"},
	}

	got, err := BuildMerge(table, []string{"state_well_number", "analyte", "result"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := "MERGE `kwb-project.water_quality.bsk_lab_results` AS target\n" +
		"USING (SELECT @p0 AS `state_well_number`, @p1 AS `analyte`, @p2 AS `result`) AS source\n" +
		"ON target.`state_well_number` = source.`state_well_number` AND target.`analyte` = source.`analyte`\n" +
		"WHEN MATCHED THEN UPDATE SET `result` = source.`result`\n" +
		"WHEN NOT MATCHED THEN INSERT (`state_well_number`, `analyte`, `result`) " +
		"VALUES (source.`state_well_number`, source.`analyte`, source.`result`)"

	if got != want {
		t.Errorf("statement should be\n%s\nbut\n%s", want, got)
	}
}

func TestMergeParameters(t *testing.T) {
	t.Parallel()

	s := schema.Schema{
		{Name: "a", Type: schema.Text},
		{Name: "b", Type: schema.Real},
		{Name: "c", Type: schema.Timestamp},
		{Name: "d", Type: schema.Real},
	}
	loc := time.FixedZone("PDT", -7*60*60)
	row := schema.Row{"x", nil, time.Date(2024, 9, 23, 10, 15, 0, 0, loc), 1.5}

	params, err := mergeParameters(s, row)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if params[0].Name != "p0" || params[0].Value != "x" {
		t.Errorf("unexpected p0 %+v", params[0])
	}
	if _, ok := params[1].Value.(bigquery.NullFloat64); !ok {
		t.Errorf("null real should be bigquery.NullFloat64, but %T", params[1].Value)
	}
	if tm, ok := params[2].Value.(time.Time); !ok || tm.Location() != time.UTC || tm.Hour() != 17 {
		t.Errorf("timestamp should be converted to UTC, but %v", params[2].Value)
	}
	if params[3].Value != 1.5 {
		t.Errorf("p3 should be 1.5, but %v", params[3].Value)
	}

	if _, err := mergeParameters(s, schema.Row{"x"}); err == nil {
		t.Error("expected error for mismatched row length")
	}
}
