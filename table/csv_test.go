package table_test

import (
	"strings"
	"testing"
	"time"

	"github.com/trailpack/trailpack/table"
)

func TestReadCSV(t *testing.T) {
	const doc = `reading_id,temperature,site,valid,measured_at
1,20.5,north,true,2026-01-15T09:00:00Z
2,21.0,south,false,2026-01-15T10:00:00Z
3,,north,true,
`
	tbl, err := table.ReadCSV(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.NumRows() != 3 || tbl.NumCols() != 5 {
		t.Fatalf("shape = %dx%d", tbl.NumRows(), tbl.NumCols())
	}

	ids, _ := tbl.Column("reading_id")
	if ids.DType() != table.Integer || ids.Values[0] != int64(1) {
		t.Errorf("reading_id = %v (%v)", ids.Values, ids.DType())
	}
	temps, _ := tbl.Column("temperature")
	if temps.DType() != table.Number || temps.Values[0] != 20.5 {
		t.Errorf("temperature = %v (%v)", temps.Values, temps.DType())
	}
	if temps.Values[2] != nil {
		t.Errorf("empty cell should be null, got %v", temps.Values[2])
	}
	valid, _ := tbl.Column("valid")
	if valid.DType() != table.Boolean || valid.Values[1] != false {
		t.Errorf("valid = %v (%v)", valid.Values, valid.DType())
	}
	when, _ := tbl.Column("measured_at")
	ts, ok := when.Values[0].(time.Time)
	if !ok || !ts.Equal(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("measured_at = %v", when.Values)
	}
}

func TestReadCSVDateOnly(t *testing.T) {
	tbl, err := table.ReadCSV(strings.NewReader("day\n2026-01-15\n2026-01-16\n"))
	if err != nil {
		t.Fatal(err)
	}
	col, _ := tbl.Column("day")
	if col.DType() != table.Datetime {
		t.Fatalf("day dtype = %v, want datetime", col.DType())
	}
}

func TestReadCSVMixedColumnSurvives(t *testing.T) {
	// Per-cell inference keeps the deviating value visible instead of
	// coercing the column.
	tbl, err := table.ReadCSV(strings.NewReader("amount\n1\ntwo\n3\n"))
	if err != nil {
		t.Fatal(err)
	}
	col, _ := tbl.Column("amount")
	if col.DType() != table.Mixed {
		t.Fatalf("amount dtype = %v, want mixed", col.DType())
	}
	if col.Values[1] != "two" {
		t.Fatalf("amount[1] = %v", col.Values[1])
	}
}

func TestReadCSVShortRowsPadWithNulls(t *testing.T) {
	tbl, err := table.ReadCSV(strings.NewReader("a,b\n1,2\n3\n"))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := tbl.Column("b")
	if b.Values[1] != nil {
		t.Fatalf("missing trailing cell should be null, got %v", b.Values[1])
	}
}

func TestReadCSVOverlongRowFails(t *testing.T) {
	_, err := table.ReadCSV(strings.NewReader("a,b\n1,2\n3,4,5\n"))
	if err == nil {
		t.Fatal("row wider than the header must fail")
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("error should name the offending row: %v", err)
	}
}

func TestReadCSVEmptyInput(t *testing.T) {
	if _, err := table.ReadCSV(strings.NewReader("")); err == nil {
		t.Fatal("empty input must fail")
	}
}
