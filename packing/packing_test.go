package packing_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/trailpack/trailpack/datapackage"
	"github.com/trailpack/trailpack/packing"
	"github.com/trailpack/trailpack/table"
)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	ts := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	tbl, err := table.New(
		table.Column{Name: "reading_id", Values: []any{int64(1), int64(2), int64(3)}},
		table.Column{Name: "temperature", Values: []any{20.5, nil, 21.25}},
		table.Column{Name: "site", Values: []any{"north", "south", nil}},
		table.Column{Name: "valid", Values: []any{true, false, true}},
		table.Column{Name: "measured_at", Values: []any{ts, ts.Add(time.Hour), nil}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func samplePackage(t *testing.T) *datapackage.DataPackage {
	t.Helper()
	pkg, err := datapackage.NewBuilder().
		Name("sensor-readings").
		Title("Sensor Readings").
		Created("2026-01-15T09:00:00Z").
		AddLicense(datapackage.License{Name: "CC-BY-4.0"}).
		AddContributor(datapackage.Contributor{Name: "Jo Doe", Role: datapackage.RoleAuthor}).
		AddSource(datapackage.Source{Title: "logger"}).
		AddResource(datapackage.Resource{
			Name: "readings", Path: "readings.parquet", Format: "parquet",
			Mediatype: packing.MediatypeParquet,
		}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return pkg
}

func TestWriteReadRoundTrip(t *testing.T) {
	tbl := sampleTable(t)
	pkg := samplePackage(t)

	var buf bytes.Buffer
	if err := packing.Write(&buf, tbl, pkg); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, gotPkg, err := packing.Read(context.Background(), bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if gotPkg == nil {
		t.Fatal("descriptor not recovered from file metadata")
	}
	if gotPkg.Name != "sensor-readings" {
		t.Errorf("package name = %q", gotPkg.Name)
	}
	if len(gotPkg.Resources) != 1 || gotPkg.Resources[0].Mediatype != packing.MediatypeParquet {
		t.Errorf("resources not preserved: %+v", gotPkg.Resources)
	}

	if got.NumRows() != tbl.NumRows() || got.NumCols() != tbl.NumCols() {
		t.Fatalf("shape = %dx%d, want %dx%d", got.NumRows(), got.NumCols(), tbl.NumRows(), tbl.NumCols())
	}
	ids, _ := got.Column("reading_id")
	if ids.Values[0] != int64(1) || ids.Values[2] != int64(3) {
		t.Errorf("reading_id = %v", ids.Values)
	}
	temps, _ := got.Column("temperature")
	if temps.Values[1] != nil || temps.Values[0] != 20.5 {
		t.Errorf("temperature = %v", temps.Values)
	}
	sites, _ := got.Column("site")
	if sites.Values[2] != nil || sites.Values[0] != "north" {
		t.Errorf("site = %v", sites.Values)
	}
	when, _ := got.Column("measured_at")
	ts, ok := when.Values[0].(time.Time)
	if !ok || !ts.Equal(time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("measured_at = %v", when.Values)
	}
}

func TestWriteFileReadFile(t *testing.T) {
	path := t.TempDir() + "/readings.parquet"
	if err := packing.WriteFile(path, sampleTable(t), samplePackage(t)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	tbl, pkg, err := packing.ReadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if pkg == nil || pkg.Name != "sensor-readings" {
		t.Fatalf("descriptor lost: %+v", pkg)
	}
	if tbl.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", tbl.NumRows())
	}
}

// closeSpy fails the test if Write hands Close ownership of the sink to the
// parquet writer instead of leaving it with the caller.
type closeSpy struct {
	bytes.Buffer
	closed int
}

func (c *closeSpy) Close() error {
	c.closed++
	return nil
}

func TestWriteLeavesWriterOpen(t *testing.T) {
	var spy closeSpy
	if err := packing.Write(&spy, sampleTable(t), samplePackage(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if spy.closed != 0 {
		t.Fatalf("Write closed the caller's writer %d times", spy.closed)
	}
	if _, _, err := packing.Read(context.Background(), bytes.NewReader(spy.Bytes())); err != nil {
		t.Fatalf("Read after Write: %v", err)
	}
}

func TestMixedColumnSerializesAsStrings(t *testing.T) {
	tbl, err := table.New(table.Column{
		Name:   "odd",
		Values: []any{int64(1), "two", true},
	})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := packing.Write(&buf, tbl, samplePackage(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _, err := packing.Read(context.Background(), bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	col, _ := got.Column("odd")
	want := []any{"1", "two", "true"}
	for i, v := range want {
		if col.Values[i] != v {
			t.Errorf("odd[%d] = %v, want %v", i, col.Values[i], v)
		}
	}
}
