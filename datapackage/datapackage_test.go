package datapackage_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/trailpack/trailpack/datapackage"
)

func buildSample(t *testing.T) *datapackage.DataPackage {
	t.Helper()
	celsius := datapackage.Unit{Name: "°C", Path: "https://vocab.sentier.dev/units/unit/DEG_C"}
	pkg, err := datapackage.NewBuilder().
		Name("sensor-readings").
		Title("Sensor Readings").
		Description("Hourly temperature readings.").
		Version("1.2.0").
		Keywords("sensors", "temperature", "climate").
		Created("2026-01-15T09:00:00Z").
		AddLicense(datapackage.License{Name: "CC-BY-4.0", Title: "Creative Commons Attribution 4.0"}).
		AddContributor(datapackage.Contributor{Name: "Jo Doe", Role: datapackage.RoleAuthor}).
		AddSource(datapackage.Source{Title: "Field station logger"}).
		AddResource(datapackage.Resource{
			Name:      "readings",
			Path:      "readings.parquet",
			Format:    "parquet",
			Encoding:  "utf-8",
			Fields: []datapackage.Field{
				{Name: "reading_id", Type: datapackage.FieldInteger, Unit: unitPtr(datapackage.Dimensionless())},
				{Name: "temperature", Type: datapackage.FieldNumber, Unit: &celsius,
					RDFType: "https://vocab.sentier.dev/concepts/temperature"},
			},
			PrimaryKey: []string{"reading_id"},
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return pkg
}

func unitPtr(u datapackage.Unit) *datapackage.Unit { return &u }

func TestBuilderRequiresResources(t *testing.T) {
	_, err := datapackage.NewBuilder().Name("empty").Build()
	if !errors.Is(err, datapackage.ErrNoResources) {
		t.Fatalf("err = %v, want ErrNoResources", err)
	}
}

func TestBuilderStampsCreated(t *testing.T) {
	pkg, err := datapackage.NewBuilder().
		Name("x").
		AddResource(datapackage.Resource{Name: "d", Path: "d.parquet"}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if pkg.Created == "" {
		t.Fatal("Created not stamped")
	}
	if !strings.Contains(pkg.Created, "T") {
		t.Fatalf("Created = %q, want RFC 3339", pkg.Created)
	}
}

func TestDescriptorRoundTrip(t *testing.T) {
	pkg := buildSample(t)
	descriptor, err := pkg.Descriptor()
	if err != nil {
		t.Fatalf("Descriptor: %v", err)
	}

	// Field definitions nest under "schema" in the Frictionless shape, and
	// the default utf-8 encoding stays implicit.
	s := string(descriptor)
	if !strings.Contains(s, `"schema":{"fields":`) {
		t.Errorf("fields not nested under schema: %s", s)
	}
	if strings.Contains(s, `"encoding"`) {
		t.Errorf("utf-8 encoding should be omitted: %s", s)
	}
	if !strings.Contains(s, `"primaryKey":["reading_id"]`) {
		t.Errorf("primaryKey missing: %s", s)
	}
	if !strings.Contains(s, `"longName":"dimensionless number"`) {
		t.Errorf("unit longName missing: %s", s)
	}

	got, err := datapackage.ParseDescriptor(descriptor)
	if err != nil {
		t.Fatalf("ParseDescriptor: %v", err)
	}
	if got.Name != pkg.Name || got.Version != pkg.Version {
		t.Fatalf("identity lost: %+v", got)
	}
	res := got.Resources[0]
	if res.Encoding != "utf-8" {
		t.Errorf("encoding = %q, want normalized utf-8", res.Encoding)
	}
	if len(res.Fields) != 2 || res.Fields[1].Unit == nil || res.Fields[1].Unit.Name != "°C" {
		t.Errorf("fields lost: %+v", res.Fields)
	}
	if res.Fields[1].RDFType != "https://vocab.sentier.dev/concepts/temperature" {
		t.Errorf("rdfType lost: %+v", res.Fields[1])
	}
}

func TestUnitDimensionless(t *testing.T) {
	if !datapackage.Dimensionless().IsDimensionless() {
		t.Error("Dimensionless() must report itself dimensionless")
	}
	byPath := datapackage.Unit{Name: "count", Path: datapackage.DimensionlessPath}
	if !byPath.IsDimensionless() {
		t.Error("NUM path must count as dimensionless")
	}
	celsius := datapackage.Unit{Name: "°C", Path: "https://vocab.sentier.dev/units/unit/DEG_C"}
	if celsius.IsDimensionless() {
		t.Error("°C is not dimensionless")
	}
}

func TestFieldTypeNumeric(t *testing.T) {
	for _, ft := range []datapackage.FieldType{datapackage.FieldInteger, datapackage.FieldNumber} {
		if !ft.Numeric() {
			t.Errorf("%v should be numeric", ft)
		}
	}
	for _, ft := range []datapackage.FieldType{datapackage.FieldString, datapackage.FieldBoolean, datapackage.FieldDatetime} {
		if ft.Numeric() {
			t.Errorf("%v should not be numeric", ft)
		}
	}
}

func TestCheckProfile(t *testing.T) {
	pkg := buildSample(t)
	descriptor, err := pkg.Descriptor()
	if err != nil {
		t.Fatal(err)
	}
	if err := datapackage.CheckProfile(descriptor); err != nil {
		t.Fatalf("valid descriptor rejected: %v", err)
	}

	if err := datapackage.CheckProfile([]byte(`{"name":"x"}`)); err == nil {
		t.Fatal("descriptor without resources must be rejected")
	}
	if err := datapackage.CheckProfile([]byte(`not json`)); err == nil {
		t.Fatal("malformed JSON must be rejected")
	}
}
