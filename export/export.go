// Package export orchestrates the full path from a mapped table to a packed
// Parquet file: field inference, metadata assembly, standard validation, the
// descriptor profile check and the final write.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/trailpack/trailpack"
	"github.com/trailpack/trailpack/datapackage"
	"github.com/trailpack/trailpack/packing"
	"github.com/trailpack/trailpack/standard"
	"github.com/trailpack/trailpack/table"
)

// ErrNonCompliant is returned by Export when blocking is enabled and the
// validation result carries errors.
var ErrNonCompliant = errors.New("export: package is not compliant with the standard")

// Mapping binds one column to an ontology concept and unit chosen by the
// user. All members are optional; unmapped numeric columns fall back to the
// dimensionless unit.
type Mapping struct {
	Concept      string // concept IRI
	ConceptLabel string
	Unit         *datapackage.Unit
	Description  string
}

// Details is the user-supplied package-level metadata.
type Details struct {
	Name        string
	ID          string
	Title       string
	Description string
	Version     string
	Profile     string
	Keywords    []string
	Homepage    string
	Repository  string
	Created     string
	Modified    string

	Licenses     []datapackage.License
	Contributors []datapackage.Contributor
	Sources      []datapackage.Source

	// SourceFile and Sheet name the origin of the table; the resource name
	// is derived from them unless ResourceName is set.
	SourceFile   string
	Sheet        string
	ResourceName string
}

// Result is the outcome of one export.
type Result struct {
	Package    *datapackage.DataPackage
	Validation *trailpack.ValidationResult
	Level      trailpack.ComplianceLevel
}

// Exporter runs exports against one standard version. Safe for concurrent
// use; each Export call is independent.
type Exporter struct {
	spec                *standard.Specification
	validatorOpts       []trailpack.ValidatorOption
	blockOnNonCompliant bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// BlockOnNonCompliant makes Export fail with ErrNonCompliant instead of
// writing a file whose validation carries errors. The default reports the
// level and writes anyway.
func BlockOnNonCompliant() Option {
	return func(e *Exporter) { e.blockOnNonCompliant = true }
}

// WithValidatorOptions forwards options to the standard validator, e.g.
// trailpack.WithQualityThresholds().
func WithValidatorOptions(opts ...trailpack.ValidatorOption) Option {
	return func(e *Exporter) { e.validatorOpts = append(e.validatorOpts, opts...) }
}

// New builds an Exporter for the given standard.
func New(spec *standard.Specification, opts ...Option) *Exporter {
	e := &Exporter{spec: spec}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export assembles the package for tbl, validates it, and writes the packed
// Parquet file to w. The returned Result always carries the validation
// outcome, also when the export is blocked.
func (e *Exporter) Export(ctx context.Context, w io.Writer, tbl *table.Table, mappings map[string]Mapping, details Details) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tbl == nil || tbl.NumCols() == 0 {
		return nil, errors.New("export: table is empty")
	}
	if details.Name == "" {
		return nil, errors.New("export: package name is required")
	}
	if !trailpack.ValidPackageName(details.Name) {
		return nil, fmt.Errorf("export: invalid package name %q", details.Name)
	}

	fields := BuildFields(tbl, mappings, details.Sheet)
	resource := buildResource(fields, details)
	pkg, err := buildPackage(resource, details)
	if err != nil {
		return nil, err
	}

	validator := trailpack.NewStandardValidator(e.spec, e.validatorOpts...)
	result := validator.ValidateAll(pkg, tbl, conceptMappings(tbl, fields, mappings))

	descriptor, err := pkg.Descriptor()
	if err != nil {
		return nil, fmt.Errorf("export: encode descriptor: %w", err)
	}
	if err := datapackage.CheckProfile(descriptor); err != nil {
		result.AddError(trailpack.Finding{
			Code:    trailpack.CodeProfileViolation,
			Message: fmt.Sprintf("Descriptor violates the data package profile: %v", err),
		})
	}

	res := &Result{Package: pkg, Validation: result, Level: result.Level()}
	if e.blockOnNonCompliant && !result.IsValid() {
		return res, ErrNonCompliant
	}
	if err := packing.Write(w, tbl, pkg); err != nil {
		return res, err
	}
	return res, nil
}

// BuildFields infers one field definition per column: declared type from the
// observed values, concept and unit from the mapping, dimensionless NUM for
// numeric columns left without a unit.
func BuildFields(tbl *table.Table, mappings map[string]Mapping, sheet string) []datapackage.Field {
	fields := make([]datapackage.Field, 0, tbl.NumCols())
	for _, col := range tbl.Columns() {
		m := mappings[col.Name]
		ft := table.FieldTypeOf(col.DType())

		unit := m.Unit
		if ft.Numeric() && unit == nil {
			num := datapackage.Dimensionless()
			unit = &num
		}

		desc := m.Description
		if desc == "" {
			if m.Concept != "" {
				desc = fmt.Sprintf("Column from %s", originName(sheet))
			} else {
				desc = fmt.Sprintf("%s (from %s)", col.Name, originName(sheet))
			}
		}

		fields = append(fields, datapackage.Field{
			Name:        col.Name,
			Type:        ft,
			Description: desc,
			Unit:        unit,
			RDFType:     m.Concept,
		})
	}
	return fields
}

func originName(sheet string) string {
	if sheet == "" {
		return "source data"
	}
	return sheet
}

func buildResource(fields []datapackage.Field, details Details) datapackage.Resource {
	name := details.ResourceName
	if name == "" {
		stem := strings.TrimSuffix(filepath.Base(details.SourceFile), filepath.Ext(details.SourceFile))
		name = trailpack.SanitizeResourceName(strings.TrimSpace(stem + " " + details.Sheet))
	}
	if name == "" {
		name = "data"
	}
	title := details.Title
	if title == "" {
		title = details.SourceFile
	}
	desc := details.Description
	if desc == "" {
		desc = fmt.Sprintf("Data from %s", originName(details.Sheet))
	}
	return datapackage.Resource{
		Name:        name,
		Path:        name + ".parquet",
		Title:       title,
		Description: desc,
		Format:      "parquet",
		Mediatype:   packing.MediatypeParquet,
		Encoding:    "utf-8",
		Profile:     "tabular-data-resource",
		Fields:      fields,
	}
}

func buildPackage(resource datapackage.Resource, details Details) (*datapackage.DataPackage, error) {
	id := details.ID
	if id == "" {
		id = uuid.NewString()
	}
	b := datapackage.NewBuilder().
		Name(details.Name).
		ID(id).
		Title(details.Title).
		Description(details.Description).
		Version(details.Version).
		Profile(details.Profile).
		Keywords(details.Keywords...).
		Homepage(details.Homepage).
		Repository(details.Repository).
		Created(details.Created).
		Modified(details.Modified).
		AddResource(resource)
	for _, l := range details.Licenses {
		b.AddLicense(l)
	}
	for _, c := range details.Contributors {
		b.AddContributor(c)
	}
	for _, s := range details.Sources {
		b.AddSource(s)
	}
	pkg, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return pkg, nil
}

// conceptMappings feeds the validator's mapping checks. Units come from the
// built fields so the dimensionless fallback already counts as provided.
func conceptMappings(tbl *table.Table, fields []datapackage.Field, mappings map[string]Mapping) []trailpack.ConceptMapping {
	byName := make(map[string]*datapackage.Field, len(fields))
	for i := range fields {
		byName[fields[i].Name] = &fields[i]
	}
	out := make([]trailpack.ConceptMapping, 0, tbl.NumCols())
	for _, col := range tbl.Columns() {
		m := mappings[col.Name]
		cm := trailpack.ConceptMapping{
			Column:      col.Name,
			Concept:     m.Concept,
			Unit:        m.Unit,
			Description: m.Description,
		}
		if f := byName[col.Name]; cm.Unit == nil && f != nil {
			cm.Unit = f.Unit
		}
		if cm.Description == "" && byName[col.Name] != nil {
			cm.Description = byName[col.Name].Description
		}
		out = append(out, cm)
	}
	return out
}
