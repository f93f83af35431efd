package trailpack

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/trailpack/trailpack/datapackage"
	"github.com/trailpack/trailpack/standard"
	"github.com/trailpack/trailpack/table"
)

// StandardValidator evaluates data packages against a loaded standard
// Specification. It holds no mutable state between calls — the only retained
// member is the read-only Specification — so one validator may serve
// concurrent validations as long as each call keeps its own result.
type StandardValidator struct {
	spec              *standard.Specification
	enforceThresholds bool
}

// ValidatorOption configures a StandardValidator.
type ValidatorOption func(*StandardValidator)

// WithQualityThresholds enables enforcement of the standard's null-fraction
// and duplicate-row thresholds as warnings. Without it the metrics are
// reported as informational findings only.
func WithQualityThresholds() ValidatorOption {
	return func(v *StandardValidator) { v.enforceThresholds = true }
}

// NewStandardValidator builds a validator for the given Specification.
func NewStandardValidator(spec *standard.Specification, opts ...ValidatorOption) *StandardValidator {
	v := &StandardValidator{spec: spec}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Specification returns the standard this validator enforces.
func (v *StandardValidator) Specification() *standard.Specification { return v.spec }

func (v *StandardValidator) newResult() *ValidationResult {
	r := NewResult()
	r.SetStandardMaxWarnings(v.spec.StandardMaxWarnings())
	return r
}

// ValidateMetadata checks the package-level metadata: the standard's
// required and recommended field tables, then the invariants the tables
// cannot express (name dot rule, semantic version, URL schemes, the
// author-role requirement and the keyword heuristic).
func (v *StandardValidator) ValidateMetadata(pkg *datapackage.DataPackage) *ValidationResult {
	r := v.newResult()
	if pkg == nil {
		r.AddError(Finding{Code: CodeRequired, Message: "Package metadata is required"})
		return r
	}
	for i := range v.spec.Metadata.Required {
		rule := &v.spec.Metadata.Required[i]
		val, present := metadataValue(pkg, rule.Name)
		if !present {
			r.AddError(Finding{Field: rule.Name, Code: CodeRequired, Message: requiredMessage(rule)})
			continue
		}
		v.checkRuleValue(r, rule, val, true)
	}
	for i := range v.spec.Metadata.Recommended {
		rule := &v.spec.Metadata.Recommended[i]
		if _, present := metadataValue(pkg, rule.Name); !present {
			r.AddWarning(Finding{Field: rule.Name, Code: CodeRecommended, Message: recommendedMessage(rule)})
		}
	}

	if pkg.Name != "" && slugPattern.MatchString(pkg.Name) && !ValidPackageName(pkg.Name) {
		r.AddError(Finding{Field: "name", Code: CodeInvalidName,
			Message: "Package name cannot start or end with a dot"})
	}
	if pkg.Version != "" && !semverPattern.MatchString(pkg.Version) {
		r.AddError(Finding{Field: "version", Code: CodeInvalidVersion,
			Message: "Version must follow semantic versioning (MAJOR.MINOR.PATCH)",
			Params:  map[string]any{"got": pkg.Version}})
	}
	for _, link := range []struct{ field, url string }{
		{"homepage", pkg.Homepage},
		{"repository", pkg.Repository},
	} {
		if link.url != "" && !strings.HasPrefix(link.url, "http://") && !strings.HasPrefix(link.url, "https://") {
			r.AddError(Finding{Field: link.field, Code: CodeInvalidURL,
				Message: "URL must start with http:// or https://",
				Params:  map[string]any{"got": link.url}})
		}
	}
	if len(pkg.Contributors) > 0 {
		hasAuthor := false
		for _, c := range pkg.Contributors {
			if c.Role == datapackage.RoleAuthor {
				hasAuthor = true
			}
			if c.Role != "" && !datapackage.KnownRole(c.Role) {
				r.AddError(Finding{Field: "contributors", Code: CodeUnknownRole,
					Message: fmt.Sprintf("Unknown contributor role %q", c.Role)})
			}
		}
		if !hasAuthor {
			r.AddError(Finding{Field: "contributors", Code: CodeMissingAuthor,
				Message: "At least one contributor with role 'author' is required"})
		}
	}
	if n := len(pkg.Keywords); n > 0 && n < 3 {
		r.AddWarning(Finding{Field: "keywords", Code: CodeTooFewKeywords,
			Message: fmt.Sprintf("Only %d keywords present; at least 3 improve discoverability", n),
			Params:  map[string]any{"got": n, "min": 3}})
	}
	return r
}

// ValidateResource checks one resource: required and recommended resource
// rules, the preferred-format hint, and every contained field definition.
// An invalid resource name produces a warning carrying a sanitized
// suggestion; the resource is never renamed here.
func (v *StandardValidator) ValidateResource(res datapackage.Resource) *ValidationResult {
	r := v.newResult()
	for i := range v.spec.Resources.Required {
		rule := &v.spec.Resources.Required[i]
		val, present := resourceValue(&res, rule.Name)
		if !present {
			r.AddError(Finding{Field: rule.Name, Code: CodeRequired, Message: requiredMessage(rule)})
			continue
		}
		if rule.Name == "name" {
			if ok, _, suggestion := ValidateAndSanitizeResourceName(res.Name, false); !ok {
				r.AddWarning(Finding{Field: "name", Code: CodeInvalidName,
					Message: fmt.Sprintf("Resource name %q contains invalid characters; suggested name: %q",
						res.Name, suggestion),
					Params: map[string]any{"suggestion": suggestion}})
			}
			continue
		}
		v.checkRuleValue(r, rule, val, true)
		if rule.Name == "format" && rule.Preferred != "" && res.Format != rule.Preferred {
			r.AddWarning(Finding{Field: "format", Code: CodePreferredFormat,
				Message: fmt.Sprintf("Format %q is acceptable, but %q is preferred", res.Format, rule.Preferred),
				Params:  map[string]any{"got": res.Format, "preferred": rule.Preferred}})
		}
	}
	for i := range v.spec.Resources.Recommended {
		rule := &v.spec.Resources.Recommended[i]
		if _, present := resourceValue(&res, rule.Name); !present {
			r.AddWarning(Finding{Field: rule.Name, Code: CodeRecommended, Message: recommendedMessage(rule)})
		}
	}
	for _, f := range res.Fields {
		r.Merge(v.ValidateFieldDefinition(f), "")
	}
	return r
}

// ValidateFieldDefinition checks one field definition: the declared type
// must be enumerated by the standard, and numeric fields must carry a unit.
// Identifier-looking fields satisfy the unit requirement with the
// dimensionless NUM unit; everything else is expected to reference a
// physically meaningful unit with a canonical vocabulary path.
func (v *StandardValidator) ValidateFieldDefinition(f datapackage.Field) *ValidationResult {
	r := v.newResult()
	name := f.Name
	if name == "" {
		r.AddError(Finding{Field: "name", Code: CodeRequired, Message: "Field name is required"})
		name = "unknown"
	}
	if f.Type == "" {
		r.AddError(Finding{Field: name, Code: CodeRequired, Message: "Field type is required"})
	} else if allowed := v.spec.Fields.AllowedTypes(); len(allowed) > 0 && !containsString(allowed, string(f.Type)) {
		r.AddError(Finding{Field: name, Code: CodeUnknownFieldType,
			Message: fmt.Sprintf("Invalid type %q. Must be one of: %s", f.Type, strings.Join(allowed, ", ")),
			Params:  map[string]any{"got": string(f.Type)}})
	}
	if f.Type.Numeric() {
		ident := IdentifierField(f)
		switch {
		case f.Unit == nil:
			r.AddError(Finding{Field: name, Code: CodeMissingUnit, Message: v.spec.Fields.NumericUnit.Message})
		case f.Unit.Path == "" && !(ident && f.Unit.IsDimensionless()):
			r.AddWarning(Finding{Field: name, Code: CodeUnitPathMissing, Message: v.spec.Fields.UnitPath.Message})
		}
		if f.Unit != nil && f.Unit.IsDimensionless() && !ident {
			r.AddWarning(Finding{Field: name, Code: CodeDimensionlessUnit,
				Message: fmt.Sprintf("Field %q uses a dimensionless unit; a physically meaningful unit is expected for measurements", name)})
		}
	}
	return r
}

// IdentifierField reports whether a field looks like an identifier column:
// its name contains "id", "index" or "key" (case-insensitive), or its
// description mentions "identifier". Identifier columns are counted, not
// measured, so the dimensionless unit is the right one for them.
func IdentifierField(f datapackage.Field) bool {
	n := strings.ToLower(f.Name)
	if strings.Contains(n, "id") || strings.Contains(n, "index") || strings.Contains(n, "key") {
		return true
	}
	return strings.Contains(strings.ToLower(f.Description), "identifier")
}

// ValidateDataQuality examines the dataset itself. Null and duplicate
// statistics are facts to report, not failures: they surface as info
// findings, and only the WithQualityThresholds option turns threshold
// breaches into warnings. Type problems are different — a mixed-type column
// or a declared/observed mismatch means the data cannot be represented by
// its schema, which is an error. Every value deviating from its column's
// dominant type is recorded as an Inconsistency.
func (v *StandardValidator) ValidateDataQuality(tbl *table.Table, schema []datapackage.Field) *ValidationResult {
	r := v.newResult()
	if tbl == nil {
		return r
	}
	q := v.spec.DataQuality

	for _, col := range tbl.Columns() {
		nf := col.NullFraction()
		if nf > 0 {
			r.AddInfo(Finding{Field: col.Name, Code: CodeMissingData,
				Message: fmt.Sprintf("Column %q has %.1f%% missing values", col.Name, nf*100),
				Params:  map[string]any{"fraction": nf}})
		}
		if v.enforceThresholds {
			switch {
			case nf > q.MissingData.MaxNullFraction:
				r.AddWarning(Finding{Field: col.Name, Code: CodeMissingData,
					Message: fmt.Sprintf("Column %q has %.1f%% missing values (max: %.0f%%)",
						col.Name, nf*100, q.MissingData.MaxNullFraction*100),
					Params: map[string]any{"fraction": nf, "max": q.MissingData.MaxNullFraction}})
			case nf > q.MissingData.CriticalNullFraction:
				r.AddWarning(Finding{Field: col.Name, Code: CodeMissingData,
					Message: fmt.Sprintf("Column %q has %.1f%% missing values (approaching the %.0f%% limit)",
						col.Name, nf*100, q.MissingData.MaxNullFraction*100),
					Params: map[string]any{"fraction": nf}})
			}
		}
	}

	if !q.TypeConsistency.AllowMixedTypes {
		for _, col := range tbl.Columns() {
			if col.DType() != table.Mixed {
				continue
			}
			counts := map[string]int{}
			var order []string
			for _, val := range col.Values {
				if val == nil {
					continue
				}
				t := table.ValueType(val)
				if counts[t] == 0 {
					order = append(order, t)
				}
				counts[t]++
			}
			dominant := order[0]
			for _, t := range order[1:] {
				if counts[t] > counts[dominant] {
					dominant = t
				}
			}
			for i, val := range col.Values {
				if val == nil {
					continue
				}
				if t := table.ValueType(val); t != dominant {
					r.AddInconsistency(Inconsistency{
						Row: i, Column: col.Name, Value: val,
						ActualType: t, ExpectedType: dominant,
					})
				}
			}
			r.AddError(Finding{Field: col.Name, Code: CodeMixedTypes,
				Message: fmt.Sprintf("Column %q has mixed types: %s", col.Name, strings.Join(order, ", ")),
				Params:  map[string]any{"types": order, "expected": dominant}})
		}
	}

	if len(schema) > 0 && q.TypeConsistency.CheckAgainstSchema {
		byName := make(map[string]datapackage.Field, len(schema))
		for _, f := range schema {
			byName[f.Name] = f
		}
		for _, col := range tbl.Columns() {
			f, ok := byName[col.Name]
			if !ok {
				r.AddWarning(Finding{Field: col.Name, Code: CodeSchemaGap,
					Message: fmt.Sprintf("Column %q present in data but not in the schema", col.Name)})
				continue
			}
			if dt := col.DType(); !dtypeMatches(f.Type, dt) {
				r.AddError(Finding{Field: col.Name, Code: CodeSchemaMismatch,
					Message: fmt.Sprintf("Column %q declared as %q but observed as %s", col.Name, f.Type, dt),
					Params:  map[string]any{"declared": string(f.Type), "observed": dt.String()}})
			}
		}
		for _, f := range schema {
			if _, ok := tbl.Column(f.Name); !ok {
				r.AddWarning(Finding{Field: f.Name, Code: CodeSchemaGap,
					Message: fmt.Sprintf("Field %q defined in the schema but not found in the data", f.Name)})
			}
		}
	}

	if q.Duplicates.CheckDuplicates {
		if dups := tbl.DuplicateRowCount(); dups > 0 {
			frac := float64(dups) / float64(tbl.NumRows())
			r.AddInfo(Finding{Code: CodeDuplicateRows,
				Message: fmt.Sprintf("%d duplicate rows found (%.1f%%)", dups, frac*100),
				Params:  map[string]any{"count": dups, "fraction": frac}})
			if v.enforceThresholds && frac > q.Duplicates.MaxDuplicateFraction {
				r.AddWarning(Finding{Code: CodeDuplicateRows,
					Message: fmt.Sprintf("%d duplicate rows (%.1f%%) exceed the allowed %.0f%%",
						dups, frac*100, q.Duplicates.MaxDuplicateFraction*100),
					Params: map[string]any{"count": dups, "fraction": frac}})
			}
		}
	}

	r.AddInfo(Finding{Code: CodeDatasetStats,
		Message: fmt.Sprintf("Dataset has %d rows and %d columns", tbl.NumRows(), tbl.NumCols()),
		Params:  map[string]any{"rows": tbl.NumRows(), "columns": tbl.NumCols()}})
	return r
}

// ConceptMapping binds a data column to an externally resolved ontology
// concept, an optional unit and an optional free-text description.
type ConceptMapping struct {
	Column      string
	Concept     string // concept URI/IRI
	Unit        *datapackage.Unit
	Description string
}

// ValidateAll composes metadata, per-resource, data-quality and mapping
// validation into one result. Resource findings are tagged with the
// resource name; the dataset is cross-checked against the first resource's
// schema, matching how a single-sheet export lays out its package.
func (v *StandardValidator) ValidateAll(pkg *datapackage.DataPackage, tbl *table.Table, mappings []ConceptMapping) *ValidationResult {
	r := v.newResult()
	r.Merge(v.ValidateMetadata(pkg), "")
	if pkg != nil {
		for i, res := range pkg.Resources {
			tag := res.Name
			if tag == "" {
				tag = fmt.Sprintf("resource_%d", i)
			}
			r.Merge(v.ValidateResource(res), tag)
		}
	}
	if tbl != nil {
		var schema []datapackage.Field
		if pkg != nil && len(pkg.Resources) > 0 {
			schema = pkg.Resources[0].Fields
		}
		r.Merge(v.ValidateDataQuality(tbl, schema), "")
	}
	for _, m := range mappings {
		hasConcept := m.Concept != ""
		hasDesc := strings.TrimSpace(m.Description) != ""
		switch {
		case !hasConcept && !hasDesc:
			r.AddError(Finding{Field: m.Column, Code: CodeMissingConcept,
				Message: fmt.Sprintf("Column %q must have either an ontology mapping or a description", m.Column)})
		case !hasConcept:
			r.AddWarning(Finding{Field: m.Column, Code: CodeMissingConcept,
				Message: fmt.Sprintf("Column %q has a description but no ontology mapping", m.Column)})
		}
		if tbl != nil && m.Unit == nil {
			if col, ok := tbl.Column(m.Column); ok {
				if dt := col.DType(); dt == table.Integer || dt == table.Number {
					r.AddError(Finding{Field: m.Column, Code: CodeMissingUnit,
						Message: fmt.Sprintf("Numeric column %q must have a unit defined", m.Column)})
				}
			}
		}
	}
	return r
}

// dtypeMatches reports whether an observed column category can faithfully
// represent the declared field type.
func dtypeMatches(ft datapackage.FieldType, dt table.DType) bool {
	if dt == table.Empty {
		return true
	}
	switch ft {
	case datapackage.FieldInteger:
		return dt == table.Integer
	case datapackage.FieldNumber:
		return dt == table.Integer || dt == table.Number
	case datapackage.FieldBoolean:
		return dt == table.Boolean
	case datapackage.FieldDatetime, datapackage.FieldDate:
		return dt == table.Datetime
	case datapackage.FieldTime:
		return dt == table.Datetime || dt == table.String
	case datapackage.FieldString, datapackage.FieldDuration:
		return dt == table.String || dt == table.Mixed
	default:
		return true
	}
}

func (v *StandardValidator) checkRuleValue(r *ValidationResult, rule *standard.FieldRule, val any, asError bool) {
	add := r.AddWarning
	if asError {
		add = r.AddError
	}
	switch rule.Type {
	case "string":
		s, ok := val.(string)
		if !ok {
			add(Finding{Field: rule.Name, Code: CodeInvalidType,
				Message: fmt.Sprintf("Expected string for %q", rule.Name)})
			return
		}
		if rule.MinLength > 0 && len(s) < rule.MinLength {
			add(Finding{Field: rule.Name, Code: CodeTooShort,
				Message: fmt.Sprintf("Minimum length is %d, got %d", rule.MinLength, len(s)),
				Params:  map[string]any{"min": rule.MinLength, "got": len(s)}})
		}
		if rule.MaxLength > 0 && len(s) > rule.MaxLength {
			add(Finding{Field: rule.Name, Code: CodeTooLong,
				Message: fmt.Sprintf("Maximum length is %d, got %d", rule.MaxLength, len(s)),
				Params:  map[string]any{"max": rule.MaxLength, "got": len(s)}})
		}
		if !rule.MatchPattern(s) {
			add(Finding{Field: rule.Name, Code: CodePattern, Message: requiredMessage(rule)})
		}
	case "array":
		n, ok := lengthOf(val)
		if !ok {
			add(Finding{Field: rule.Name, Code: CodeInvalidType,
				Message: fmt.Sprintf("Expected array for %q", rule.Name)})
			return
		}
		if rule.MinItems > 0 && n < rule.MinItems {
			add(Finding{Field: rule.Name, Code: CodeTooFewItems, Message: requiredMessage(rule),
				Params: map[string]any{"min": rule.MinItems, "got": n}})
		}
		if rule.MaxItems > 0 && n > rule.MaxItems {
			add(Finding{Field: rule.Name, Code: CodeTooManyItems,
				Message: fmt.Sprintf("Maximum %d items allowed, got %d", rule.MaxItems, n),
				Params:  map[string]any{"max": rule.MaxItems, "got": n}})
		}
	case "url":
		s, ok := val.(string)
		if !ok || (!strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://")) {
			add(Finding{Field: rule.Name, Code: CodeInvalidURL,
				Message: "URL must start with http:// or https://"})
		}
	}
}

func metadataValue(pkg *datapackage.DataPackage, name string) (any, bool) {
	switch name {
	case "name":
		return pkg.Name, pkg.Name != ""
	case "id":
		return pkg.ID, pkg.ID != ""
	case "title":
		return pkg.Title, pkg.Title != ""
	case "description":
		return pkg.Description, pkg.Description != ""
	case "version":
		return pkg.Version, pkg.Version != ""
	case "profile":
		return pkg.Profile, pkg.Profile != ""
	case "homepage":
		return pkg.Homepage, pkg.Homepage != ""
	case "repository":
		return pkg.Repository, pkg.Repository != ""
	case "created":
		return pkg.Created, pkg.Created != ""
	case "modified":
		return pkg.Modified, pkg.Modified != ""
	case "keywords":
		return pkg.Keywords, len(pkg.Keywords) > 0
	case "resources":
		return pkg.Resources, len(pkg.Resources) > 0
	case "licenses":
		return pkg.Licenses, len(pkg.Licenses) > 0
	case "contributors":
		return pkg.Contributors, len(pkg.Contributors) > 0
	case "sources":
		return pkg.Sources, len(pkg.Sources) > 0
	default:
		return nil, false
	}
}

func resourceValue(res *datapackage.Resource, name string) (any, bool) {
	switch name {
	case "name":
		return res.Name, res.Name != ""
	case "path":
		return res.Path, res.Path != ""
	case "title":
		return res.Title, res.Title != ""
	case "description":
		return res.Description, res.Description != ""
	case "format":
		return res.Format, res.Format != ""
	case "mediatype":
		return res.Mediatype, res.Mediatype != ""
	case "encoding":
		return res.Encoding, res.Encoding != ""
	case "profile":
		return res.Profile, res.Profile != ""
	default:
		return nil, false
	}
}

func requiredMessage(rule *standard.FieldRule) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fmt.Sprintf("Required field %q is missing or invalid", rule.Name)
}

func recommendedMessage(rule *standard.FieldRule) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fmt.Sprintf("Recommended field %q is missing", rule.Name)
}

func lengthOf(val any) (int, bool) {
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len(), true
	}
	return 0, false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
