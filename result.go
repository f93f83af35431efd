package trailpack

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Finding codes. Exported consts rather than a closed enum so standards can
// grow new rules without breaking callers.
const (
	CodeRequired           = "required"
	CodeRecommended        = "recommended"
	CodeInvalidType        = "invalid_type"
	CodePattern            = "pattern"
	CodeTooShort           = "too_short"
	CodeTooLong            = "too_long"
	CodeTooFewItems        = "too_few_items"
	CodeTooManyItems       = "too_many_items"
	CodeInvalidURL         = "invalid_url"
	CodeInvalidName        = "invalid_name"
	CodeInvalidVersion     = "invalid_version"
	CodeMissingAuthor      = "missing_author"
	CodeUnknownRole        = "unknown_role"
	CodeMissingUnit        = "missing_unit"
	CodeUnitPathMissing    = "unit_path_missing"
	CodeDimensionlessUnit  = "dimensionless_unit"
	CodeUnknownFieldType   = "unknown_field_type"
	CodePreferredFormat    = "preferred_format"
	CodeMissingConcept     = "missing_concept"
	CodeMixedTypes         = "mixed_types"
	CodeSchemaMismatch     = "schema_mismatch"
	CodeSchemaGap          = "schema_gap"
	CodeMissingData        = "missing_data"
	CodeDuplicateRows      = "duplicate_rows"
	CodeDatasetStats       = "dataset_stats"
	CodeProfileViolation   = "profile_violation"
	CodeTooFewKeywords     = "too_few_keywords"
)

// Finding is a single validation entry. Severity is implied by the result
// list it lives in, not stored on the finding itself.
type Finding struct {
	Field   string         // optional field-name tag
	Code    string         // one of the codes above
	Message string         // human-readable English message
	Params  map[string]any // structured parameters for i18n and tooling
}

func (f Finding) String() string {
	if f.Field != "" {
		return fmt.Sprintf("[%s] %s", f.Field, f.Message)
	}
	return f.Message
}

// Inconsistency documents one value whose concrete type deviates from its
// column's dominant type.
type Inconsistency struct {
	Row          int
	Column       string
	Value        any
	ActualType   string
	ExpectedType string
}

// ComplianceLevel grades a ValidationResult.
type ComplianceLevel string

const (
	LevelStrict       ComplianceLevel = "STRICT"
	LevelStandard     ComplianceLevel = "STANDARD"
	LevelBasic        ComplianceLevel = "BASIC"
	LevelNonCompliant ComplianceLevel = "NON_COMPLIANT"
)

// DefaultStandardMaxWarnings is the STANDARD/BASIC warning cutoff used when
// no standard supplies one.
const DefaultStandardMaxWarnings = 5

// ValidationResult accumulates findings during validation. It is append-only
// while validating; the derived properties (IsValid, Level) are recomputed on
// every read, so a caller may keep accumulating after an early look.
//
// A result must not be shared across concurrent validation runs; each run
// owns its own accumulator.
type ValidationResult struct {
	Errors          []Finding
	Warnings        []Finding
	Info            []Finding
	Inconsistencies []Inconsistency

	standardMaxWarnings int
}

// NewResult returns an empty result with the default level cutoff.
func NewResult() *ValidationResult {
	return &ValidationResult{standardMaxWarnings: DefaultStandardMaxWarnings}
}

// SetStandardMaxWarnings overrides the STANDARD/BASIC warning cutoff. The
// validator stamps this from the loaded standard.
func (r *ValidationResult) SetStandardMaxWarnings(n int) {
	if n > 0 {
		r.standardMaxWarnings = n
	}
}

// AddError records a blocking finding.
func (r *ValidationResult) AddError(f Finding) { r.Errors = append(r.Errors, f) }

// AddWarning records a non-blocking finding.
func (r *ValidationResult) AddWarning(f Finding) { r.Warnings = append(r.Warnings, f) }

// AddInfo records an informational finding.
func (r *ValidationResult) AddInfo(f Finding) { r.Info = append(r.Info, f) }

// AddInconsistency records a type-inconsistency entry.
func (r *ValidationResult) AddInconsistency(inc Inconsistency) {
	r.Inconsistencies = append(r.Inconsistencies, inc)
}

// Merge appends all findings of other. A non-empty prefix is joined onto the
// field tags with a dot, so resource-level findings read "observations.name".
func (r *ValidationResult) Merge(other *ValidationResult, prefix string) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, prefixed(other.Errors, prefix)...)
	r.Warnings = append(r.Warnings, prefixed(other.Warnings, prefix)...)
	r.Info = append(r.Info, prefixed(other.Info, prefix)...)
	r.Inconsistencies = append(r.Inconsistencies, other.Inconsistencies...)
}

func prefixed(fs []Finding, prefix string) []Finding {
	if prefix == "" || len(fs) == 0 {
		return fs
	}
	out := make([]Finding, len(fs))
	for i, f := range fs {
		if f.Field != "" {
			f.Field = prefix + "." + f.Field
		} else {
			f.Field = prefix
		}
		out[i] = f
	}
	return out
}

// IsValid reports whether no errors were recorded.
func (r *ValidationResult) IsValid() bool { return len(r.Errors) == 0 }

// HasWarnings reports whether any warnings were recorded.
func (r *ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

// Level derives the compliance tier from the current counts. First match
// wins: any error is NON_COMPLIANT; no warnings is STRICT; up to the
// standard's cutoff is STANDARD; beyond it BASIC.
func (r *ValidationResult) Level() ComplianceLevel {
	cutoff := r.standardMaxWarnings
	if cutoff <= 0 {
		cutoff = DefaultStandardMaxWarnings
	}
	switch {
	case len(r.Errors) > 0:
		return LevelNonCompliant
	case len(r.Warnings) == 0:
		return LevelStrict
	case len(r.Warnings) <= cutoff:
		return LevelStandard
	default:
		return LevelBasic
	}
}

// Summary returns a one-line digest: tier plus counts.
func (r *ValidationResult) Summary() string {
	return fmt.Sprintf("%s: %d errors, %d warnings", r.Level(), len(r.Errors), len(r.Warnings))
}

// String renders the findings as a plain-text report. Rendering is pure; use
// ExportInconsistencies to write the inconsistency records out.
func (r *ValidationResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Level())
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\nERRORS (%d):\n", len(r.Errors))
		for _, f := range r.Errors {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "\nWARNINGS (%d):\n", len(r.Warnings))
		for _, f := range r.Warnings {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}
	if len(r.Info) > 0 {
		fmt.Fprintf(&b, "\nINFO (%d):\n", len(r.Info))
		for _, f := range r.Info {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}
	if len(r.Inconsistencies) > 0 {
		fmt.Fprintf(&b, "\n%d inconsistent values recorded; export them with ExportInconsistencies.\n",
			len(r.Inconsistencies))
	}
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		b.WriteString("\nAll checks passed.\n")
	}
	return b.String()
}

// WriteInconsistenciesCSV writes the inconsistency records as CSV with the
// header row,column,value,actual_type,expected_type.
func (r *ValidationResult) WriteInconsistenciesCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"row", "column", "value", "actual_type", "expected_type"}); err != nil {
		return err
	}
	for _, inc := range r.Inconsistencies {
		rec := []string{
			fmt.Sprintf("%d", inc.Row),
			inc.Column,
			fmt.Sprintf("%v", inc.Value),
			inc.ActualType,
			inc.ExpectedType,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportInconsistencies writes the CSV report to path.
func (r *ValidationResult) ExportInconsistencies(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.WriteInconsistenciesCSV(f)
}
