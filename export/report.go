package export

import (
	"fmt"
	"strings"
	"time"
)

const reportRule = "================================================================================"

// Report renders a downloadable plain-text validation report for one export
// result: status, summary counts, findings grouped by severity and the
// dataset information.
func Report(r *Result, details Details) string {
	return reportAt(r, details, time.Now())
}

// reportAt exists so tests can pin the timestamp.
func reportAt(r *Result, details Details, now time.Time) string {
	var b strings.Builder
	v := r.Validation

	line := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }
	section := func(title string) {
		line("")
		line(reportRule)
		line(title)
		line(reportRule)
	}

	line(reportRule)
	line("TRAILPACK VALIDATION REPORT")
	line(reportRule)
	line("")
	line("Generated: %s", now.Format("2006-01-02 15:04:05"))
	if details.SourceFile != "" || details.Sheet != "" {
		line("Dataset: %s - %s", details.SourceFile, originName(details.Sheet))
	}
	line("Package Name: %s", details.Name)
	line("")
	line("Validation Level: %s", r.Level)
	status := "PASSED"
	if !v.IsValid() {
		status = "FAILED"
	}
	line("Validation Status: %s", status)

	section("SUMMARY")
	line("Errors: %d", len(v.Errors))
	line("Warnings: %d", len(v.Warnings))
	line("Info Messages: %d", len(v.Info))

	if len(v.Errors) > 0 {
		section("ERRORS")
		for i, f := range v.Errors {
			line("%d. %s", i+1, f)
		}
	}
	if len(v.Warnings) > 0 {
		section("WARNINGS")
		for i, f := range v.Warnings {
			line("%d. %s", i+1, f)
		}
	}
	if len(v.Info) > 0 {
		section("DATA QUALITY METRICS")
		for i, f := range v.Info {
			line("%d. %s", i+1, f)
		}
	}

	if r.Package != nil && len(r.Package.Resources) > 0 {
		section("COLUMN MAPPINGS")
		for _, f := range r.Package.Resources[0].Fields {
			switch {
			case f.RDFType != "" && f.Unit != nil:
				line("- %s: %s (unit: %s)", f.Name, f.RDFType, f.Unit.Name)
			case f.RDFType != "":
				line("- %s: %s", f.Name, f.RDFType)
			default:
				line("- %s: Not mapped", f.Name)
			}
		}
	}

	line("")
	line(reportRule)
	line("END OF REPORT")
	line(reportRule)
	return b.String()
}
