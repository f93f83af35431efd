// Package trailpack validates tabular datasets and their metadata against
// versioned Trailpack standards and grades the outcome.
//
// The package provides:
//
//   - StandardValidator: rule evaluation for metadata, resources, field
//     definitions and the dataset itself, driven by a standard.Specification
//   - ValidationResult: the append-only accumulator of errors, warnings,
//     info findings and per-value type inconsistencies, with the derived
//     compliance level (STRICT/STANDARD/BASIC/NON_COMPLIANT)
//   - Name sanitation helpers for package and resource slugs
//
// Design policy:
//   - Keep the validation engine in the root package; put the metadata model
//     under datapackage/, the standards under standard/, the columnar dataset
//     under table/, and the CLI under cmd/trailpack.
//   - Validation never mutates its inputs and never writes files; reporting
//     and exporting are explicit calls on the result.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	spec, err := standard.Load("1.0.0")
//	v := trailpack.NewStandardValidator(spec)
//	result := v.ValidateAll(pkg, tbl, nil)
//	if !result.IsValid() {
//	    fmt.Println(result)
//	}
package trailpack
