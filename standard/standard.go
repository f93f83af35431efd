// Package standard loads versioned Trailpack standard specifications.
//
// A Specification is a declarative rule set: required/recommended metadata
// fields with constraints, per-resource and per-field rules, data-quality
// thresholds and the compliance-level policy. Specifications ship embedded
// with the library and are selected explicitly by version; there is no
// implicit "latest" so validation stays reproducible.
package standard

import (
	"embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed standards/*.yaml
var standardsFS embed.FS

// ErrNotFound is returned by Load for unknown standard versions.
var ErrNotFound = errors.New("standard version not found")

// FieldRule describes the constraint on one metadata/resource/field entry.
// Only the members matching the rule Type are meaningful (Pattern and
// length bounds for strings, item bounds for arrays).
type FieldRule struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"` // "string", "array" or "url"
	Pattern   string   `yaml:"pattern"`
	MinLength int      `yaml:"min_length"`
	MaxLength int      `yaml:"max_length"`
	MinItems  int      `yaml:"min_items"`
	MaxItems  int      `yaml:"max_items"`
	Preferred string   `yaml:"preferred"`
	Allowed   []string `yaml:"allowed"`
	Message   string   `yaml:"message"`

	re *regexp.Regexp
}

// MatchPattern reports whether s satisfies the rule's pattern. Rules without
// a pattern match everything.
func (r *FieldRule) MatchPattern(s string) bool {
	if r.re == nil {
		return true
	}
	return r.re.MatchString(s)
}

// Allows reports whether v is in the rule's allowed-value list. Rules
// without a list allow everything.
func (r *FieldRule) Allows(v string) bool {
	if len(r.Allowed) == 0 {
		return true
	}
	for _, a := range r.Allowed {
		if a == v {
			return true
		}
	}
	return false
}

// RuleSet groups the rules of one section. Optional rules carry no checks
// of their own; they document which further fields the standard recognizes.
type RuleSet struct {
	Required    []FieldRule `yaml:"required"`
	Recommended []FieldRule `yaml:"recommended"`
	Optional    []FieldRule `yaml:"optional"`
}

// Rule returns the rule with the given name from any list.
func (rs *RuleSet) Rule(name string) (*FieldRule, bool) {
	for _, rules := range [][]FieldRule{rs.Required, rs.Recommended, rs.Optional} {
		for i := range rules {
			if rules[i].Name == name {
				return &rules[i], true
			}
		}
	}
	return nil, false
}

// Note carries a standalone validation message.
type Note struct {
	Message string `yaml:"message"`
}

// FieldRules holds the per-field-definition requirements.
type FieldRules struct {
	Required    []FieldRule `yaml:"required"`
	NumericUnit Note        `yaml:"numeric_unit"`
	UnitPath    Note        `yaml:"unit_path"`
}

// AllowedTypes returns the allowed field types declared by the "type" rule.
func (fr *FieldRules) AllowedTypes() []string {
	for i := range fr.Required {
		if fr.Required[i].Name == "type" {
			return fr.Required[i].Allowed
		}
	}
	return nil
}

// MissingData holds null-value thresholds, as fractions in [0,1].
type MissingData struct {
	MaxNullFraction      float64 `yaml:"max_null_fraction"`
	CriticalNullFraction float64 `yaml:"critical_null_fraction"`
}

// Duplicates holds the duplicate-row policy.
type Duplicates struct {
	CheckDuplicates      bool    `yaml:"check_duplicates"`
	MaxDuplicateFraction float64 `yaml:"max_duplicate_fraction"`
}

// TypeConsistency holds the type-checking policy.
type TypeConsistency struct {
	AllowMixedTypes    bool `yaml:"allow_mixed_types"`
	CheckAgainstSchema bool `yaml:"check_against_schema"`
}

// DataQuality groups the data-quality rules of a standard.
type DataQuality struct {
	MissingData     MissingData     `yaml:"missing_data"`
	Duplicates      Duplicates      `yaml:"duplicates"`
	TypeConsistency TypeConsistency `yaml:"type_consistency"`
}

// Level describes one compliance tier.
type Level struct {
	Badge       string `yaml:"badge"`
	MaxWarnings int    `yaml:"max_warnings"`
}

// Levels holds the compliance-tier policy of a standard.
type Levels struct {
	Strict       Level `yaml:"strict"`
	Standard     Level `yaml:"standard"`
	Basic        Level `yaml:"basic"`
	NonCompliant Level `yaml:"non_compliant"`
}

// Specification is a fully loaded, immutable standard. Safe for concurrent
// use after Load returns.
type Specification struct {
	Version     string            `yaml:"version"`
	Title       string            `yaml:"title"`
	Metadata    RuleSet           `yaml:"metadata"`
	Resources   RuleSet           `yaml:"resources"`
	Fields      FieldRules        `yaml:"fields"`
	DataQuality DataQuality       `yaml:"data_quality"`
	Levels      Levels            `yaml:"levels"`
	HelpURLs    map[string]string `yaml:"help_urls"`
}

// StandardMaxWarnings returns the warning cutoff separating STANDARD from
// BASIC. The cutoff is standard data, not a validator constant.
func (s *Specification) StandardMaxWarnings() int {
	if s.Levels.Standard.MaxWarnings > 0 {
		return s.Levels.Standard.MaxWarnings
	}
	return 5
}

// HelpURL returns the documentation URL registered for a topic, or "".
func (s *Specification) HelpURL(topic string) string {
	return s.HelpURLs[topic]
}

// Load reads the embedded standard for the given version, e.g. "1.0.0".
// Unknown versions fail with ErrNotFound; a malformed document or an invalid
// rule pattern fails immediately so that no validation runs against a
// half-loaded standard.
func Load(version string) (*Specification, error) {
	data, err := standardsFS.ReadFile("standards/v" + version + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: v%s (available: %s)",
			ErrNotFound, version, strings.Join(Available(), ", "))
	}
	var spec Specification
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse standard v%s: %w", version, err)
	}
	for _, rules := range [][]FieldRule{
		spec.Metadata.Required, spec.Metadata.Recommended, spec.Metadata.Optional,
		spec.Resources.Required, spec.Resources.Recommended, spec.Resources.Optional,
		spec.Fields.Required,
	} {
		if err := compileRules(rules); err != nil {
			return nil, fmt.Errorf("standard v%s: %w", version, err)
		}
	}
	return &spec, nil
}

func compileRules(rules []FieldRule) error {
	for i := range rules {
		if rules[i].Pattern == "" {
			continue
		}
		re, err := regexp.Compile(rules[i].Pattern)
		if err != nil {
			return fmt.Errorf("rule %q: invalid pattern: %w", rules[i].Name, err)
		}
		rules[i].re = re
	}
	return nil
}

// Available lists the embedded standard versions in ascending order.
func Available() []string {
	entries, err := standardsFS.ReadDir("standards")
	if err != nil {
		return nil
	}
	versions := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "v") && strings.HasSuffix(name, ".yaml") {
			versions = append(versions, strings.TrimSuffix(strings.TrimPrefix(name, "v"), ".yaml"))
		}
	}
	sort.Strings(versions)
	return versions
}
