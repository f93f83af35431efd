// Package datapackage defines the typed metadata model for tabular data
// packages: the DataPackage aggregate with its resources, fields, units,
// licenses, contributors and sources, a fluent Builder, the JSON descriptor
// encoding and a JSON Schema profile check.
//
// The types carry no validation logic; construction and validation are
// separate concerns. A built DataPackage may well fail validation.
package datapackage

import (
	json "github.com/goccy/go-json"
	"strings"
)

// FieldType enumerates the supported column types.
type FieldType string

const (
	FieldString   FieldType = "string"
	FieldInteger  FieldType = "integer"
	FieldNumber   FieldType = "number"
	FieldBoolean  FieldType = "boolean"
	FieldDatetime FieldType = "datetime"
	FieldDate     FieldType = "date"
	FieldTime     FieldType = "time"
	FieldDuration FieldType = "duration"
)

// Numeric reports whether values of this type are quantities that need a
// unit to be interpretable.
func (ft FieldType) Numeric() bool {
	return ft == FieldInteger || ft == FieldNumber
}

// Role enumerates contributor roles.
type Role string

const (
	RoleAuthor      Role = "author"
	RoleContributor Role = "contributor"
	RoleMaintainer  Role = "maintainer"
	RolePublisher   Role = "publisher"
	RoleWrangler    Role = "wrangler"
)

// KnownRole reports whether r is one of the enumerated roles.
func KnownRole(r Role) bool {
	switch r {
	case RoleAuthor, RoleContributor, RoleMaintainer, RolePublisher, RoleWrangler:
		return true
	}
	return false
}

// DimensionlessPath is the canonical vocabulary entry for the dimensionless
// unit used by counts and identifier columns.
const DimensionlessPath = "https://vocab.sentier.dev/units/unit/NUM"

// Unit is a unit of measurement, ideally referencing a vocabulary entry
// (QUDT or vocab.sentier.dev) through Path.
type Unit struct {
	Name     string `json:"name"`
	LongName string `json:"longName,omitempty"`
	Path     string `json:"path,omitempty"`
}

// Dimensionless returns the NUM unit for counts and identifiers.
func Dimensionless() Unit {
	return Unit{Name: "NUM", LongName: "dimensionless number", Path: DimensionlessPath}
}

// IsDimensionless reports whether the unit is the dimensionless NUM unit.
func (u Unit) IsDimensionless() bool {
	if strings.EqualFold(u.Name, "NUM") || strings.EqualFold(u.Name, "dimensionless") {
		return true
	}
	return strings.HasSuffix(u.Path, "/unit/NUM")
}

// FieldConstraints are optional Table Schema constraints on one field.
// Pointer members distinguish "absent" from zero values.
type FieldConstraints struct {
	Required *bool    `json:"required,omitempty"`
	Unique   *bool    `json:"unique,omitempty"`
	Minimum  *float64 `json:"minimum,omitempty"`
	Maximum  *float64 `json:"maximum,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
	Enum     []string `json:"enum,omitempty"`
}

// Empty reports whether no constraint is set.
func (c FieldConstraints) Empty() bool {
	return c.Required == nil && c.Unique == nil && c.Minimum == nil &&
		c.Maximum == nil && c.Pattern == "" && len(c.Enum) == 0
}

// Field describes one column: declared type, optional unit, optional
// ontology concept reference (RDFType) and optional constraints.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Description string            `json:"description,omitempty"`
	Unit        *Unit             `json:"unit,omitempty"`
	RDFType     string            `json:"rdfType,omitempty"`
	Constraints *FieldConstraints `json:"constraints,omitempty"`
}

// License identifies a license by its SPDX-style short name.
type License struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
	Path  string `json:"path,omitempty"`
}

// Contributor is a person or organization involved with the package.
type Contributor struct {
	Name         string `json:"name"`
	Role         Role   `json:"role,omitempty"`
	Email        string `json:"email,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// Source records the provenance of the data.
type Source struct {
	Title       string `json:"title"`
	Path        string `json:"path,omitempty"`
	Description string `json:"description,omitempty"`
}

// Resource is one data file's worth of schema plus location metadata.
type Resource struct {
	Name        string
	Path        string
	Title       string
	Description string
	Format      string
	Mediatype   string
	Encoding    string
	Profile     string
	Fields      []Field
	PrimaryKey  []string
}

// tableSchema is the nested "schema" object of the resource descriptor.
type tableSchema struct {
	Fields     []Field  `json:"fields"`
	PrimaryKey []string `json:"primaryKey,omitempty"`
}

type resourceDescriptor struct {
	Name        string       `json:"name"`
	Path        string       `json:"path"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Format      string       `json:"format,omitempty"`
	Mediatype   string       `json:"mediatype,omitempty"`
	Encoding    string       `json:"encoding,omitempty"`
	Profile     string       `json:"profile,omitempty"`
	Schema      *tableSchema `json:"schema,omitempty"`
}

// MarshalJSON renders the Frictionless descriptor shape: fields nest under
// "schema", and the default utf-8 encoding is left implicit.
func (r Resource) MarshalJSON() ([]byte, error) {
	d := resourceDescriptor{
		Name:        r.Name,
		Path:        r.Path,
		Title:       r.Title,
		Description: r.Description,
		Format:      r.Format,
		Mediatype:   r.Mediatype,
		Profile:     r.Profile,
	}
	if r.Encoding != "" && r.Encoding != "utf-8" {
		d.Encoding = r.Encoding
	}
	if len(r.Fields) > 0 {
		d.Schema = &tableSchema{Fields: r.Fields, PrimaryKey: r.PrimaryKey}
	}
	return json.Marshal(d)
}

// UnmarshalJSON is the inverse of MarshalJSON; a missing encoding is
// normalized to utf-8.
func (r *Resource) UnmarshalJSON(b []byte) error {
	var d resourceDescriptor
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	r.Name = d.Name
	r.Path = d.Path
	r.Title = d.Title
	r.Description = d.Description
	r.Format = d.Format
	r.Mediatype = d.Mediatype
	r.Profile = d.Profile
	r.Encoding = d.Encoding
	if r.Encoding == "" {
		r.Encoding = "utf-8"
	}
	if d.Schema != nil {
		r.Fields = d.Schema.Fields
		r.PrimaryKey = d.Schema.PrimaryKey
	} else {
		r.Fields = nil
		r.PrimaryKey = nil
	}
	return nil
}

// DataPackage is the aggregate metadata object describing a dataset:
// identity, licensing, provenance and one or more resources.
type DataPackage struct {
	Name         string        `json:"name"`
	ID           string        `json:"id,omitempty"`
	Title        string        `json:"title,omitempty"`
	Description  string        `json:"description,omitempty"`
	Version      string        `json:"version,omitempty"`
	Profile      string        `json:"profile,omitempty"`
	Keywords     []string      `json:"keywords,omitempty"`
	Homepage     string        `json:"homepage,omitempty"`
	Repository   string        `json:"repository,omitempty"`
	Created      string        `json:"created,omitempty"`
	Modified     string        `json:"modified,omitempty"`
	Resources    []Resource    `json:"resources"`
	Licenses     []License     `json:"licenses,omitempty"`
	Contributors []Contributor `json:"contributors,omitempty"`
	Sources      []Source      `json:"sources,omitempty"`
}

// Descriptor serializes the package to its JSON descriptor, the exact bytes
// embedded into output files under the "datapackage.json" metadata key.
func (p *DataPackage) Descriptor() ([]byte, error) {
	return json.Marshal(p)
}

// ParseDescriptor decodes a JSON descriptor produced by Descriptor.
func ParseDescriptor(b []byte) (*DataPackage, error) {
	var p DataPackage
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
