package datapackage

import (
	"errors"
	"time"
)

// ErrNoResources is returned by Build when no resource was added.
var ErrNoResources = errors.New("datapackage: at least one resource is required")

// Builder assembles a DataPackage from discrete pieces. It is stateful
// during construction only; Build returns an independent value. The builder
// performs no validation beyond refusing to build without resources — run
// the result through the standard validator.
type Builder struct {
	pkg DataPackage
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Name sets the package name (lowercase slug).
func (b *Builder) Name(name string) *Builder {
	b.pkg.Name = name
	return b
}

// ID sets the package identifier.
func (b *Builder) ID(id string) *Builder {
	b.pkg.ID = id
	return b
}

// Title sets the human-readable title.
func (b *Builder) Title(title string) *Builder {
	b.pkg.Title = title
	return b
}

// Description sets the package description.
func (b *Builder) Description(desc string) *Builder {
	b.pkg.Description = desc
	return b
}

// Version sets the semantic version string.
func (b *Builder) Version(version string) *Builder {
	b.pkg.Version = version
	return b
}

// Profile sets the package profile, e.g. "tabular-data-package".
func (b *Builder) Profile(profile string) *Builder {
	b.pkg.Profile = profile
	return b
}

// Keywords sets the discoverability keywords.
func (b *Builder) Keywords(keywords ...string) *Builder {
	b.pkg.Keywords = append([]string(nil), keywords...)
	return b
}

// Homepage sets the project homepage URL.
func (b *Builder) Homepage(url string) *Builder {
	b.pkg.Homepage = url
	return b
}

// Repository sets the code repository URL.
func (b *Builder) Repository(url string) *Builder {
	b.pkg.Repository = url
	return b
}

// Created sets the creation date (ISO 8601).
func (b *Builder) Created(date string) *Builder {
	b.pkg.Created = date
	return b
}

// Modified sets the modification date (ISO 8601).
func (b *Builder) Modified(date string) *Builder {
	b.pkg.Modified = date
	return b
}

// AddLicense appends a license.
func (b *Builder) AddLicense(l License) *Builder {
	b.pkg.Licenses = append(b.pkg.Licenses, l)
	return b
}

// AddContributor appends a contributor.
func (b *Builder) AddContributor(c Contributor) *Builder {
	b.pkg.Contributors = append(b.pkg.Contributors, c)
	return b
}

// AddSource appends a data source.
func (b *Builder) AddSource(s Source) *Builder {
	b.pkg.Sources = append(b.pkg.Sources, s)
	return b
}

// AddResource appends a resource.
func (b *Builder) AddResource(r Resource) *Builder {
	b.pkg.Resources = append(b.pkg.Resources, r)
	return b
}

// Build returns the assembled DataPackage. A creation date is stamped when
// none was provided. Building without resources fails: a package that
// describes no data is not constructible, everything else is left to the
// validator.
func (b *Builder) Build() (*DataPackage, error) {
	if len(b.pkg.Resources) == 0 {
		return nil, ErrNoResources
	}
	pkg := b.pkg
	if pkg.Created == "" {
		pkg.Created = time.Now().UTC().Format(time.RFC3339)
	}
	pkg.Resources = append([]Resource(nil), b.pkg.Resources...)
	pkg.Licenses = append([]License(nil), b.pkg.Licenses...)
	pkg.Contributors = append([]Contributor(nil), b.pkg.Contributors...)
	pkg.Sources = append([]Source(nil), b.pkg.Sources...)
	return &pkg, nil
}
