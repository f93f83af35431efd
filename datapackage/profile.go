package datapackage

import (
	_ "embed"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed datapackage.schema.json
var profileSchema string

var (
	profileOnce sync.Once
	profile     *santhosh.Schema
	profileErr  error
)

// CheckProfile validates a JSON descriptor against the embedded descriptor
// schema. It is a structural cross-check on serialized output; rule-level
// validation (units, cardinalities, compliance tiers) belongs to the
// standard validator. A schema violation is returned as
// *jsonschema.ValidationError.
func CheckProfile(descriptor []byte) error {
	profileOnce.Do(func() {
		profile, profileErr = santhosh.CompileString("trailpack://datapackage.schema.json", profileSchema)
	})
	if profileErr != nil {
		return fmt.Errorf("compile descriptor schema: %w", profileErr)
	}
	var doc any
	if err := json.Unmarshal(descriptor, &doc); err != nil {
		return fmt.Errorf("parse descriptor: %w", err)
	}
	return profile.Validate(doc)
}
