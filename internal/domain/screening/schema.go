// Package screening provides the domain model for HIV-1 screening datasets:
// molecule records, the column schema that locates them in a delimited file,
// the CI/CA/CM activity collapse, and the pure summaries computed over a
// loaded table.
package screening

import (
	"sort"
	"strings"

	"github.com/turtacn/hivscreen/pkg/errors"
)

// Preset names for the two known dataset layouts.
const (
	PresetClassroom = "classroom"
	PresetHIV       = "hiv"
)

// Schema names the columns that carry each Record field.  Smiles and Label
// are required; Activity is optional because some exports drop it.
type Schema struct {
	Smiles   string `mapstructure:"smiles" yaml:"smiles" json:"smiles"`
	Activity string `mapstructure:"activity" yaml:"activity" json:"activity"`
	Label    string `mapstructure:"label" yaml:"label" json:"label"`
}

// Presets maps preset names to their schemas.
var Presets = map[string]Schema{
	PresetClassroom: {Smiles: "Smiles", Activity: "Experimental activity", Label: "Label"},
	PresetHIV:       {Smiles: "smiles", Activity: "activity", Label: "HIV_active"},
}

// PresetNames returns the known preset names in lexical order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveSchema returns the preset schema with any non-empty override field
// applied on top.  An empty preset defaults to PresetClassroom.
func ResolveSchema(preset string, overrides Schema) (Schema, error) {
	if preset == "" {
		preset = PresetClassroom
	}
	base, ok := Presets[strings.ToLower(preset)]
	if !ok {
		return Schema{}, errors.NewValidationError("schema",
			"unknown schema preset "+preset+"; expected one of "+strings.Join(PresetNames(), "|"))
	}
	if overrides.Smiles != "" {
		base.Smiles = overrides.Smiles
	}
	if overrides.Activity != "" {
		base.Activity = overrides.Activity
	}
	if overrides.Label != "" {
		base.Label = overrides.Label
	}
	return base, nil
}

// Required returns the column names that must be present in a header.
func (s Schema) Required() []string {
	return []string{s.Smiles, s.Label}
}

//Personal.AI order the ending
