package refdata

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/ecoinvent_units.yaml
var unitAliasesRaw []byte

// Units maps unit labels as reported by the simulation to the unit
// names the target database expects
type Units struct {
	aliases map[string]string
	known   map[string]bool
}

// LoadUnits parses the embedded unit alias table
func LoadUnits() (*Units, error) {
	aliases := make(map[string]string)
	if err := yaml.Unmarshal(unitAliasesRaw, &aliases); err != nil {
		return nil, fmt.Errorf("parse unit aliases: %w", err)
	}

	known := make(map[string]bool, len(aliases))
	for _, v := range aliases {
		known[v] = true
	}

	return &Units{aliases: aliases, known: known}, nil
}

// Normalize returns the ecoinvent name for a simulation unit label.
// Unknown labels pass through unchanged.
func (u *Units) Normalize(unit string) string {
	if target, ok := u.aliases[unit]; ok {
		return target
	}
	return unit
}

// Known reports whether a unit name belongs to the target unit set
func (u *Units) Known(unit string) bool {
	return u.known[unit]
}
