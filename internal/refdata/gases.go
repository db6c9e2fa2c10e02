package refdata

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/gases_properties.yaml
var gasPropertiesRaw []byte

// GasProperties holds physical properties of a gaseous stream
type GasProperties struct {
	Density float64 `yaml:"density"` // kg/m3 at normal conditions
}

// LoadGasProperties parses the embedded gas property table, keyed by
// lower-case stream name
func LoadGasProperties() (map[string]GasProperties, error) {
	props := make(map[string]GasProperties)
	if err := yaml.Unmarshal(gasPropertiesRaw, &props); err != nil {
		return nil, fmt.Errorf("parse gas properties: %w", err)
	}
	return props, nil
}
