package refdata

import (
	"fmt"
	"strings"

	"hsclci/internal/domain"
)

// Streams that HSC reports by mass but ecoinvent consumes volumetrically
var volumetricStreams = map[string]bool{
	"natural gas": true,
	"air":         true,
	"h2o(g)":      true,
}

// Streams that HSC reports in kilowatt hours but ecoinvent accounts in
// megajoules
var energyStreams = map[string]bool{
	"thermal energy flow": true,
	"heat flow":           true,
}

const kwhToMJ = 3.6

// UnitConverter normalizes stream units to the target unit set and
// converts amounts accordingly
type UnitConverter struct {
	units *Units
	gases map[string]GasProperties
}

// NewUnitConverter loads the embedded tables and builds a converter
func NewUnitConverter() (*UnitConverter, error) {
	units, err := LoadUnits()
	if err != nil {
		return nil, err
	}
	gases, err := LoadGasProperties()
	if err != nil {
		return nil, err
	}
	return &UnitConverter{units: units, gases: gases}, nil
}

// Units exposes the underlying unit alias table
func (c *UnitConverter) Units() *Units {
	return c.units
}

// Apply normalizes the stream's unit label and converts its amount in
// place: mass to volume for gaseous streams, kilowatt hours to
// megajoules for energy streams.
func (c *UnitConverter) Apply(s *domain.Stream) error {
	s.Unit = c.units.Normalize(s.Unit)

	name := strings.ToLower(s.Name)

	if volumetricStreams[name] && s.Unit != "cubic meter" {
		if s.Unit == "kilogram" {
			props, ok := c.gases[name]
			if !ok || props.Density == 0 {
				return fmt.Errorf("no density for gaseous stream %q", s.Name)
			}
			s.Amount /= props.Density
		}
		s.Unit = "cubic meter"
	}

	if energyStreams[name] && s.Unit != "megajoule" {
		s.Amount *= kwhToMJ
		s.Unit = "megajoule"
	}

	return nil
}
