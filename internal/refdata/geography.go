package refdata

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/geography.yaml
var geographyRaw []byte

const (
	// LocationRoW is the rest-of-world fallback region
	LocationRoW = "RoW"
	// LocationGLO is the global fallback region
	LocationGLO = "GLO"
)

// Geography resolves supply-region fallback chains: from a target
// location up through its containing regions to RoW and GLO
type Geography struct {
	containedIn map[string][]string
}

type geographyFile struct {
	ContainedIn map[string][]string `yaml:"contained_in"`
}

// LoadGeography parses the embedded containment table
func LoadGeography() (*Geography, error) {
	var gf geographyFile
	if err := yaml.Unmarshal(geographyRaw, &gf); err != nil {
		return nil, fmt.Errorf("parse geography: %w", err)
	}
	if gf.ContainedIn == nil {
		gf.ContainedIn = make(map[string][]string)
	}
	return &Geography{containedIn: gf.ContainedIn}, nil
}

// FallbackChain returns candidate supplier locations for a target
// location, most specific first. RoW is tried before GLO.
func (g *Geography) FallbackChain(loc string) []string {
	chain := []string{loc}
	for _, region := range g.containedIn[loc] {
		if region != loc {
			chain = append(chain, region)
		}
	}

	hasRoW, hasGLO := false, false
	for _, l := range chain {
		switch l {
		case LocationRoW:
			hasRoW = true
		case LocationGLO:
			hasGLO = true
		}
	}
	if !hasRoW {
		chain = append(chain, LocationRoW)
	}
	if !hasGLO {
		chain = append(chain, LocationGLO)
	}

	return chain
}
