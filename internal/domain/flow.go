package domain

import "strings"

// FlowType classifies an exchange within an inventory dataset
type FlowType string

const (
	// FlowProduction is the reference flow a dataset produces
	FlowProduction FlowType = "production"
	// FlowTechnosphere is a human-made process input or output
	FlowTechnosphere FlowType = "technosphere"
	// FlowBiosphere is an exchange with the natural environment
	FlowBiosphere FlowType = "biosphere"
)

// Direction indicates whether a stream enters or leaves its unit process
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Stream is one material or energy flow extracted from the simulation
// results. Type stays empty until the stream is classified against the
// LCI flow mapping.
type Stream struct {
	UnitProcess string
	Name        string
	Amount      float64
	Unit        string
	Direction   Direction
	Type        FlowType
}

// Classified reports whether the stream has been assigned a flow type
func (s *Stream) Classified() bool {
	return s.Type != ""
}

// Categories is the environmental compartment of a biosphere flow.
// Subcategory is optional (e.g. "air" alone vs "air"/"urban air close
// to ground").
type Categories struct {
	Category    string `json:"category" yaml:"category"`
	Subcategory string `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
}

// Slice returns the categories as an ordered list, omitting an empty
// subcategory
func (c Categories) Slice() []string {
	if c.Subcategory == "" {
		return []string{c.Category}
	}
	return []string{c.Category, c.Subcategory}
}

// String renders the categories in "category/subcategory" form
func (c Categories) String() string {
	return strings.Join(c.Slice(), "/")
}

// Equal reports whether two category pairs are identical
func (c Categories) Equal(other Categories) bool {
	return c.Category == other.Category && c.Subcategory == other.Subcategory
}

// CategoriesFromSlice builds Categories from an ordered list
func CategoriesFromSlice(parts []string) Categories {
	var c Categories
	if len(parts) > 0 {
		c.Category = parts[0]
	}
	if len(parts) > 1 {
		c.Subcategory = parts[1]
	}
	return c
}

// BiosphereFlow is one elementary flow from the biosphere reference
// database
type BiosphereFlow struct {
	Name       string     `json:"name"`
	Unit       string     `json:"unit"`
	Categories Categories `json:"categories"`
	Code       string     `json:"code"`
	Database   string     `json:"database"`
}
