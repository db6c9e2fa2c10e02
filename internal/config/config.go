// Package config loads and validates the project metadata file that
// drives a conversion run.
//
// The metadata file is the caller-supplied YAML describing:
//   - the system under study (database name, activity name, reference
//     product, location, comment)
//   - the LCI store and the reference databases inside it
//   - the input workbooks (simulation results and stream mapping)
//   - where to write the spreadsheet export
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the project metadata for one conversion run
type Config struct {
	System  SystemConfig  `yaml:"system"`
	Project ProjectConfig `yaml:"project"`
	Inputs  InputsConfig  `yaml:"inputs"`
	Export  ExportConfig  `yaml:"export"`
}

// SystemConfig describes the system the inventories represent
type SystemConfig struct {
	Database         string `yaml:"database"`
	ActivityName     string `yaml:"activity_name"`
	ReferenceProduct string `yaml:"reference_product"`
	Location         string `yaml:"location"`
	Comment          string `yaml:"comment"`
}

// ProjectConfig locates the LCI store and the reference databases in it
type ProjectConfig struct {
	StorePath         string `yaml:"store_path"`
	SourceDatabase    string `yaml:"source_database"`
	BiosphereDatabase string `yaml:"biosphere_database"`
}

// InputsConfig locates the input workbooks
type InputsConfig struct {
	SimulationFile string `yaml:"simulation_file"`
	MappingFile    string `yaml:"mapping_file"`
}

// ExportConfig controls the spreadsheet export
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads and validates a metadata file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Project.StorePath == "" {
		c.Project.StorePath = "./lci.db"
	}
	if c.Project.BiosphereDatabase == "" {
		c.Project.BiosphereDatabase = "biosphere3"
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "."
	}
}

// Validate checks that all required fields are present
func (c *Config) Validate() error {
	required := []struct {
		value string
		field string
	}{
		{c.System.Database, "system.database"},
		{c.System.ActivityName, "system.activity_name"},
		{c.System.ReferenceProduct, "system.reference_product"},
		{c.System.Location, "system.location"},
		{c.Project.SourceDatabase, "project.source_database"},
		{c.Inputs.SimulationFile, "inputs.simulation_file"},
		{c.Inputs.MappingFile, "inputs.mapping_file"},
	}

	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("metadata field %s is required", r.field)
		}
	}

	if c.System.Database == c.Project.SourceDatabase {
		return fmt.Errorf("system.database must differ from project.source_database")
	}

	return nil
}
