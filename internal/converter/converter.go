// Package converter orchestrates the conversion pipeline: metadata
// load, simulation extraction, flow classification, inventory building,
// linking, database write, and spreadsheet export.
package converter

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"hsclci/internal/codec"
	"hsclci/internal/config"
	"hsclci/internal/export"
	"hsclci/internal/inventory"
	"hsclci/internal/linker"
	"hsclci/internal/mapping"
	"hsclci/internal/refdata"
	"hsclci/internal/repository"
	"hsclci/internal/repository/sqlite"
	"hsclci/internal/simulation"
)

// Option configures a Converter
type Option func(*Converter)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(c *Converter) {
		c.log = log
	}
}

// WithExportDir overrides the export directory from the metadata file
func WithExportDir(dir string) Option {
	return func(c *Converter) {
		c.exportDir = dir
	}
}

// WithStore injects an already-open store, mainly for tests
func WithStore(store repository.Store) Option {
	return func(c *Converter) {
		c.store = store
		c.ownStore = false
	}
}

// Report summarizes one conversion run
type Report struct {
	Database   string
	Datasets   int
	Exchanges  int
	Unlinked   int
	Unmapped   int
	ExportPath string
}

// String renders the report in the conventional one-line form
func (r *Report) String() string {
	return fmt.Sprintf("%s: %d datasets, %d exchanges, %d unlinked",
		r.Database, r.Datasets, r.Exchanges, r.Unlinked)
}

// Converter runs the conversion pipeline for one metadata file
type Converter struct {
	cfg       *config.Config
	store     repository.Store
	ownStore  bool
	exportDir string
	log       *zap.Logger
}

// New loads the metadata file, opens the LCI store, and verifies the
// reference databases exist
func New(configPath string, opts ...Option) (*Converter, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	c := &Converter{
		cfg:       cfg,
		ownStore:  true,
		exportDir: cfg.Export.Dir,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		store, err := sqlite.Open(cfg.Project.StorePath)
		if err != nil {
			return nil, err
		}
		c.store = store
	}

	ctx := context.Background()
	for _, db := range []string{cfg.Project.SourceDatabase, cfg.Project.BiosphereDatabase} {
		exists, err := c.store.HasDatabase(ctx, db)
		if err != nil {
			c.closeOwned()
			return nil, err
		}
		if !exists {
			c.closeOwned()
			return nil, fmt.Errorf("database %q not found in store", db)
		}
	}

	return c, nil
}

// Config returns the loaded project metadata
func (c *Converter) Config() *config.Config {
	return c.cfg
}

// Convert runs the full pipeline and returns the run report
func (c *Converter) Convert(ctx context.Context) (*Report, error) {
	cfg := c.cfg

	table, err := mapping.Load(cfg.Inputs.MappingFile)
	if err != nil {
		return nil, err
	}

	c.log.Info("extracting process simulation data",
		zap.String("file", cfg.Inputs.SimulationFile))
	extractor := simulation.NewExtractor(table.BiosphereAirFlows(), c.log)
	streams, err := extractor.Extract(cfg.Inputs.SimulationFile)
	if err != nil {
		return nil, err
	}

	unitConverter, err := refdata.NewUnitConverter()
	if err != nil {
		return nil, err
	}
	geo, err := refdata.LoadGeography()
	if err != nil {
		return nil, err
	}

	c.log.Info("importing reference databases",
		zap.String("source", cfg.Project.SourceDatabase),
		zap.String("biosphere", cfg.Project.BiosphereDatabase))
	source, err := c.store.LoadDatasets(ctx, cfg.Project.SourceDatabase)
	if err != nil {
		return nil, err
	}
	flows, err := c.store.LoadBiosphereFlows(ctx, cfg.Project.BiosphereDatabase)
	if err != nil {
		return nil, err
	}

	builder := inventory.New(table, unitConverter, geo, source,
		cfg.Project.SourceDatabase, cfg.Project.BiosphereDatabase, c.log)
	datasets, stats, err := builder.Build(inventory.Spec{
		Database:         cfg.System.Database,
		ActivityName:     cfg.System.ActivityName,
		ReferenceProduct: cfg.System.ReferenceProduct,
		Location:         cfg.System.Location,
		Comment:          cfg.System.Comment,
	}, streams)
	if err != nil {
		return nil, err
	}

	c.log.Info("linking datasets",
		zap.Int("datasets", len(datasets)))
	linkResult := linker.New(source, flows, c.log).Link(datasets)

	c.log.Info("writing LCI database",
		zap.String("database", cfg.System.Database))
	if err := c.store.WriteDatabase(ctx, cfg.System.Database, datasets); err != nil {
		return nil, err
	}

	exportPath, err := export.NewWriter(c.exportDir).Write(cfg.System.Database, datasets)
	if err != nil {
		return nil, err
	}

	exchanges := 0
	for _, ds := range datasets {
		exchanges += len(ds.Exchanges)
	}

	report := &Report{
		Database:   cfg.System.Database,
		Datasets:   len(datasets),
		Exchanges:  exchanges,
		Unlinked:   linkResult.Unlinked,
		Unmapped:   stats.Unmapped,
		ExportPath: exportPath,
	}

	c.log.Info("conversion finished",
		zap.Int("datasets", report.Datasets),
		zap.Int("exchanges", report.Exchanges),
		zap.Int("unlinked", report.Unlinked),
		zap.Int("unmapped", report.Unmapped),
		zap.String("export", exportPath))

	return report, nil
}

// Validation summarizes a dry-run check of the input files
type Validation struct {
	MappedStreams    int
	ExtractedStreams int
	Unmapped         []string
}

// Validate checks the mapping and simulation files without writing
// anything: every extracted stream should have an LCI mapping
func (c *Converter) Validate(ctx context.Context) (*Validation, error) {
	table, err := mapping.Load(c.cfg.Inputs.MappingFile)
	if err != nil {
		return nil, err
	}

	extractor := simulation.NewExtractor(table.BiosphereAirFlows(), c.log)
	streams, err := extractor.Extract(c.cfg.Inputs.SimulationFile)
	if err != nil {
		return nil, err
	}

	v := &Validation{
		MappedStreams:    table.Len(),
		ExtractedStreams: len(streams),
	}

	seen := make(map[string]bool)
	for _, s := range streams {
		if _, ok := table.Lookup(s.Name); !ok && !seen[s.Name] {
			seen[s.Name] = true
			v.Unmapped = append(v.Unmapped, s.Name)
		}
	}

	return v, nil
}

// ListDatabases returns the databases available in the store
func (c *Converter) ListDatabases(ctx context.Context) ([]string, error) {
	return c.store.ListDatabases(ctx)
}

// Dump serializes the datasets of a stored database to w in the given
// format ("json" or "yaml")
func (c *Converter) Dump(ctx context.Context, database, format string, w io.Writer) error {
	exporter, err := codec.ForFormat(format)
	if err != nil {
		return err
	}

	datasets, err := c.store.LoadDatabase(ctx, database)
	if err != nil {
		return err
	}

	return exporter.Export(&codec.Document{Database: database, Datasets: datasets}, w)
}

// Close releases the store if the converter owns it
func (c *Converter) Close() error {
	return c.closeOwned()
}

func (c *Converter) closeOwned() error {
	if c.ownStore && c.store != nil {
		return c.store.Close()
	}
	return nil
}
