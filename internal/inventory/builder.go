// Package inventory builds Brightway-style inventory datasets from
// classified simulation streams.
//
// One dataset is built per unit process, each producing 1 "unit" of
// itself, plus one global activity whose inputs are the unit-process
// datasets. Technosphere exchanges resolve their supplier from the
// source database with geographic fallback; biosphere exchanges carry
// the mapped flow name and categories for later linking.
package inventory

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"hsclci/internal/domain"
	"hsclci/internal/mapping"
	"hsclci/internal/refdata"
)

// Spec describes the system the inventories represent
type Spec struct {
	Database         string
	ActivityName     string
	ReferenceProduct string
	Location         string
	Comment          string
}

// Stats summarizes one build pass
type Stats struct {
	UnitProcesses int
	Streams       int
	Unmapped      int
}

// Builder assembles inventory datasets from streams
type Builder struct {
	table     *mapping.Table
	converter *refdata.UnitConverter
	geo       *refdata.Geography
	source    []*domain.Dataset
	sourceDB  string
	bioDB     string
	log       *zap.Logger
}

// New creates a builder. source holds the technosphere reference
// datasets suppliers are resolved against.
func New(
	table *mapping.Table,
	converter *refdata.UnitConverter,
	geo *refdata.Geography,
	source []*domain.Dataset,
	sourceDB, bioDB string,
	log *zap.Logger,
) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		table:     table,
		converter: converter,
		geo:       geo,
		source:    source,
		sourceDB:  sourceDB,
		bioDB:     bioDB,
		log:       log,
	}
}

// Build classifies and converts the streams, then assembles one dataset
// per unit process plus the global activity. Unmapped streams are
// dropped and counted, never fatal.
func (b *Builder) Build(spec Spec, streams []domain.Stream) ([]*domain.Dataset, *Stats, error) {
	stats := &Stats{Streams: len(streams)}

	byProcess := make(map[string][]domain.Stream)
	for _, s := range streams {
		if !b.table.Classify(&s) {
			stats.Unmapped++
			b.log.Warn("stream has no LCI mapping, dropping",
				zap.String("unit_process", s.UnitProcess),
				zap.String("stream", s.Name))
			continue
		}
		if err := b.converter.Apply(&s); err != nil {
			return nil, nil, fmt.Errorf("convert stream %q: %w", s.Name, err)
		}
		byProcess[s.UnitProcess] = append(byProcess[s.UnitProcess], s)
	}

	processes := make([]string, 0, len(byProcess))
	for up := range byProcess {
		processes = append(processes, up)
	}
	sort.Strings(processes)
	stats.UnitProcesses = len(processes)

	var datasets []*domain.Dataset
	for _, up := range processes {
		ds, err := b.buildUnitProcess(spec, up, byProcess[up])
		if err != nil {
			return nil, nil, err
		}
		datasets = append(datasets, ds)
	}

	datasets = append(datasets, b.buildGlobalActivity(spec, datasets))

	return datasets, stats, nil
}

// buildUnitProcess assembles the dataset for one unit process.
// Each unit process produces 1 "unit" of itself.
func (b *Builder) buildUnitProcess(spec Spec, up string, streams []domain.Stream) (*domain.Dataset, error) {
	ds := domain.NewDataset(
		spec.ActivityName+", "+up,
		spec.ReferenceProduct+", "+up,
		spec.Location,
		spec.Database,
		spec.Comment,
	)
	ds.AddExchange(ds.ProductionExchange())

	for _, s := range streams {
		m, ok := b.table.Lookup(s.Name)
		if !ok {
			// Classify already filtered unmapped streams.
			continue
		}

		switch s.Type {
		case domain.FlowTechnosphere:
			ds.AddExchange(b.technosphereExchange(spec, m, s))
		case domain.FlowBiosphere:
			ds.AddExchange(b.biosphereExchange(m, s))
		default:
			return nil, fmt.Errorf("stream %q has unsupported flow type %q", s.Name, s.Type)
		}
	}

	return ds, nil
}

// technosphereExchange builds a technosphere exchange, resolving the
// supplier dataset for the target location when possible. Unresolved
// exchanges keep the mapped name and target location and stay unlinked.
func (b *Builder) technosphereExchange(spec Spec, m mapping.FlowMapping, s domain.Stream) *domain.Exchange {
	exc := &domain.Exchange{
		Name:     m.Name,
		Product:  m.ReferenceProduct,
		Location: spec.Location,
		Amount:   s.Amount,
		Unit:     s.Unit,
		Database: b.sourceDB,
		Type:     domain.FlowTechnosphere,
	}

	if supplier := b.findSupplier(spec.Location, m.Name, m.ReferenceProduct, s.Unit); supplier != nil {
		exc.Name = supplier.Name
		exc.Product = supplier.ReferenceProduct
		exc.Location = supplier.Location
		exc.Database = supplier.Database
	} else {
		b.log.Warn("no supplier dataset found",
			zap.String("name", m.Name),
			zap.String("product", m.ReferenceProduct),
			zap.String("location", spec.Location),
			zap.String("unit", s.Unit))
	}

	return exc
}

// biosphereExchange builds a biosphere exchange carrying the mapped
// flow name and categories
func (b *Builder) biosphereExchange(m mapping.FlowMapping, s domain.Stream) *domain.Exchange {
	cats := m.Categories()
	return &domain.Exchange{
		Name:       m.Name,
		Amount:     s.Amount,
		Unit:       s.Unit,
		Categories: &cats,
		Database:   b.bioDB,
		Type:       domain.FlowBiosphere,
	}
}

// buildGlobalActivity assembles the activity aggregating all unit
// processes, consuming 1 unit of each
func (b *Builder) buildGlobalActivity(spec Spec, unitProcesses []*domain.Dataset) *domain.Dataset {
	ds := domain.NewDataset(
		spec.ActivityName,
		spec.ReferenceProduct,
		spec.Location,
		spec.Database,
		spec.Comment,
	)
	ds.AddExchange(ds.ProductionExchange())

	for _, up := range unitProcesses {
		ds.AddExchange(&domain.Exchange{
			Name:     up.Name,
			Product:  up.ReferenceProduct,
			Location: up.Location,
			Amount:   1,
			Unit:     up.Unit,
			Database: up.Database,
			Type:     domain.FlowTechnosphere,
		})
	}

	return ds
}

// findSupplier resolves the reference dataset matching (name, product,
// unit), walking the geographic fallback chain for the target location.
// "market for" activities also consider their "market group for"
// variant.
func (b *Builder) findSupplier(loc, name, product, unit string) *domain.Dataset {
	names := map[string]bool{name: true}
	if strings.Contains(name, "market for") {
		names[strings.Replace(name, "market for", "market group for", 1)] = true
	}

	var possibles []*domain.Dataset
	for _, ds := range b.source {
		if names[ds.Name] && ds.ReferenceProduct == product && ds.Unit == unit {
			possibles = append(possibles, ds)
		}
	}
	if len(possibles) == 0 {
		return nil
	}

	for _, candidate := range b.geo.FallbackChain(loc) {
		for _, ds := range possibles {
			if ds.Location == candidate {
				return ds
			}
		}
	}

	return nil
}
