// Package linker resolves exchange input keys against the new
// inventories and the reference databases.
//
// Technosphere exchanges link by (name, product, location), searching
// the inventories being written before the source database so that
// unit-process datasets can reference each other. Biosphere exchanges
// link by (name, unit, categories) against the biosphere flow list.
//
// Linking is best effort: exchanges that cannot be resolved stay
// unlinked and are reported as a count.
package linker

import (
	"go.uber.org/zap"

	"hsclci/internal/domain"
)

// Result summarizes one linking pass
type Result struct {
	Linked   int
	Unlinked int
	Missing  []string
}

// Linker links exchanges against reference records
type Linker struct {
	source []*domain.Dataset
	flows  []domain.BiosphereFlow
	log    *zap.Logger
}

// New creates a linker over the source database and biosphere flows
func New(source []*domain.Dataset, flows []domain.BiosphereFlow, log *zap.Logger) *Linker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Linker{source: source, flows: flows, log: log}
}

type technosphereKey struct {
	name, product, location string
}

type biosphereKey struct {
	name, unit string
	categories domain.Categories
}

// Link resolves exchange input keys in place and returns the pass
// summary. Already-linked exchanges (production flows) are skipped.
func (l *Linker) Link(inventories []*domain.Dataset) Result {
	techIndex := l.buildTechnosphereIndex(inventories)
	bioIndex := l.buildBiosphereIndex()

	var res Result
	for _, ds := range inventories {
		for _, exc := range ds.Exchanges {
			if exc.Linked() {
				continue
			}

			switch exc.Type {
			case domain.FlowTechnosphere:
				key := technosphereKey{exc.Name, exc.Product, exc.Location}
				if input, ok := techIndex[key]; ok {
					in := input
					exc.Input = &in
					res.Linked++
					continue
				}
			case domain.FlowBiosphere:
				var cats domain.Categories
				if exc.Categories != nil {
					cats = *exc.Categories
				}
				key := biosphereKey{exc.Name, exc.Unit, cats}
				if input, ok := bioIndex[key]; ok {
					in := input
					exc.Input = &in
					res.Linked++
					continue
				}
			}

			res.Unlinked++
			res.Missing = append(res.Missing, exc.Name)
			l.log.Warn("exchange could not be linked",
				zap.String("dataset", ds.Name),
				zap.String("exchange", exc.Name),
				zap.String("type", string(exc.Type)))
		}
	}

	return res
}

// buildTechnosphereIndex indexes datasets by (name, product, location).
// The inventories being written take precedence over the source
// database so internal references resolve first.
func (l *Linker) buildTechnosphereIndex(inventories []*domain.Dataset) map[technosphereKey]domain.ExchangeKey {
	index := make(map[technosphereKey]domain.ExchangeKey)

	add := func(ds *domain.Dataset) {
		key := technosphereKey{ds.Name, ds.ReferenceProduct, ds.Location}
		if _, exists := index[key]; !exists {
			index[key] = ds.Key()
		}
	}

	for _, ds := range inventories {
		add(ds)
	}
	for _, ds := range l.source {
		add(ds)
	}

	return index
}

// buildBiosphereIndex indexes elementary flows by (name, unit,
// categories)
func (l *Linker) buildBiosphereIndex() map[biosphereKey]domain.ExchangeKey {
	index := make(map[biosphereKey]domain.ExchangeKey)
	for _, f := range l.flows {
		key := biosphereKey{f.Name, f.Unit, f.Categories}
		if _, exists := index[key]; !exists {
			index[key] = domain.ExchangeKey{Database: f.Database, Code: f.Code}
		}
	}
	return index
}
