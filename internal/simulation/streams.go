// Package simulation extracts input and output streams from HSC
// Chemistry result workbooks.
//
// Input streams are technosphere inputs consumed by each unit process.
// Output streams carry per-stream property rows; properties that map
// onto biosphere "air" flows become emissions, scaled from the stream's
// total mass flow.
package simulation

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"hsclci/internal/domain"
)

// Extractor reads simulation result workbooks into streams
type Extractor struct {
	airFlows map[string]bool
	log      *zap.Logger
}

// NewExtractor creates an extractor. airFlows is the set of stream
// property names that count as emissions to air (from the LCI mapping).
func NewExtractor(airFlows map[string]bool, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{airFlows: airFlows, log: log}
}

// Extract reads both stream sheets of a results workbook and returns
// the streams sorted by unit process
func (e *Extractor) Extract(path string) ([]domain.Stream, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open simulation file: %w", err)
	}
	defer f.Close()

	inputs, err := e.extractInputs(f)
	if err != nil {
		return nil, err
	}

	outputs, err := e.extractOutputs(f)
	if err != nil {
		return nil, err
	}

	streams := append(inputs, outputs...)
	sort.SliceStable(streams, func(i, j int) bool {
		return streams[i].UnitProcess < streams[j].UnitProcess
	})

	e.log.Info("extracted process simulation data",
		zap.Int("inputs", len(inputs)),
		zap.Int("outputs", len(outputs)))

	return streams, nil
}

// extractInputs reads the Input Streams sheet. Every row with a stream
// name is one technosphere input of its unit process.
func (e *Extractor) extractInputs(f *excelize.File) ([]domain.Stream, error) {
	cols, rows, err := sheetRows(f, SheetInputStreams)
	if err != nil {
		return nil, err
	}

	var streams []domain.Stream
	for i, row := range rows {
		unit := cell(row, cols, colUnitName)
		stream := cell(row, cols, colStreamName)
		if stream == "" || unit == "" {
			continue
		}

		amount, err := parseAmount(cell(row, cols, colAmount))
		if err != nil {
			e.log.Warn("skipping input stream row",
				zap.String("sheet", SheetInputStreams),
				zap.Int("row", i+3),
				zap.String("stream", stream),
				zap.Error(err))
			continue
		}

		streams = append(streams, domain.Stream{
			UnitProcess: unit,
			Name:        stream,
			Amount:      amount,
			Unit:        cell(row, cols, colUnit),
			Direction:   domain.DirectionInput,
		})
	}

	return streams, nil
}

// streamGroup aggregates the property rows of one output stream
type streamGroup struct {
	amount   float64
	unit     string
	massFlow float64
	hasMass  bool
	hasBase  bool
}

// extractOutputs reads the Output Streams sheet. The sheet reports one
// block of property rows per stream, with the stream and unit names
// present only on the first row of each block (hence the forward fill).
// Property rows matching a biosphere air flow become emissions:
//
//	emission = property amount / mass flow * stream amount
func (e *Extractor) extractOutputs(f *excelize.File) ([]domain.Stream, error) {
	cols, rows, err := sheetRows(f, SheetOutputStreams)
	if err != nil {
		return nil, err
	}

	// First pass: forward-fill names and collect per-stream totals.
	type rowRef struct {
		unit, stream, property string
		amount                 float64
		rowNum                 int
	}

	groups := make(map[string]*streamGroup)
	var emissions []rowRef

	key := func(unit, stream string) string { return unit + "\x00" + stream }

	var curUnit, curStream string
	for i, row := range rows {
		if v := cell(row, cols, colUnitName); v != "" {
			curUnit = v
		}
		if v := cell(row, cols, colStreamName); v != "" {
			curStream = v
		}
		if curUnit == "" || curStream == "" {
			continue
		}

		g := groups[key(curUnit, curStream)]
		if g == nil {
			g = &streamGroup{}
			groups[key(curUnit, curStream)] = g
		}

		if !g.hasBase {
			if amount, err := parseAmount(cell(row, cols, colAmount)); err == nil {
				g.amount = amount
				g.unit = cell(row, cols, colUnit)
				g.hasBase = true
			}
		}

		property := cell(row, cols, colStreamProperties)
		if property == "" {
			continue
		}

		if property == propertyMassFlow {
			if mass, err := parseAmount(cell(row, cols, colStreamPropertyAmount)); err == nil {
				g.massFlow = mass
				g.hasMass = true
			}
			continue
		}

		if !e.airFlows[property] {
			continue
		}

		amount, err := parseAmount(cell(row, cols, colStreamPropertyAmount))
		if err != nil {
			e.log.Warn("skipping output property row",
				zap.String("sheet", SheetOutputStreams),
				zap.Int("row", i+3),
				zap.String("property", property),
				zap.Error(err))
			continue
		}
		if amount == 0 {
			continue
		}

		emissions = append(emissions, rowRef{
			unit:     curUnit,
			stream:   curStream,
			property: property,
			amount:   amount,
			rowNum:   i + 3,
		})
	}

	// Second pass: scale property amounts by the stream mass flow.
	var streams []domain.Stream
	for _, em := range emissions {
		g := groups[key(em.unit, em.stream)]
		if g == nil || !g.hasBase || !g.hasMass || g.massFlow == 0 {
			e.log.Warn("output stream missing mass flow or amount",
				zap.String("unit_process", em.unit),
				zap.String("stream", em.stream),
				zap.Int("row", em.rowNum))
			continue
		}

		streams = append(streams, domain.Stream{
			UnitProcess: em.unit,
			Name:        em.property,
			Amount:      em.amount / g.massFlow * g.amount,
			Unit:        g.unit,
			Direction:   domain.DirectionOutput,
		})
	}

	return streams, nil
}
