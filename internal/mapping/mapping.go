// Package mapping loads the stream-to-LCI flow mapping workbook.
//
// The mapping workbook has one row per simulation stream name and
// columns for the target flow name, reference product, flow type
// (technosphere or biosphere), and the environmental category and
// subcategory for biosphere flows.
package mapping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"hsclci/internal/domain"
)

// FlowMapping describes how one simulation stream maps onto an LCI flow
type FlowMapping struct {
	Stream           string
	Name             string
	ReferenceProduct string
	Type             domain.FlowType
	Category         string
	Subcategory      string
}

// Categories returns the environmental compartment for a biosphere flow
func (m FlowMapping) Categories() domain.Categories {
	return domain.Categories{Category: m.Category, Subcategory: m.Subcategory}
}

// Table indexes flow mappings by simulation stream name
type Table struct {
	flows map[string]FlowMapping
}

// Expected column headers in the mapping workbook
const (
	colStream           = "stream"
	colName             = "name"
	colReferenceProduct = "reference product"
	colFlowType         = "lci flow type"
	colCategory         = "category"
	colSubcategory      = "subcategory"
)

// Load reads the mapping workbook's first sheet into a Table.
// Duplicated stream names are an error: a stream must map onto exactly
// one LCI flow.
func Load(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("mapping file %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read mapping sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("mapping sheet %s is empty", sheets[0])
	}

	cols := indexColumns(rows[0])
	for _, required := range []string{colStream, colName, colFlowType} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("mapping sheet missing column %q", required)
		}
	}

	flows := make(map[string]FlowMapping)
	var duplicates []string

	for _, row := range rows[1:] {
		stream := cell(row, colIdx(cols, colStream))
		if stream == "" {
			continue
		}

		if _, exists := flows[stream]; exists {
			duplicates = append(duplicates, stream)
			continue
		}

		flows[stream] = FlowMapping{
			Stream:           stream,
			Name:             cell(row, colIdx(cols, colName)),
			ReferenceProduct: cell(row, colIdx(cols, colReferenceProduct)),
			Type:             domain.FlowType(strings.ToLower(cell(row, colIdx(cols, colFlowType)))),
			Category:         cell(row, colIdx(cols, colCategory)),
			Subcategory:      cell(row, colIdx(cols, colSubcategory)),
		}
	}

	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateStream, strings.Join(duplicates, ", "))
	}

	return &Table{flows: flows}, nil
}

// Lookup returns the mapping for a stream name
func (t *Table) Lookup(stream string) (FlowMapping, bool) {
	m, ok := t.flows[stream]
	return m, ok
}

// Classify assigns the mapped flow type to a stream in place.
// Returns false if the stream has no mapping.
func (t *Table) Classify(s *domain.Stream) bool {
	m, ok := t.flows[s.Name]
	if !ok {
		return false
	}
	s.Type = m.Type
	return true
}

// BiosphereAirFlows returns the stream names mapped as biosphere flows
// in the "air" compartment. These are the stream properties the output
// sheet reports as emissions.
func (t *Table) BiosphereAirFlows() map[string]bool {
	air := make(map[string]bool)
	for name, m := range t.flows {
		if m.Type == domain.FlowBiosphere && strings.EqualFold(m.Category, "air") {
			air[name] = true
		}
	}
	return air
}

// Len returns the number of mapped streams
func (t *Table) Len() int {
	return len(t.flows)
}

// indexColumns maps lower-cased header names to column positions
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			cols[h] = i
		}
	}
	return cols
}

// colIdx returns the position of a named column, or -1 when absent
func colIdx(cols map[string]int, name string) int {
	if i, ok := cols[name]; ok {
		return i
	}
	return -1
}

// cell returns the trimmed value at a column position, or "" when the
// row is shorter than the header
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
