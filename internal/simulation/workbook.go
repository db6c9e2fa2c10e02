package simulation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"hsclci/internal/domain"
)

// Sheet names in an HSC Chemistry results workbook
const (
	SheetInputStreams  = "Input Streams"
	SheetOutputStreams = "Output Streams"
)

// Column labels in a stream sheet. HSC leaves the stream property
// columns unnamed; they are identified by position instead.
const (
	colUnitName             = "unit name"
	colStreamName           = "stream name"
	colStreamProperties     = "stream properties"
	colStreamPropertyAmount = "stream property amount"
	colAmount               = "amount"
	colUnit                 = "unit"
)

// Positions of the unnamed stream property columns in the header row
const (
	posStreamProperties     = 1
	posStreamPropertyAmount = 4
)

// The stream property row carrying the total mass of a stream
const propertyMassFlow = "Mass Flow"

// sheetRows reads a worksheet and returns its header column index and
// data rows. HSC workbooks carry a banner row above the real header, so
// the header is the second row and data starts at the third.
func sheetRows(f *excelize.File, sheet string) (map[string]int, [][]string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("locate sheet %q: %w", sheet, err)
	}
	if idx < 0 {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 3 {
		return nil, nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	cols := indexHeader(rows[1])
	for _, required := range []string{colUnitName, colStreamName, colAmount, colUnit} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("sheet %q missing column %q", sheet, required)
		}
	}

	return cols, rows[2:], nil
}

// indexHeader maps lower-cased header labels to column positions and
// assigns the positional names of the unnamed property columns
func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			cols[h] = i
			continue
		}
		switch i {
		case posStreamProperties:
			cols[colStreamProperties] = i
		case posStreamPropertyAmount:
			cols[colStreamPropertyAmount] = i
		}
	}
	return cols
}

// cell returns the trimmed value at a column, or "" when the row is
// shorter than the header
func cell(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseAmount parses a numeric cell. HSC exports use a comma decimal
// separator depending on locale, so commas are normalized first.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}
