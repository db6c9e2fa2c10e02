// Package export writes the converted inventories to a spreadsheet
// report.
//
// The layout follows the canonical LCI spreadsheet form: one block per
// activity with a header section (name, reference product, location,
// production amount) followed by its exchange rows.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"hsclci/internal/domain"
)

const sheetName = "Inventories"

// Writer exports inventories to spreadsheet files in a directory
type Writer struct {
	dir string
}

// NewWriter creates a writer. The directory is created on first write
// if it does not exist.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write exports the datasets of a database to
// <database>_<dd-mm-yyyy>.xlsx and returns the file path
func (w *Writer) Write(database string, datasets []*domain.Dataset) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("create style: %w", err)
	}

	row := 1
	writeRow := func(values ...interface{}) error {
		if len(values) == 0 {
			row++
			return nil
		}
		cellRef, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cellRef, &values); err != nil {
			return err
		}
		row++
		return nil
	}

	if err := writeRow("Database", database); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	row++

	for _, ds := range datasets {
		startRow := row
		if err := w.writeDataset(writeRow, ds); err != nil {
			return "", fmt.Errorf("write dataset %q: %w", ds.Name, err)
		}

		// Bold the activity line of each block.
		cellRef, err := excelize.CoordinatesToCellName(1, startRow)
		if err != nil {
			return "", err
		}
		endRef, err := excelize.CoordinatesToCellName(2, startRow)
		if err != nil {
			return "", err
		}
		if err := f.SetCellStyle(sheetName, cellRef, endRef, bold); err != nil {
			return "", fmt.Errorf("style activity row: %w", err)
		}
	}

	filename := fmt.Sprintf("%s_%s.xlsx", database, time.Now().Format("02-01-2006"))
	path := filepath.Join(w.dir, filename)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save export file: %w", err)
	}

	return path, nil
}

// writeDataset emits one activity block
func (w *Writer) writeDataset(writeRow func(...interface{}) error, ds *domain.Dataset) error {
	rows := [][]interface{}{
		{"Activity", ds.Name},
		{"reference product", ds.ReferenceProduct},
		{"location", ds.Location},
		{"production amount", ds.ProductionAmount},
		{"unit", ds.Unit},
		{"code", ds.Code},
	}
	if ds.Comment != "" {
		rows = append(rows, []interface{}{"comment", ds.Comment})
	}
	rows = append(rows,
		[]interface{}{"Exchanges"},
		[]interface{}{"name", "amount", "unit", "type", "product", "location", "categories", "database", "input code"},
	)

	for _, r := range rows {
		if err := writeRow(r...); err != nil {
			return err
		}
	}

	for _, exc := range ds.Exchanges {
		categories := ""
		if exc.Categories != nil {
			categories = exc.Categories.String()
		}
		inputCode := ""
		if exc.Input != nil {
			inputCode = exc.Input.Code
		}
		if err := writeRow(exc.Name, exc.Amount, exc.Unit, string(exc.Type),
			exc.Product, exc.Location, categories, exc.Database, inputCode); err != nil {
			return err
		}
	}

	// Blank row between activity blocks.
	return writeRow()
}
