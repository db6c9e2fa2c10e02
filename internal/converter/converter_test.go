package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"hsclci/internal/domain"
	"hsclci/internal/repository/sqlite"
	"hsclci/internal/simulation"
)

// fixture builds a complete conversion setup in a temp dir: a seeded
// LCI store, a mapping workbook, a simulation workbook, and the
// metadata file tying them together.
type fixture struct {
	dir        string
	configPath string
	storePath  string
	exportDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	fx := &fixture{
		dir:        dir,
		configPath: filepath.Join(dir, "metadata.yaml"),
		storePath:  filepath.Join(dir, "lci.db"),
		exportDir:  filepath.Join(dir, "export"),
	}

	fx.seedStore(t)
	mappingPath := fx.writeMapping(t)
	simulationPath := fx.writeSimulation(t)

	metadata := fmt.Sprintf(`
system:
  database: hydrogen_lci
  activity_name: hydrogen production
  reference_product: hydrogen
  location: CH
  comment: from HSC simulation
project:
  store_path: %s
  source_database: ecoinvent-test
inputs:
  simulation_file: %s
  mapping_file: %s
export:
  dir: %s
`, fx.storePath, simulationPath, mappingPath, fx.exportDir)

	if err := os.WriteFile(fx.configPath, []byte(metadata), 0644); err != nil {
		t.Fatalf("failed to write metadata: %v", err)
	}

	return fx
}

func (fx *fixture) seedStore(t *testing.T) {
	t.Helper()

	store, err := sqlite.Open(fx.storePath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	mk := func(name, product, loc, unit string) *domain.Dataset {
		return &domain.Dataset{
			Name:             name,
			ReferenceProduct: product,
			Location:         loc,
			Unit:             unit,
			ProductionAmount: 1,
			Database:         "ecoinvent-test",
			Code:             domain.NewCode(),
		}
	}
	source := []*domain.Dataset{
		mk("market for electricity, medium voltage", "electricity, medium voltage", "RER", "kilowatt hour"),
		mk("market for natural gas, high pressure", "natural gas, high pressure", "RER", "cubic meter"),
	}
	if err := store.WriteDatabase(ctx, "ecoinvent-test", source); err != nil {
		t.Fatalf("failed to seed source database: %v", err)
	}

	flows := []domain.BiosphereFlow{
		{
			Name:       "Carbon dioxide, fossil",
			Unit:       "kilogram",
			Categories: domain.Categories{Category: "air"},
			Code:       "co2-air",
		},
	}
	if err := store.ImportBiosphere(ctx, "biosphere3", flows); err != nil {
		t.Fatalf("failed to seed biosphere database: %v", err)
	}
}

func (fx *fixture) writeMapping(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"Stream", "Name", "Reference product", "LCI flow type", "Category", "Subcategory"},
		{"Electricity", "market for electricity, medium voltage", "electricity, medium voltage", "technosphere", "", ""},
		{"Natural Gas", "market for natural gas, high pressure", "natural gas, high pressure", "technosphere", "", ""},
		{"CO2", "Carbon dioxide, fossil", "", "biosphere", "air", ""},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("failed to build cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cellRef, &r); err != nil {
			t.Fatalf("failed to write mapping row: %v", err)
		}
	}

	path := filepath.Join(fx.dir, "mapping.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save mapping file: %v", err)
	}
	return path
}

func (fx *fixture) writeSimulation(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"Unit Name", "", "Stream Name", "Amount", "", "Unit"}
	writeSheet := func(sheet string, rows [][]interface{}) {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("failed to create sheet: %v", err)
		}
		banner := []interface{}{sheet}
		if err := f.SetSheetRow(sheet, "A1", &banner); err != nil {
			t.Fatalf("failed to write banner: %v", err)
		}
		if err := f.SetSheetRow(sheet, "A2", &header); err != nil {
			t.Fatalf("failed to write header: %v", err)
		}
		for i, row := range rows {
			cellRef, err := excelize.CoordinatesToCellName(1, i+3)
			if err != nil {
				t.Fatalf("failed to build cell name: %v", err)
			}
			r := row
			if err := f.SetSheetRow(sheet, cellRef, &r); err != nil {
				t.Fatalf("failed to write row: %v", err)
			}
		}
	}

	writeSheet(simulation.SheetInputStreams, [][]interface{}{
		{"Reactor", "", "Electricity", "2", "", "kWh"},
		{"Reactor", "", "Natural Gas", "3", "", "kg"},
		{"Separator", "", "Electricity", "0,5", "", "kWh"},
	})
	writeSheet(simulation.SheetOutputStreams, [][]interface{}{
		{"Reactor", "", "Flue Gas", "100", "", "kg"},
		{"", "Mass Flow", "", "", "100", ""},
		{"", "CO2", "", "", "25", ""},
	})
	f.DeleteSheet("Sheet1")

	path := filepath.Join(fx.dir, "results.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save simulation file: %v", err)
	}
	return path
}

func TestNewMissingReferenceDatabase(t *testing.T) {
	fx := newFixture(t)

	// Point the metadata at a source database that does not exist.
	data, err := os.ReadFile(fx.configPath)
	if err != nil {
		t.Fatalf("failed to read metadata: %v", err)
	}
	broken := strings.Replace(string(data), "ecoinvent-test", "ecoinvent-missing", 1)
	brokenPath := filepath.Join(fx.dir, "broken.yaml")
	if err := os.WriteFile(brokenPath, []byte(broken), 0644); err != nil {
		t.Fatalf("failed to write metadata: %v", err)
	}

	if _, err := New(brokenPath); err == nil {
		t.Error("expected error for missing source database")
	}
}

func TestConvert(t *testing.T) {
	fx := newFixture(t)

	c, err := New(fx.configPath)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer c.Close()

	report, err := c.Convert(context.Background())
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	// Two unit processes plus the global activity.
	if report.Datasets != 3 {
		t.Errorf("Datasets = %d, want 3", report.Datasets)
	}
	// Reactor: production + electricity + natural gas + CO2 = 4.
	// Separator: production + electricity = 2.
	// Global: production + 2 unit processes = 3.
	if report.Exchanges != 9 {
		t.Errorf("Exchanges = %d, want 9", report.Exchanges)
	}
	if report.Unlinked != 0 {
		t.Errorf("Unlinked = %d, want 0", report.Unlinked)
	}
	if report.Unmapped != 0 {
		t.Errorf("Unmapped = %d, want 0", report.Unmapped)
	}

	if _, err := os.Stat(report.ExportPath); err != nil {
		t.Errorf("export file should exist: %v", err)
	}

	want := "hydrogen_lci: 3 datasets, 9 exchanges, 0 unlinked"
	if got := report.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestConvertWritesDatabase(t *testing.T) {
	fx := newFixture(t)

	c, err := New(fx.configPath)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, err := c.Convert(context.Background()); err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	c.Close()

	store, err := sqlite.Open(fx.storePath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	count, err := store.CountDatasets(ctx, "hydrogen_lci")
	if err != nil {
		t.Fatalf("CountDatasets() error: %v", err)
	}
	if count != 3 {
		t.Errorf("store has %d datasets, want 3", count)
	}

	excCount, err := store.CountExchanges(ctx, "hydrogen_lci")
	if err != nil {
		t.Fatalf("CountExchanges() error: %v", err)
	}
	if excCount != 9 {
		t.Errorf("store has %d exchanges, want 9", excCount)
	}
}

func TestConvertIdempotent(t *testing.T) {
	fx := newFixture(t)

	c, err := New(fx.configPath)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	first, err := c.Convert(ctx)
	if err != nil {
		t.Fatalf("first Convert() error: %v", err)
	}
	second, err := c.Convert(ctx)
	if err != nil {
		t.Fatalf("second Convert() error: %v", err)
	}

	if first.Datasets != second.Datasets || first.Exchanges != second.Exchanges {
		t.Errorf("rerun changed counts: %+v vs %+v", first, second)
	}
}

func TestValidate(t *testing.T) {
	fx := newFixture(t)

	c, err := New(fx.configPath)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer c.Close()

	v, err := c.Validate(context.Background())
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	if v.MappedStreams != 3 {
		t.Errorf("MappedStreams = %d, want 3", v.MappedStreams)
	}
	if v.ExtractedStreams != 4 {
		t.Errorf("ExtractedStreams = %d, want 4", v.ExtractedStreams)
	}
	if len(v.Unmapped) != 0 {
		t.Errorf("Unmapped = %v, want none", v.Unmapped)
	}
}

func TestDump(t *testing.T) {
	fx := newFixture(t)

	c, err := New(fx.configPath)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Convert(ctx); err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	var buf strings.Builder
	if err := c.Dump(ctx, "hydrogen_lci", "json", &buf); err != nil {
		t.Fatalf("Dump() error: %v", err)
	}
	for _, want := range []string{`"database": "hydrogen_lci"`, `"reference product"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("dump output missing %s", want)
		}
	}

	if err := c.Dump(ctx, "hydrogen_lci", "xml", &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestListDatabases(t *testing.T) {
	fx := newFixture(t)

	c, err := New(fx.configPath)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer c.Close()

	names, err := c.ListDatabases(context.Background())
	if err != nil {
		t.Fatalf("ListDatabases() error: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("ListDatabases = %v, want the two reference databases", names)
	}
}
