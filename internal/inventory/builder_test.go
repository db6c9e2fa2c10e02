package inventory

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"hsclci/internal/domain"
	"hsclci/internal/mapping"
	"hsclci/internal/refdata"
)

func writeMappingFile(t *testing.T, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"Stream", "Name", "Reference product", "LCI flow type", "Category", "Subcategory"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("failed to build cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cellRef, &values); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "mapping.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save mapping file: %v", err)
	}
	return path
}

func testTable(t *testing.T) *mapping.Table {
	t.Helper()
	table, err := mapping.Load(writeMappingFile(t, [][]string{
		{"Electricity", "market for electricity, medium voltage", "electricity, medium voltage", "technosphere", "", ""},
		{"CO2", "Carbon dioxide, fossil", "", "biosphere", "air", ""},
	}))
	if err != nil {
		t.Fatalf("failed to load mapping: %v", err)
	}
	return table
}

func sourceDatasets() []*domain.Dataset {
	mk := func(name, product, loc, unit string) *domain.Dataset {
		return &domain.Dataset{
			Name:             name,
			ReferenceProduct: product,
			Location:         loc,
			Unit:             unit,
			Database:         "ecoinvent-test",
			Code:             domain.NewCode(),
		}
	}
	return []*domain.Dataset{
		mk("market for electricity, medium voltage", "electricity, medium voltage", "RER", "kilowatt hour"),
		mk("market group for electricity, medium voltage", "electricity, medium voltage", "GLO", "kilowatt hour"),
	}
}

func newTestBuilder(t *testing.T, source []*domain.Dataset) *Builder {
	t.Helper()

	converter, err := refdata.NewUnitConverter()
	if err != nil {
		t.Fatalf("failed to build unit converter: %v", err)
	}
	geo, err := refdata.LoadGeography()
	if err != nil {
		t.Fatalf("failed to load geography: %v", err)
	}

	return New(testTable(t), converter, geo, source, "ecoinvent-test", "biosphere3", nil)
}

func testSpec() Spec {
	return Spec{
		Database:         "hydrogen_lci",
		ActivityName:     "hydrogen production",
		ReferenceProduct: "hydrogen",
		Location:         "CH",
		Comment:          "from simulation",
	}
}

func testStreams() []domain.Stream {
	return []domain.Stream{
		{UnitProcess: "Reactor", Name: "Electricity", Amount: 2, Unit: "kWh", Direction: domain.DirectionInput},
		{UnitProcess: "Reactor", Name: "CO2", Amount: 1.5, Unit: "kg", Direction: domain.DirectionOutput},
		{UnitProcess: "Separator", Name: "Electricity", Amount: 0.5, Unit: "kWh", Direction: domain.DirectionInput},
	}
}

func TestBuild(t *testing.T) {
	b := newTestBuilder(t, sourceDatasets())

	datasets, stats, err := b.Build(testSpec(), testStreams())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// Two unit processes plus the global activity.
	if len(datasets) != 3 {
		t.Fatalf("got %d datasets, want 3", len(datasets))
	}
	if stats.UnitProcesses != 2 {
		t.Errorf("UnitProcesses = %d, want 2", stats.UnitProcesses)
	}
	if stats.Unmapped != 0 {
		t.Errorf("Unmapped = %d, want 0", stats.Unmapped)
	}

	reactor := datasets[0]
	if reactor.Name != "hydrogen production, Reactor" {
		t.Errorf("dataset name = %q", reactor.Name)
	}
	if reactor.ReferenceProduct != "hydrogen, Reactor" {
		t.Errorf("reference product = %q", reactor.ReferenceProduct)
	}
	if reactor.ProductionAmount != 1 || reactor.Unit != "unit" {
		t.Errorf("production = %v %s, want 1 unit", reactor.ProductionAmount, reactor.Unit)
	}

	// Production exchange comes first and is linked.
	if reactor.Exchanges[0].Type != domain.FlowProduction {
		t.Errorf("first exchange type = %s, want production", reactor.Exchanges[0].Type)
	}
	if !reactor.Exchanges[0].Linked() {
		t.Error("production exchange should be linked")
	}
}

func TestBuildResolvesSupplierByGeography(t *testing.T) {
	b := newTestBuilder(t, sourceDatasets())

	datasets, _, err := b.Build(testSpec(), testStreams())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// No CH dataset exists, so the RER market should be picked over the
	// GLO market group.
	reactor := datasets[0]
	var elec *domain.Exchange
	for _, exc := range reactor.Exchanges {
		if exc.Type == domain.FlowTechnosphere {
			elec = exc
		}
	}
	if elec == nil {
		t.Fatal("missing technosphere exchange")
	}
	if elec.Location != "RER" {
		t.Errorf("supplier location = %q, want RER", elec.Location)
	}
	if elec.Unit != "kilowatt hour" {
		t.Errorf("unit = %q, want kilowatt hour", elec.Unit)
	}
	if elec.Amount != 2 {
		t.Errorf("amount = %v, want 2", elec.Amount)
	}
}

func TestBuildMarketGroupFallback(t *testing.T) {
	// Only the market group exists; the "market for" filter should
	// still find it.
	source := sourceDatasets()[1:]
	b := newTestBuilder(t, source)

	datasets, _, err := b.Build(testSpec(), testStreams())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	var elec *domain.Exchange
	for _, exc := range datasets[0].Exchanges {
		if exc.Type == domain.FlowTechnosphere {
			elec = exc
		}
	}
	if elec == nil {
		t.Fatal("missing technosphere exchange")
	}
	if !strings.HasPrefix(elec.Name, "market group for") {
		t.Errorf("name = %q, want market group variant", elec.Name)
	}
	if elec.Location != "GLO" {
		t.Errorf("location = %q, want GLO", elec.Location)
	}
}

func TestBuildUnmappedStreamsDropped(t *testing.T) {
	b := newTestBuilder(t, sourceDatasets())

	streams := append(testStreams(), domain.Stream{
		UnitProcess: "Reactor", Name: "Unobtainium", Amount: 1, Unit: "kg",
	})
	datasets, stats, err := b.Build(testSpec(), streams)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if stats.Unmapped != 1 {
		t.Errorf("Unmapped = %d, want 1", stats.Unmapped)
	}
	for _, ds := range datasets {
		for _, exc := range ds.Exchanges {
			if exc.Name == "Unobtainium" {
				t.Error("unmapped stream should not produce an exchange")
			}
		}
	}
}

func TestBuildBiosphereExchange(t *testing.T) {
	b := newTestBuilder(t, sourceDatasets())

	datasets, _, err := b.Build(testSpec(), testStreams())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	var co2 *domain.Exchange
	for _, exc := range datasets[0].Exchanges {
		if exc.Type == domain.FlowBiosphere {
			co2 = exc
		}
	}
	if co2 == nil {
		t.Fatal("missing biosphere exchange")
	}
	if co2.Name != "Carbon dioxide, fossil" {
		t.Errorf("name = %q", co2.Name)
	}
	if co2.Categories == nil || co2.Categories.Category != "air" {
		t.Errorf("categories = %+v, want air", co2.Categories)
	}
	if co2.Database != "biosphere3" {
		t.Errorf("database = %q, want biosphere3", co2.Database)
	}
	if co2.Unit != "kilogram" {
		t.Errorf("unit = %q, want kilogram", co2.Unit)
	}
}

func TestBuildGlobalActivity(t *testing.T) {
	b := newTestBuilder(t, sourceDatasets())

	datasets, _, err := b.Build(testSpec(), testStreams())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	global := datasets[len(datasets)-1]
	if global.Name != "hydrogen production" {
		t.Errorf("global activity name = %q", global.Name)
	}

	// Production exchange plus one input per unit process.
	if len(global.Exchanges) != 3 {
		t.Fatalf("global activity has %d exchanges, want 3", len(global.Exchanges))
	}
	for _, exc := range global.Exchanges[1:] {
		if exc.Type != domain.FlowTechnosphere {
			t.Errorf("exchange type = %s, want technosphere", exc.Type)
		}
		if exc.Amount != 1 || exc.Unit != "unit" {
			t.Errorf("exchange = %v %s, want 1 unit", exc.Amount, exc.Unit)
		}
		if exc.Database != "hydrogen_lci" {
			t.Errorf("exchange database = %q, want hydrogen_lci", exc.Database)
		}
	}
}
