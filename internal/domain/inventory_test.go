package domain

import "testing"

func TestNewDataset(t *testing.T) {
	ds := NewDataset("hydrogen production, Reactor", "hydrogen, Reactor", "CH", "test_db", "from simulation")

	if ds.Code == "" {
		t.Error("expected a generated code")
	}
	if ds.ProductionAmount != 1 {
		t.Errorf("ProductionAmount = %v, want 1", ds.ProductionAmount)
	}
	if ds.Unit != "unit" {
		t.Errorf("Unit = %q, want \"unit\"", ds.Unit)
	}

	other := NewDataset("a", "b", "CH", "test_db", "")
	if other.Code == ds.Code {
		t.Error("codes should be unique per dataset")
	}
}

func TestProductionExchange(t *testing.T) {
	ds := NewDataset("activity", "product", "RER", "test_db", "")
	exc := ds.ProductionExchange()

	if exc.Type != FlowProduction {
		t.Errorf("Type = %s, want %s", exc.Type, FlowProduction)
	}
	if !exc.Linked() {
		t.Fatal("production exchange should be linked to its own dataset")
	}
	if exc.Input.Database != "test_db" || exc.Input.Code != ds.Code {
		t.Errorf("Input = %+v, want (%s, %s)", exc.Input, "test_db", ds.Code)
	}
	if exc.Amount != ds.ProductionAmount {
		t.Errorf("Amount = %v, want %v", exc.Amount, ds.ProductionAmount)
	}
}

func TestUnlinkedCount(t *testing.T) {
	ds := NewDataset("activity", "product", "RER", "test_db", "")
	ds.AddExchange(ds.ProductionExchange())
	ds.AddExchange(&Exchange{Name: "electricity", Type: FlowTechnosphere})
	ds.AddExchange(&Exchange{Name: "Carbon dioxide", Type: FlowBiosphere})

	if got := ds.UnlinkedCount(); got != 2 {
		t.Errorf("UnlinkedCount() = %d, want 2", got)
	}
}
