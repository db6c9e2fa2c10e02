package domain

import "testing"

func TestCategoriesSlice(t *testing.T) {
	tests := []struct {
		name string
		cats Categories
		want []string
	}{
		{
			name: "category only",
			cats: Categories{Category: "air"},
			want: []string{"air"},
		},
		{
			name: "category and subcategory",
			cats: Categories{Category: "air", Subcategory: "urban air close to ground"},
			want: []string{"air", "urban air close to ground"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cats.Slice()
			if len(got) != len(tt.want) {
				t.Fatalf("Slice() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Slice()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCategoriesRoundTrip(t *testing.T) {
	orig := Categories{Category: "water", Subcategory: "ground-"}
	got := CategoriesFromSlice(orig.Slice())
	if !got.Equal(orig) {
		t.Errorf("CategoriesFromSlice(Slice()) = %+v, want %+v", got, orig)
	}

	bare := CategoriesFromSlice([]string{"air"})
	if bare.Category != "air" || bare.Subcategory != "" {
		t.Errorf("CategoriesFromSlice([air]) = %+v", bare)
	}
}

func TestCategoriesEqual(t *testing.T) {
	a := Categories{Category: "air", Subcategory: "low population density"}
	b := Categories{Category: "air", Subcategory: "low population density"}
	c := Categories{Category: "air"}

	if !a.Equal(b) {
		t.Error("identical categories should be equal")
	}
	if a.Equal(c) {
		t.Error("categories with different subcategories should not be equal")
	}
}

func TestStreamClassified(t *testing.T) {
	s := &Stream{UnitProcess: "Reactor", Name: "Electricity", Amount: 1.5, Unit: "kWh"}
	if s.Classified() {
		t.Error("stream without flow type should not be classified")
	}
	s.Type = FlowTechnosphere
	if !s.Classified() {
		t.Error("stream with flow type should be classified")
	}
}
