package gas

import (
	"encoding/json"
	"math"
	"testing"
)

func TestDefaultTable_OneEntryPerSpecies(t *testing.T) {
	table := DefaultTable()
	if table.Len() != NumSpecies {
		t.Fatalf("table has %d entries, want %d", table.Len(), NumSpecies)
	}
	if len(All()) != NumSpecies {
		t.Fatalf("All() returned %d species, want %d", len(All()), NumSpecies)
	}

	// Spot-check a few coefficients against the stock values.
	if f := table.Fact(Tritium); f.TransmitModifier != 30 || f.HeatPenalty != 10 {
		t.Errorf("tritium fact = %+v", f)
	}
	if f := table.Fact(NitrousOxide); f.HeatResistance != 6 || f.PowerMixRatio != -1 {
		t.Errorf("nitrous oxide fact = %+v", f)
	}
}

func TestTable_IsImmutableByValue(t *testing.T) {
	base := DefaultTable()
	changed := base.WithOverrides(map[Species]Fact{Plasma: {HeatPenalty: 99}})

	if base.Fact(Plasma).HeatPenalty != 15 {
		t.Errorf("base table mutated: %+v", base.Fact(Plasma))
	}
	if changed.Fact(Plasma).HeatPenalty != 99 {
		t.Errorf("override not applied: %+v", changed.Fact(Plasma))
	}
}

func TestTable_Weighted(t *testing.T) {
	table := DefaultTable()

	var comp Storage
	comp[Oxygen] = 0.5
	comp[Nitrogen] = 0.5

	w := table.Weighted(comp)
	if math.Abs(w.PowerMixRatio-0) > 1e-9 {
		t.Errorf("power mix = %v, want 0", w.PowerMixRatio)
	}
	if math.Abs(w.HeatPenalty-(-0.25)) > 1e-9 {
		t.Errorf("heat penalty = %v, want -0.25", w.HeatPenalty)
	}
	if math.Abs(w.TransmitModifier-0.75) > 1e-9 {
		t.Errorf("transmit = %v, want 0.75", w.TransmitModifier)
	}
}

func TestParseSpecies(t *testing.T) {
	for _, s := range All() {
		got, err := ParseSpecies(s.String())
		if err != nil {
			t.Fatalf("ParseSpecies(%q): %v", s.String(), err)
		}
		if got != s {
			t.Errorf("ParseSpecies(%q) = %v", s.String(), got)
		}
	}
	if _, err := ParseSpecies("helium"); err == nil {
		t.Error("expected error for unknown species")
	}
}

func TestMixture_RemoveAndMerge(t *testing.T) {
	m := Mixture{Temperature: 300}
	m.Moles[Oxygen] = 80
	m.Moles[Nitrogen] = 20

	taken := m.Remove(0.25)
	if math.Abs(taken.TotalMoles()-25) > 1e-9 {
		t.Errorf("removed %v moles, want 25", taken.TotalMoles())
	}
	if math.Abs(m.TotalMoles()-75) > 1e-9 {
		t.Errorf("remaining %v moles, want 75", m.TotalMoles())
	}
	if taken.Temperature != 300 {
		t.Errorf("removed gas temperature = %v", taken.Temperature)
	}

	taken.Temperature = 600
	m.Merge(taken)
	if math.Abs(m.TotalMoles()-100) > 1e-9 {
		t.Errorf("merged total = %v, want 100", m.TotalMoles())
	}
	if m.Temperature <= 300 || m.Temperature >= 600 {
		t.Errorf("merged temperature %v should lie between inputs", m.Temperature)
	}
}

func TestMixture_RemoveClampsFraction(t *testing.T) {
	m := Mixture{}
	m.Moles[Plasma] = 10

	taken := m.Remove(2)
	if taken.Moles[Plasma] != 10 || m.Moles[Plasma] != 0 {
		t.Errorf("taken=%v left=%v", taken.Moles[Plasma], m.Moles[Plasma])
	}
}

func TestMixture_AdjustMolesNeverNegative(t *testing.T) {
	m := Mixture{}
	m.AdjustMoles(Oxygen, 5)
	m.AdjustMoles(Oxygen, -10)
	if m.Moles[Oxygen] != 0 {
		t.Errorf("oxygen = %v, want 0", m.Moles[Oxygen])
	}
}

func TestMixture_Composition(t *testing.T) {
	empty := Mixture{}
	if empty.Composition().Total() != 0 {
		t.Error("empty mixture should have zero composition")
	}

	m := Mixture{}
	m.Moles[CarbonDioxide] = 30
	m.Moles[Oxygen] = 10
	c := m.Composition()
	if math.Abs(c[CarbonDioxide]-0.75) > 1e-9 {
		t.Errorf("co2 fraction = %v", c[CarbonDioxide])
	}
	if math.Abs(c.Total()-1) > 1e-9 {
		t.Errorf("fractions sum to %v", c.Total())
	}
	// Composition must not alias the mixture.
	if m.Moles[CarbonDioxide] != 30 {
		t.Error("composition mutated source mixture")
	}
}

func TestStorage_MarshalJSON(t *testing.T) {
	var st Storage
	st[Tritium] = 2.5

	data, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]float64
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != NumSpecies {
		t.Errorf("encoded %d keys, want %d", len(decoded), NumSpecies)
	}
	if decoded["tritium"] != 2.5 {
		t.Errorf("tritium = %v", decoded["tritium"])
	}
}
