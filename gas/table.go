package gas

import "gonum.org/v1/gonum/floats"

// Fact holds how one gas species interacts with the crystal.
type Fact struct {
	TransmitModifier float64 `yaml:"transmit_modifier" json:"transmit_modifier"`
	HeatPenalty      float64 `yaml:"heat_penalty" json:"heat_penalty"`
	PowerMixRatio    float64 `yaml:"power_mix_ratio" json:"power_mix_ratio"`
	HeatResistance   float64 `yaml:"heat_resistance" json:"heat_resistance"`
}

// Table is the immutable gas interaction table. It is passed by value;
// there is no way to change an entry after construction.
type Table struct {
	facts [NumSpecies]Fact

	// Column vectors for composition-weighted sums.
	transmit   [NumSpecies]float64
	heat       [NumSpecies]float64
	powerMix   [NumSpecies]float64
	resistance [NumSpecies]float64
}

// defaultFacts are the stock coefficients of the crystal.
var defaultFacts = [NumSpecies]Fact{
	Oxygen:        {TransmitModifier: 1.5, HeatPenalty: 1, PowerMixRatio: 1, HeatResistance: 1},
	Nitrogen:      {TransmitModifier: 0, HeatPenalty: -1.5, PowerMixRatio: -1, HeatResistance: 1},
	CarbonDioxide: {TransmitModifier: 0, HeatPenalty: 0.1, PowerMixRatio: 1, HeatResistance: 1},
	Plasma:        {TransmitModifier: 4, HeatPenalty: 15, PowerMixRatio: 1, HeatResistance: 1},
	Tritium:       {TransmitModifier: 30, HeatPenalty: 10, PowerMixRatio: 1, HeatResistance: 1},
	WaterVapor:    {TransmitModifier: 2, HeatPenalty: 12, PowerMixRatio: 1, HeatResistance: 1},
	Frezon:        {TransmitModifier: 0, HeatPenalty: -10, PowerMixRatio: -1, HeatResistance: 1},
	Ammonia:       {TransmitModifier: 0, HeatPenalty: 0.5, PowerMixRatio: 1, HeatResistance: 1},
	NitrousOxide:  {TransmitModifier: 0, HeatPenalty: -5, PowerMixRatio: -1, HeatResistance: 6},
}

// DefaultTable returns the stock interaction table.
func DefaultTable() Table {
	return NewTable(defaultFacts)
}

// NewTable builds a table from one fact per species.
func NewTable(facts [NumSpecies]Fact) Table {
	t := Table{facts: facts}
	for i, f := range facts {
		t.transmit[i] = f.TransmitModifier
		t.heat[i] = f.HeatPenalty
		t.powerMix[i] = f.PowerMixRatio
		t.resistance[i] = f.HeatResistance
	}
	return t
}

// WithOverrides returns a copy of t with the given species replaced.
func (t Table) WithOverrides(overrides map[Species]Fact) Table {
	facts := t.facts
	for s, f := range overrides {
		if int(s) < NumSpecies {
			facts[s] = f
		}
	}
	return NewTable(facts)
}

// Fact returns the coefficients for one species.
func (t Table) Fact(s Species) Fact {
	return t.facts[s]
}

// Len is always NumSpecies.
func (t Table) Len() int {
	return len(t.facts)
}

// Weighted returns the composition-weighted sum of every coefficient.
// composition holds mole fractions indexed by species.
func (t Table) Weighted(composition Storage) Fact {
	c := composition[:]
	return Fact{
		TransmitModifier: floats.Dot(c, t.transmit[:]),
		HeatPenalty:      floats.Dot(c, t.heat[:]),
		PowerMixRatio:    floats.Dot(c, t.powerMix[:]),
		HeatResistance:   floats.Dot(c, t.resistance[:]),
	}
}
