package gas

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Storage holds one value per species. The key set is fixed by the
// array type: every species is present and nothing else can be.
type Storage [NumSpecies]float64

// Get returns the value stored for s.
func (st Storage) Get(s Species) float64 {
	return st[s]
}

// Total sums every species.
func (st Storage) Total() float64 {
	return floats.Sum(st[:])
}

// MarshalJSON encodes the storage as an object keyed by species name.
func (st Storage) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumSpecies)
	for i, v := range st {
		m[Species(i).String()] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by species name. Unknown names
// are an error; missing species stay zero.
func (st *Storage) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*st = Storage{}
	for name, v := range m {
		s, err := ParseSpecies(name)
		if err != nil {
			return err
		}
		st[s] = v
	}
	return nil
}

// Mixture is a quantity of gas at a single temperature.
type Mixture struct {
	Moles       Storage `json:"moles"`
	Temperature float64 `json:"temperature"`
}

// minimumHeatCapacity guards temperature averaging of near-empty mixes.
const minimumHeatCapacity = 0.0003

// TotalMoles returns the sum of all species.
func (m *Mixture) TotalMoles() float64 {
	return m.Moles.Total()
}

// HeatCapacity returns the mixture's total heat capacity.
func (m *Mixture) HeatCapacity() float64 {
	return floats.Dot(m.Moles[:], specificHeat[:])
}

// Remove takes fraction (clamped to [0,1]) of every species out of m and
// returns it as a new mixture at the same temperature.
func (m *Mixture) Remove(fraction float64) Mixture {
	fraction = math.Max(0, math.Min(1, fraction))
	out := Mixture{Temperature: m.Temperature}
	for i := range m.Moles {
		taken := m.Moles[i] * fraction
		out.Moles[i] = taken
		m.Moles[i] -= taken
	}
	return out
}

// Merge adds other into m, equalising temperature by heat capacity.
func (m *Mixture) Merge(other Mixture) {
	selfCap := m.HeatCapacity()
	otherCap := other.HeatCapacity()
	if combined := selfCap + otherCap; combined > minimumHeatCapacity {
		m.Temperature = (m.Temperature*selfCap + other.Temperature*otherCap) / combined
	}
	floats.Add(m.Moles[:], other.Moles[:])
}

// AdjustMoles adds amount (possibly negative) of s, never dropping below zero.
func (m *Mixture) AdjustMoles(s Species, amount float64) {
	m.Moles[s] = math.Max(0, m.Moles[s]+amount)
}

// Composition returns the mole fraction of each species. An empty
// mixture has an all-zero composition.
func (m *Mixture) Composition() Storage {
	var out Storage
	total := m.TotalMoles()
	if total <= 0 {
		return out
	}
	out = m.Moles
	floats.Scale(1/total, out[:])
	return out
}
