// Package gas defines the tracked gas species, their interaction
// coefficients with the supermatter crystal, and simple gas mixtures.
package gas

import (
	"fmt"
	"strings"
)

// Species identifies a simulated gas type.
type Species uint8

const (
	Oxygen Species = iota
	Nitrogen
	CarbonDioxide
	Plasma
	Tritium
	WaterVapor
	Frezon
	Ammonia
	NitrousOxide

	// NumSpecies is the size of the fixed species set.
	NumSpecies = int(NitrousOxide) + 1
)

var speciesNames = [NumSpecies]string{
	"oxygen",
	"nitrogen",
	"carbon_dioxide",
	"plasma",
	"tritium",
	"water_vapor",
	"frezon",
	"ammonia",
	"nitrous_oxide",
}

// All returns every species in declaration order.
func All() []Species {
	out := make([]Species, NumSpecies)
	for i := range out {
		out[i] = Species(i)
	}
	return out
}

// String returns the snake_case name used in config files and telemetry.
func (s Species) String() string {
	if int(s) >= NumSpecies {
		return fmt.Sprintf("species(%d)", uint8(s))
	}
	return speciesNames[s]
}

// ParseSpecies resolves a config name (case-insensitive) to a species.
func ParseSpecies(name string) (Species, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range speciesNames {
		if candidate == n {
			return Species(i), nil
		}
	}
	return 0, fmt.Errorf("unknown gas species %q", name)
}

// Atmospheric constants shared with the reactor model.
const (
	T0C  = 273.15   // 0 degrees Celsius in Kelvin
	TCMB = 2.7      // cosmic microwave background temperature
	TMax = 262144.0 // hard upper bound on gas temperature
)

// specificHeat is the molar heat capacity of each species (J/(mol*K)).
var specificHeat = [NumSpecies]float64{
	Oxygen:        20,
	Nitrogen:      30,
	CarbonDioxide: 30,
	Plasma:        200,
	Tritium:       10,
	WaterVapor:    40,
	Frezon:        600,
	Ammonia:       20,
	NitrousOxide:  40,
}
