package components

import "github.com/pthm-cable/supermatter/gas"

// FieldDescriptor describes a component field for UI display.
type FieldDescriptor struct {
	ID           string  // Unique identifier
	Label        string  // Display name
	Format       string  // Printf format (e.g., "%.2f")
	Min          float64 // Minimum value (for bars)
	Max          float64 // Maximum value (for bars)
	IsBar        bool    // True to render as progress bar
	ShowWhenZero bool    // Show even when value is zero
	Group        string  // Logical grouping
}

// SupermatterFieldDescriptors returns metadata for Supermatter fields.
// Bar maxima come from the crystal's own thresholds.
func SupermatterFieldDescriptors(sm *Supermatter) []FieldDescriptor {
	th := sm.Thresholds
	return []FieldDescriptor{
		{ID: "integrity", Label: "Integrity", Format: "%.1f%%", Min: 0, Max: 100, IsBar: true, ShowWhenZero: true, Group: "core"},
		{ID: "power", Label: "Power", Format: "%.0f", Min: 0, Max: th.CriticalPowerPenalty, IsBar: true, ShowWhenZero: true, Group: "core"},
		{ID: "temperature", Label: "Temp", Format: "%.0fK", Min: 0, Max: gas.T0C + th.HeatPenalty*2, IsBar: true, ShowWhenZero: true, Group: "core"},
		{ID: "damage", Label: "Damage", Format: "%.1f", Min: 0, Max: th.DamageDelamination, IsBar: true, ShowWhenZero: true, Group: "core"},
		{ID: "moles", Label: "Moles", Format: "%.1f", Min: 0, Max: th.MolePenalty, IsBar: true, Group: "gas"},
		{ID: "matter_power", Label: "Matter", Format: "%.1f", Group: "gas"},
		{ID: "inhibitor", Label: "Inhibitor", Format: "%.2f", Min: 0, Max: 1, IsBar: true, ShowWhenZero: true, Group: "gas"},
		{ID: "heat_resistance", Label: "Heat Res", Format: "%.2f", Group: "gas"},
		{ID: "waste", Label: "Waste", Format: "%.2f", Group: "gas"},
	}
}

// SupermatterGroups returns the logical groupings for supermatter fields.
func SupermatterGroups() []string {
	return []string{"core", "gas"}
}

// GetSupermatterValue extracts a supermatter field value by ID.
func GetSupermatterValue(sm *Supermatter, fieldID string) float64 {
	switch fieldID {
	case "integrity":
		return sm.Integrity()
	case "power":
		return sm.Power
	case "temperature":
		return sm.Temperature
	case "damage":
		return sm.Damage
	case "moles":
		return sm.GasStorage.Total()
	case "matter_power":
		return sm.MatterPower
	case "inhibitor":
		return sm.PowerlossInhibitor
	case "heat_resistance":
		return sm.DynamicHeatResistance
	case "waste":
		return sm.WasteMultiplier
	default:
		return 0
	}
}
