package systems

import "slices"

// SystemInfo describes a simulation system for UI display.
type SystemInfo struct {
	ID          string // Perf timing key
	Name        string
	Description string
	Category    string // "environment", "reactor", "monument" or "internal"
}

// tickOrder lists the systems in the order a tick runs them.
var tickOrder = []SystemInfo{
	{ID: "atmosphere", Name: "Atmosphere", Description: "Exchanges reactor tiles with the coolant feed", Category: "environment"},
	{ID: "supermatter", Name: "Supermatter", Description: "Absorbs gas, updates power, heat and damage", Category: "reactor"},
	{ID: "hazards", Name: "Hazards", Description: "Expires lightning and anomalies", Category: "reactor"},
	{ID: "monument", Name: "Monument", Description: "Accrues entropy and unlocks stages", Category: "monument"},
	{ID: "telemetry", Name: "Telemetry", Description: "Aggregates reactor windows", Category: "internal"},
}

// SystemRegistry holds metadata about the systems a tick runs. The
// startup log, the help overlay and the perf panel read it.
type SystemRegistry struct {
	systems []SystemInfo
}

// NewSystemRegistry creates a registry with every system in tick order.
func NewSystemRegistry() *SystemRegistry {
	return &SystemRegistry{systems: slices.Clone(tickOrder)}
}

// Register appends a system.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
}

// Name returns the display name for a system ID, or the ID itself.
func (r *SystemRegistry) Name(id string) string {
	if i := slices.IndexFunc(r.systems, func(s SystemInfo) bool { return s.ID == id }); i >= 0 {
		return r.systems[i].Name
	}
	return id
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns the categories in first-seen order.
func (r *SystemRegistry) Categories() []string {
	var cats []string
	for _, info := range r.systems {
		if !slices.Contains(cats, info.Category) {
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all system IDs in tick order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
