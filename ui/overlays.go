package ui

import (
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayLightning    OverlayID = "lightning"
	OverlayAnomalies    OverlayID = "anomalies"
	OverlayRemnants     OverlayID = "remnants"
	OverlayLabels       OverlayID = "labels"
	OverlayTileGas      OverlayID = "tile_gas"
	OverlayAnomalyRange OverlayID = "anomaly_range"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "L", "G")
	Category    string      // Grouping (e.g., "hazards", "reactor", "debug")
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
	Default     bool        // Enabled at startup
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
	order       []OverlayID // Maintains insertion order for display
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays.
func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlayLightning,
		Name:        "Lightning",
		Description: "Bolts from the crystal to their strike points",
		Key:         rl.KeyL,
		KeyLabel:    "L",
		Category:    "hazards",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayAnomalies,
		Name:        "Anomalies",
		Description: "Bluespace, gravitational and pyroclastic anomalies",
		Key:         rl.KeyA,
		KeyLabel:    "A",
		Category:    "hazards",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayRemnants,
		Name:        "Remnants",
		Description: "Singularities, tesla balls, slivers and ash",
		Key:         rl.KeyM,
		KeyLabel:    "M",
		Category:    "hazards",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayLabels,
		Name:        "Labels",
		Description: "Crystal id and integrity under each crystal",
		Key:         rl.KeyN,
		KeyLabel:    "N",
		Category:    "reactor",
		Exclusive:   []OverlayID{OverlayTileGas},
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayTileGas,
		Name:        "Tile Gas",
		Description: "Moles and temperature of each crystal's tile",
		Key:         rl.KeyG,
		KeyLabel:    "G",
		Category:    "reactor",
		Exclusive:   []OverlayID{OverlayLabels},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayAnomalyRange,
		Name:        "Anomaly Range",
		Description: "Ring where anomalies can spawn",
		Key:         rl.KeyR,
		KeyLabel:    "R",
		Category:    "debug",
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.order = append(r.order, desc.ID)
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and returns the new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	on := !r.enabled[id]
	r.SetEnabled(id, on)
	return on
}

// SetEnabled sets an overlay's state. Enabling one turns off the
// overlays it excludes.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// Get returns an overlay descriptor by ID.
func (r *OverlayRegistry) Get(id OverlayID) (OverlayDescriptor, bool) {
	desc, ok := r.byID[id]
	return desc, ok
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	var cats []string
	for _, desc := range r.descriptors {
		if !slices.Contains(cats, desc.Category) {
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}

// EnabledOverlays returns a list of currently enabled overlay IDs.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var result []OverlayID
	for _, id := range r.order {
		if r.enabled[id] {
			result = append(result, id)
		}
	}
	return result
}
