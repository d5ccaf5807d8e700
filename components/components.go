// Package components defines ECS components for the simulation.
package components

import (
	"time"

	"github.com/pthm-cable/supermatter/gas"
)

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Atmosphere is the gas on a reactor's tile.
type Atmosphere struct {
	Mix     gas.Mixture
	Exposed bool // Open to space; the tile holds no gas
}

// HazardKind classifies the transient entities a crystal spawns.
type HazardKind uint8

const (
	HazardLightning HazardKind = iota
	HazardAnomaly
	HazardRemnant // Singularity, tesla ball, explosion crater
	HazardSliver
	HazardAsh
)

// String returns the display name for a HazardKind.
func (k HazardKind) String() string {
	switch k {
	case HazardLightning:
		return "lightning"
	case HazardAnomaly:
		return "anomaly"
	case HazardRemnant:
		return "remnant"
	case HazardSliver:
		return "sliver"
	case HazardAsh:
		return "ash"
	default:
		return "unknown"
	}
}

// Hazard is an entity spawned by a crystal. Entities with a zero ExpiresAt persist.
type Hazard struct {
	Kind      HazardKind
	Prototype string
	Tier      int // Lightning tier (0 = weakest)
	ExpiresAt time.Duration
	TargetX   float32 // Lightning strike point
	TargetY   float32
}

// Expired reports whether the hazard should be removed at now.
func (h *Hazard) Expired(now time.Duration) bool {
	return h.ExpiresAt > 0 && now >= h.ExpiresAt
}

// Cultist marks a player taking part in the monument mechanic.
type Cultist struct {
	Name            string
	Local           bool // The player viewing the panel
	OwnedInfluences map[string]struct{}
	CrewConverted   int
}

// Owns reports whether the cultist has bought the influence.
func (c *Cultist) Owns(id string) bool {
	_, ok := c.OwnedInfluences[id]
	return ok
}

// Monument is the authoritative state of the monument progress mechanic.
type Monument struct {
	Entropy            float64 // Total entropy ever infused
	Spent              float64 // Entropy spent on influences
	Stage              int
	SelectedGlyph      string
	UnlockedGlyphs     map[string]struct{}
	UnlockedInfluences map[string]struct{}
}

// Available returns the entropy that can still be spent.
func (m *Monument) Available() float64 {
	return m.Entropy - m.Spent
}
