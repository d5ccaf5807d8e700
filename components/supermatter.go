package components

import (
	"time"

	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/gas"
)

// Status summarises a crystal's condition. It is recomputed every tick
// from the crystal's state and never read back as an input.
type Status uint8

const (
	StatusInactive Status = iota
	StatusNormal
	StatusCaution
	StatusWarning
	StatusDanger
	StatusEmergency
	StatusDelaminating
)

// StatusNames returns the display names for all statuses.
// The order matches the Status constants.
func StatusNames() []string {
	return []string{"Inactive", "Normal", "Caution", "Warning", "Danger", "Emergency", "Delaminating"}
}

// String returns the display name for a Status.
func (s Status) String() string {
	names := StatusNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// ParseStatus returns the status with the given display name, Inactive
// for unknown names.
func ParseStatus(name string) Status {
	for i, n := range StatusNames() {
		if n == name {
			return Status(i)
		}
	}
	return StatusInactive
}

// DelamType is the kind of terminal event a crystal ends in.
type DelamType uint8

const (
	DelamExplosion DelamType = iota
	DelamSingulo
	DelamTesla
	DelamCascade
)

// String returns the display name for a DelamType.
func (d DelamType) String() string {
	switch d {
	case DelamExplosion:
		return "Explosion"
	case DelamSingulo:
		return "Singulo"
	case DelamTesla:
		return "Tesla"
	case DelamCascade:
		return "Cascade"
	default:
		return "Unknown"
	}
}

// Phase is the delamination latch. It only ever moves forward:
// Stable -> Delaminating -> Destroyed.
type Phase uint8

const (
	PhaseStable Phase = iota
	PhaseDelaminating
	PhaseDestroyed
)

// String returns the display name for a Phase.
func (p Phase) String() string {
	switch p {
	case PhaseStable:
		return "Stable"
	case PhaseDelaminating:
		return "Delaminating"
	case PhaseDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// Cooldown gates a repeating side effect. Times are simulation time since start.
type Cooldown struct {
	Interval time.Duration
	Last     time.Duration
}

// Ready reports whether the effect may fire at now.
func (c *Cooldown) Ready(now time.Duration) bool {
	return now-c.Last >= c.Interval
}

// TryFire fires the effect if the cooldown has elapsed, recording now as the
// last firing time. It leaves Last untouched when it does not fire.
func (c *Cooldown) TryFire(now time.Duration) bool {
	if !c.Ready(now) {
		return false
	}
	c.Last = now
	return true
}

// Supermatter is the state of one crystal. Only the supermatter system writes
// to it, once per tick; everything else reads post-tick values.
type Supermatter struct {
	Activated bool   `inspect:"bool"`
	Status    Status `inspect:"skip"`

	// Core state
	Power          float64 `inspect:"label,fmt:%.0f"`
	Temperature    float64 `inspect:"label,fmt:%.1fK"`
	Damage         float64 `inspect:"label,fmt:%.2f"`
	DamageArchived float64 `inspect:"skip"`
	MatterPower    float64 `inspect:"label,fmt:%.1f"`

	// Per-tick derived values
	WasteMultiplier          float64 `inspect:"label,fmt:%.2f"`
	PowerlossInhibitor       float64 `inspect:"bar"`
	PowerlossDynamicScaling  float64 `inspect:"bar"`
	DynamicHeatResistance    float64 `inspect:"label,fmt:%.2f"`
	MoleHeatPenaltyThreshold float64 `inspect:"label,fmt:%.1f"`
	Radiation                float64 `inspect:"label,fmt:%.2f"`

	// Moles absorbed from the tile this tick, one entry per species
	GasStorage gas.Storage `inspect:"skip"`

	// Constants copied from config at spawn
	MatterPowerConversion            float64           `inspect:"skip"`
	GasEfficiency                    float64           `inspect:"skip"`
	MoleHeatPenalty                  float64           `inspect:"skip"`
	ReactionPowerModifier            float64           `inspect:"skip"`
	ThermalReleaseModifier           float64           `inspect:"skip"`
	PlasmaReleaseModifier            float64           `inspect:"skip"`
	OxygenReleaseEfficiencyModifier  float64           `inspect:"skip"`
	ZapHitCoordinatesChance          float64           `inspect:"skip"`
	PowerlossInhibitionGasThreshold  float64           `inspect:"skip"`
	PowerlossInhibitionMoleThreshold float64           `inspect:"skip"`
	PowerlossInhibitionMoleBoost     float64           `inspect:"skip"`
	DamageHardcap                    float64           `inspect:"skip"`
	DamageIncreaseMultiplier         float64           `inspect:"skip"`
	MaxSpaceExposureDamage           float64           `inspect:"skip"`
	Thresholds                       config.Thresholds `inspect:"skip"`

	// Rate-limited effects
	Yell      Cooldown `inspect:"skip"` // Integrity announcements
	Accent    Cooldown `inspect:"skip"` // Ambient accent sounds
	Zap       Cooldown `inspect:"skip"` // Lightning
	Countdown Cooldown `inspect:"skip"` // Announcements while delaminating

	DelamTimer   time.Duration `inspect:"skip"`
	DelamEndTime time.Duration `inspect:"skip"`

	// Delamination latch
	phase              Phase
	DelamAnnounced     bool      `inspect:"bool"`
	PreferredDelamType DelamType `inspect:"skip"`

	// IntegrityAlert is set while integrity warnings are being announced.
	IntegrityAlert bool `inspect:"skip"`

	// Current sound selections
	CurrentSoundLoop   string `inspect:"skip"`
	StatusCurrentSound string `inspect:"skip"`

	// ThresholdsChecked is set once the system has clamped hand-built thresholds.
	ThresholdsChecked bool `inspect:"skip"`
}

// NewSupermatter returns a freshly spawned crystal with every field at its
// configured default. This is also the only way to reset the latch.
func NewSupermatter(cfg *config.Config) Supermatter {
	sm := cfg.Supermatter
	return Supermatter{
		Activated:                        sm.Activated,
		Status:                           StatusInactive,
		PowerlossInhibitor:               1,
		DynamicHeatResistance:            1,
		MatterPowerConversion:            sm.MatterPowerConversion,
		GasEfficiency:                    sm.GasEfficiency,
		MoleHeatPenalty:                  sm.MoleHeatPenalty,
		ReactionPowerModifier:            sm.ReactionPowerModifier,
		ThermalReleaseModifier:           sm.ThermalReleaseModifier,
		PlasmaReleaseModifier:            sm.PlasmaReleaseModifier,
		OxygenReleaseEfficiencyModifier:  sm.OxygenReleaseEfficiencyModifier,
		ZapHitCoordinatesChance:          sm.ZapHitCoordinatesChance,
		PowerlossInhibitionGasThreshold:  sm.PowerlossInhibitionGasThreshold,
		PowerlossInhibitionMoleThreshold: sm.PowerlossInhibitionMoleThreshold,
		PowerlossInhibitionMoleBoost:     sm.PowerlossInhibitionMoleBoost,
		DamageHardcap:                    sm.DamageHardcap,
		DamageIncreaseMultiplier:         sm.DamageIncreaseMultiplier,
		MaxSpaceExposureDamage:           sm.MaxSpaceExposureDamage,
		Thresholds:                       cfg.Thresholds,
		Yell:                             Cooldown{Interval: cfg.Derived.YellTimer},
		Accent:                           Cooldown{Interval: cfg.Derived.AccentMinCooldown},
		Zap:                              Cooldown{Interval: cfg.Derived.ZapCooldown},
		Countdown:                        Cooldown{Interval: cfg.Derived.CountdownInterval},
		DelamTimer:                       cfg.Derived.DelamTimer,
		PreferredDelamType:               DelamExplosion,
		CurrentSoundLoop:                 cfg.Sounds.CalmLoop,
	}
}

// Phase returns the delamination latch state.
func (s *Supermatter) Phase() Phase {
	return s.phase
}

// Delamming reports whether the crystal has started delaminating.
// Once true it stays true for the life of the entity.
func (s *Supermatter) Delamming() bool {
	return s.phase != PhaseStable
}

// BeginDelamination trips the latch, fixing the delamination kind and end
// time. It returns false if the latch was already tripped.
func (s *Supermatter) BeginDelamination(kind DelamType, endTime time.Duration) bool {
	if s.phase != PhaseStable {
		return false
	}
	s.phase = PhaseDelaminating
	s.PreferredDelamType = kind
	s.DelamEndTime = endTime
	return true
}

// MarkDestroyed moves a delaminating crystal to its terminal phase.
// It returns false unless the crystal was delaminating.
func (s *Supermatter) MarkDestroyed() bool {
	if s.phase != PhaseDelaminating {
		return false
	}
	s.phase = PhaseDestroyed
	return true
}

// Integrity returns the remaining integrity as a percentage in [0, 100].
func (s *Supermatter) Integrity() float64 {
	point := s.Thresholds.DamageDelamination
	if point <= 0 {
		return 0
	}
	integrity := (1 - s.Damage/point) * 100
	if integrity < 0 {
		return 0
	}
	if integrity > 100 {
		return 100
	}
	return integrity
}
