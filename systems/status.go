package systems

import (
	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/gas"
)

// StatusInputs are the only values a crystal's status depends on.
type StatusInputs struct {
	Damage      float64
	Power       float64
	Temperature float64
	Delamming   bool
}

// cautionHeatFraction is how far into the heat penalty the tile may get
// before the crystal reports Caution.
const cautionHeatFraction = 0.8

// normalPowerFloor is the power above which an undamaged crystal is Normal.
const normalPowerFloor = 5

// ComputeStatus derives a status from the inputs and thresholds alone.
// Equal inputs always give equal output.
func ComputeStatus(in StatusInputs, th config.Thresholds) components.Status {
	switch {
	case in.Delamming || in.Damage >= th.DamageDelamination:
		return components.StatusDelaminating
	case in.Damage >= th.DamagePenaltyPoint:
		return components.StatusEmergency
	case in.Damage >= th.DamageDelamAlert:
		return components.StatusDanger
	case in.Damage >= th.DamageWarning:
		return components.StatusWarning
	case in.Temperature > gas.T0C+th.HeatPenalty*cautionHeatFraction:
		return components.StatusCaution
	case in.Power > normalPowerFloor:
		return components.StatusNormal
	default:
		return components.StatusInactive
	}
}

// statusOf applies ComputeStatus to a crystal's current state.
func statusOf(sm *components.Supermatter) components.Status {
	if !sm.Activated {
		return components.StatusInactive
	}
	return ComputeStatus(StatusInputs{
		Damage:      sm.Damage,
		Power:       sm.Power,
		Temperature: sm.Temperature,
		Delamming:   sm.Delamming(),
	}, sm.Thresholds)
}
