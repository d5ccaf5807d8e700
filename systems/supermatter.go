package systems

import (
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/gas"
	"github.com/pthm-cable/supermatter/locale"
)

// Errors returned by the crystal interaction methods.
var (
	ErrNotSupermatter = errors.New("systems: entity is not a supermatter crystal")
	ErrDestroyed      = errors.New("systems: crystal already destroyed")
)

// Fixed coefficients of the crystal's gas processing.
const (
	waterVaporTransmitPenalty = 0.25 // Transmission lost per unit water vapour fraction
	minHeatModifier           = 0.5
	minMoleHeatPenalty        = 0.25
	scalingStepUp             = 0.02 // Max per-tick move of powerloss scaling toward the CO2 fraction
	scalingStepDown           = 0.05
	maxMoleBoost              = 1.5
	minMatterConversion       = 40
	highPowerRatio            = 0.8
	highTempFactor            = 50
	lowTempFactor             = 30
	powerDecayDivisor         = 500
	maxPowerDecayFraction     = 0.83
	radiationScale            = 0.003
	heatDamageMoleDivisor     = 200
	heatDamageDivisor         = 150
	powerDamageDivisor        = 500
	moleDamageDivisor         = 80
	minSpaceExposureDamage    = 0.1
)

// SupermatterDeps are the host services the supermatter system is built with.
type SupermatterDeps struct {
	Config *config.Config
	Loc    *locale.Catalog
	Rng    *rand.Rand
	Logger *slog.Logger
}

type spawnRequest struct {
	pos    components.Position
	hazard components.Hazard
}

// SupermatterSystem advances every crystal once per tick. It is the only
// writer of components.Supermatter.
type SupermatterSystem struct {
	world        *ecs.World
	filter       ecs.Filter3[components.Supermatter, components.Atmosphere, components.Position]
	hazardFilter ecs.Filter2[components.Position, components.Hazard]
	hazardMapper *ecs.Map2[components.Position, components.Hazard]
	smMap        *ecs.Map[components.Supermatter]
	posMap       *ecs.Map[components.Position]

	cfg   *config.Config
	table gas.Table
	loc   *locale.Catalog
	rng   *rand.Rand
	log   *slog.Logger

	// Per-tick scratch
	effects  []Effect
	spawns   []spawnRequest
	removals []ecs.Entity
	targets  []components.Position
}

// NewSupermatterSystem creates a supermatter system over w.
func NewSupermatterSystem(w *ecs.World, deps SupermatterDeps) *SupermatterSystem {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := deps.Loc
	if loc == nil {
		loc = locale.Default()
	}
	rng := deps.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &SupermatterSystem{
		world:        w,
		filter:       *ecs.NewFilter3[components.Supermatter, components.Atmosphere, components.Position](w),
		hazardFilter: *ecs.NewFilter2[components.Position, components.Hazard](w),
		hazardMapper: ecs.NewMap2[components.Position, components.Hazard](w),
		smMap:        ecs.NewMap[components.Supermatter](w),
		posMap:       ecs.NewMap[components.Position](w),
		cfg:          deps.Config,
		table:        deps.Config.Derived.GasTable,
		loc:          loc,
		rng:          rng,
		log:          logger,
	}
}

// Update steps every crystal at simulation time now and returns the
// effects produced this tick.
func (s *SupermatterSystem) Update(now time.Duration) []Effect {
	s.effects = nil
	s.collectTargets()

	query := s.filter.Query()
	for query.Next() {
		sm, atmos, pos := query.Get()
		s.step(query.Entity(), sm, atmos, pos, now)
	}

	// Structural changes wait until the query is closed
	s.flush()
	return s.effects
}

// collectTargets snapshots hazard positions for lightning targeting.
func (s *SupermatterSystem) collectTargets() {
	s.targets = s.targets[:0]
	query := s.hazardFilter.Query()
	for query.Next() {
		pos, _ := query.Get()
		s.targets = append(s.targets, *pos)
	}
}

func (s *SupermatterSystem) flush() {
	for i := range s.spawns {
		req := s.spawns[i]
		s.hazardMapper.NewEntity(&req.pos, &req.hazard)
	}
	for _, e := range s.removals {
		if s.world.Alive(e) {
			s.world.RemoveEntity(e)
		}
	}
	s.spawns = s.spawns[:0]
	s.removals = s.removals[:0]
}

func (s *SupermatterSystem) emit(fx Effect) {
	s.effects = append(s.effects, fx)
}

// step runs one tick of one crystal.
func (s *SupermatterSystem) step(e ecs.Entity, sm *components.Supermatter, atmos *components.Atmosphere, pos *components.Position, now time.Duration) {
	if !sm.ThresholdsChecked {
		s.checkThresholds(e, sm)
	}
	if !sm.Activated || sm.Phase() == components.PhaseDestroyed {
		sm.Status = statusOf(sm)
		return
	}

	sm.DamageArchived = sm.Damage

	if atmos.Exposed || atmos.Mix.TotalMoles() <= 0 {
		s.exposeToSpace(sm)
	} else {
		moles, temperature := s.processGas(sm, &atmos.Mix)
		s.applyDamage(sm, moles, temperature)
	}

	s.checkDelamination(e, sm, atmos, pos, now)
	sm.Status = statusOf(sm)

	if sm.Delamming() && s.countdown(e, sm, pos, now) {
		return
	}

	s.announceIntegrity(e, sm, now)
	s.zap(e, sm, pos, now)
	s.spawnAnomalies(e, sm, pos, now)
	s.updateSounds(e, sm, now)
}

// checkThresholds clamps a hand-built threshold set into monotonic order once
// per crystal, logging when it had to.
func (s *SupermatterSystem) checkThresholds(e ecs.Entity, sm *components.Supermatter) {
	sm.ThresholdsChecked = true
	clamped, changed := sm.Thresholds.Clamped()
	if !changed {
		return
	}
	s.log.Warn("supermatter thresholds out of order, clamped",
		"entity", e.ID(),
		"error", sm.Thresholds.Validate(),
	)
	sm.Thresholds = clamped
}

// processGas absorbs part of the tile, converts it into power and heat,
// releases waste and returns the mix. It returns the absorbed moles and
// their temperature after heating.
func (s *SupermatterSystem) processGas(sm *components.Supermatter, mix *gas.Mixture) (float64, float64) {
	absorbed := mix.Remove(sm.GasEfficiency)
	moles := absorbed.TotalMoles()
	sm.GasStorage = absorbed.Moles

	composition := absorbed.Composition()
	resp := RespondTo(s.table, composition)
	powerRatio := resp.PowerRatio
	heatModifier := resp.HeatModifier
	transmission := resp.Transmission

	sm.WasteMultiplier = heatModifier
	sm.DynamicHeatResistance = resp.HeatResistance
	sm.MoleHeatPenaltyThreshold = moleHeatScale(moles, sm.MoleHeatPenalty)

	// CO2 ramps the powerloss scaling toward its own fraction
	co2 := composition[gas.CarbonDioxide]
	if co2 > sm.PowerlossInhibitionGasThreshold && moles > sm.PowerlossInhibitionMoleThreshold {
		delta := clamp(co2-sm.PowerlossDynamicScaling, -scalingStepUp, scalingStepUp)
		sm.PowerlossDynamicScaling = clamp(sm.PowerlossDynamicScaling+delta, 0, 1)
	} else {
		sm.PowerlossDynamicScaling = clamp(sm.PowerlossDynamicScaling-scalingStepDown, 0, 1)
	}
	boost := clamp(moles/sm.PowerlossInhibitionMoleBoost, 1, maxMoleBoost)
	sm.PowerlossInhibitor = clamp(1-sm.PowerlossDynamicScaling*boost, 0, 1)

	if sm.MatterPower > 0 {
		removed := math.Min(math.Max(sm.MatterPower/sm.MatterPowerConversion, minMatterConversion), sm.MatterPower)
		sm.Power += removed
		sm.MatterPower -= removed
	}

	tempFactor := float64(lowTempFactor)
	if powerRatio > highPowerRatio {
		tempFactor = highTempFactor
	}
	sm.Power = math.Max(absorbed.Temperature*tempFactor/gas.T0C*powerRatio+sm.Power, 0)
	sm.Radiation = sm.Power * math.Max(0, 1+transmission/10) * radiationScale

	energy := sm.Power * sm.ReactionPowerModifier
	absorbed.Temperature = clamp(absorbed.Temperature+energy*heatModifier*sm.ThermalReleaseModifier, 0, gas.TMax)
	absorbed.AdjustMoles(gas.Plasma, math.Max(energy*heatModifier*sm.PlasmaReleaseModifier, 0))
	absorbed.AdjustMoles(gas.Oxygen, math.Max((energy+absorbed.Temperature*heatModifier-gas.T0C)*sm.OxygenReleaseEfficiencyModifier, 0))

	heated := absorbed.Temperature
	mix.Merge(absorbed)
	sm.Temperature = mix.Temperature

	decayPower(sm)
	return moles, heated
}

// moleHeatScale scales heat damage by absorbed moles. Dense gas is
// harder to heat than thin gas.
func moleHeatScale(moles, penalty float64) float64 {
	return math.Max(moles/penalty, minMoleHeatPenalty)
}

// GasResponse is how a gas composition drives the crystal.
type GasResponse struct {
	PowerRatio     float64 // Share of tile heat turned into power, [0, 1]
	HeatModifier   float64 // Waste multiplier on heat and gas release
	Transmission   float64 // Radiation transmission
	HeatResistance float64
}

// RespondTo computes the crystal's response to a mole-fraction composition.
func RespondTo(table gas.Table, composition gas.Storage) GasResponse {
	w := table.Weighted(composition)
	return GasResponse{
		PowerRatio:     clamp(w.PowerMixRatio, 0, 1),
		HeatModifier:   math.Max(w.HeatPenalty, minHeatModifier),
		Transmission:   w.TransmitModifier * (1 - composition[gas.WaterVapor]*waterVaporTransmitPenalty),
		HeatResistance: math.Max(w.HeatResistance, 1),
	}
}

// decayPower bleeds power off cubically, damped by the powerloss inhibitor.
func decayPower(sm *components.Supermatter) {
	reduction := math.Pow(sm.Power/powerDecayDivisor, 3)
	loss := math.Min(reduction*sm.PowerlossInhibitor, sm.Power*maxPowerDecayFraction*sm.PowerlossInhibitor)
	sm.Power = math.Max(sm.Power-loss, 0)
}

// exposeToSpace damages a crystal whose tile holds no gas.
func (s *SupermatterSystem) exposeToSpace(sm *components.Supermatter) {
	sm.GasStorage = gas.Storage{}
	sm.Temperature = gas.TCMB
	decayPower(sm)

	dmg := math.Max(sm.Power/1000*sm.DamageIncreaseMultiplier, minSpaceExposureDamage)
	dmg = math.Min(dmg, sm.MaxSpaceExposureDamage)
	commitDamage(sm, sm.Damage+dmg)
}

// applyDamage accumulates heat, power and mole damage, or heals a crystal
// sitting in cool, thin gas.
func (s *SupermatterSystem) applyDamage(sm *components.Supermatter, moles, temperature float64) {
	th := sm.Thresholds
	mult := sm.DamageIncreaseMultiplier
	tempThreshold := gas.T0C + th.HeatPenalty

	total := math.Max(clamp(moles/heatDamageMoleDivisor, 0.5, 1)*temperature-tempThreshold*sm.DynamicHeatResistance, 0) *
		sm.MoleHeatPenaltyThreshold / heatDamageDivisor * mult
	total += math.Max(sm.Power-th.PowerPenalty, 0) / powerDamageDivisor * mult
	total += math.Max(moles-th.MolePenalty, 0) / moleDamageDivisor * mult

	if moles < th.MolePenalty {
		total += math.Min(temperature-tempThreshold, 0.001) / heatDamageDivisor
	}

	commitDamage(sm, sm.Damage+total)
}

// commitDamage sets damage to target, bounded to within the hardcap of the
// previous tick's damage and never below zero.
func commitDamage(sm *components.Supermatter, target float64) {
	limit := sm.DamageHardcap * sm.Thresholds.DamageDelamination
	bounded := clamp(target, sm.DamageArchived-limit, sm.DamageArchived+limit)
	sm.Damage = math.Max(bounded, 0)
}

// ChooseDelamType picks how a crystal will delaminate given its tile's moles.
func ChooseDelamType(sm *components.Supermatter, tileMoles float64, dc config.DelaminationConfig) components.DelamType {
	switch {
	case dc.ForceCascade:
		return components.DelamCascade
	case dc.SinguloEnabled && tileMoles >= sm.Thresholds.MolePenalty*dc.SinguloMolesModifier:
		return components.DelamSingulo
	case dc.TeslaEnabled && sm.Power >= sm.Thresholds.PowerPenalty*dc.TeslaPowerModifier:
		return components.DelamTesla
	default:
		return components.DelamExplosion
	}
}

// Consume feeds an object into the crystal. The object flashes to dust,
// its matter becomes matter power and an idle crystal wakes up.
func (s *SupermatterSystem) Consume(e ecs.Entity, target string, matter float64, now time.Duration) ([]Effect, error) {
	sm, pos, err := s.lookup(e)
	if err != nil {
		return nil, err
	}
	sm.Activated = true
	sm.MatterPower += matter

	ashPos := *pos
	ash := components.Hazard{Kind: components.HazardAsh, Prototype: s.cfg.Prototypes.CollisionResult}
	s.hazardMapper.NewEntity(&ashPos, &ash)

	return []Effect{{
		Kind:      EffectConsume,
		Entity:    e,
		Time:      now,
		Key:       "supermatter-consume",
		Message:   s.loc.Get("supermatter-consume", locale.Arg{Name: "target", Value: target}),
		Sound:     s.cfg.Sounds.Dust,
		Prototype: ash.Prototype,
		X:         pos.X,
		Y:         pos.Y,
	}}, nil
}

// ExtractSliver cuts a sliver from the crystal. It deals sliver damage and
// halves the delamination timer, including any countdown in progress.
func (s *SupermatterSystem) ExtractSliver(e ecs.Entity, now time.Duration) ([]Effect, error) {
	sm, pos, err := s.lookup(e)
	if err != nil {
		return nil, err
	}
	sm.Damage += s.cfg.Supermatter.SliverDamage
	sm.DelamTimer /= 2
	if sm.Phase() == components.PhaseDelaminating && sm.DelamEndTime > now {
		sm.DelamEndTime = now + (sm.DelamEndTime-now)/2
	}

	sliverPos := *pos
	sliver := components.Hazard{Kind: components.HazardSliver, Prototype: s.cfg.Prototypes.Sliver}
	s.hazardMapper.NewEntity(&sliverPos, &sliver)

	integrity := formatIntegrity(sm)
	return []Effect{
		{
			Kind:      EffectSliver,
			Entity:    e,
			Time:      now,
			Sound:     s.cfg.Sounds.Distort,
			Prototype: sliver.Prototype,
			X:         pos.X,
			Y:         pos.Y,
		},
		{
			Kind:    EffectAnnouncement,
			Entity:  e,
			Time:    now,
			Channel: s.cfg.Channels.Engineering,
			Key:     "supermatter-tamper",
			Message: s.loc.Get("supermatter-tamper", locale.Arg{Name: "integrity", Value: integrity}),
		},
	}, nil
}

func (s *SupermatterSystem) lookup(e ecs.Entity) (*components.Supermatter, *components.Position, error) {
	if !s.world.Alive(e) || !s.smMap.Has(e) || !s.posMap.Has(e) {
		return nil, nil, ErrNotSupermatter
	}
	sm := s.smMap.Get(e)
	if sm.Phase() == components.PhaseDestroyed {
		return nil, nil, ErrDestroyed
	}
	return sm, s.posMap.Get(e), nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
