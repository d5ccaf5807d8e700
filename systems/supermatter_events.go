package systems

import (
	"fmt"
	"math"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/locale"
)

// Lightning geometry.
const (
	zapBaseCount     = 2
	zapBonusChance   = 0.05
	zapMinRange      = 2
	zapMaxRange      = 7
	zapPowerPerRange = 1000
)

func formatIntegrity(sm *components.Supermatter) string {
	return fmt.Sprintf("%.2f", sm.Integrity())
}

// announce emits a radio message on the engineering or global channel.
func (s *SupermatterSystem) announce(e ecs.Entity, now time.Duration, global bool, key string, args ...locale.Arg) {
	channel := s.cfg.Channels.Engineering
	if global {
		channel = s.cfg.Channels.Global
	}
	s.emit(Effect{
		Kind:    EffectAnnouncement,
		Entity:  e,
		Time:    now,
		Channel: channel,
		Global:  global,
		Key:     key,
		Message: s.loc.Get(key, args...),
	})
}

// checkDelamination trips the latch once damage reaches the delamination point.
func (s *SupermatterSystem) checkDelamination(e ecs.Entity, sm *components.Supermatter, atmos *components.Atmosphere, pos *components.Position, now time.Duration) {
	if sm.Delamming() || sm.Damage < sm.Thresholds.DamageDelamination {
		return
	}
	kind := ChooseDelamType(sm, atmos.Mix.TotalMoles(), s.cfg.Delamination)
	if !sm.BeginDelamination(kind, now+sm.DelamTimer) {
		return
	}
	sm.Countdown.Last = now

	s.log.Warn("supermatter delamination started",
		"entity", e.ID(),
		"kind", kind.String(),
		"damage", sm.Damage,
		"power", sm.Power,
		"ends_in", sm.DelamTimer.Seconds(),
	)
	s.emit(Effect{
		Kind:      EffectDelamination,
		Entity:    e,
		Time:      now,
		Prototype: kind.String(),
		X:         pos.X,
		Y:         pos.Y,
	})

	if !sm.DelamAnnounced {
		sm.DelamAnnounced = true
		s.announce(e, now, true, delamAnnouncementKey(kind))
	}
}

func delamAnnouncementKey(kind components.DelamType) string {
	switch kind {
	case components.DelamSingulo:
		return "supermatter-delam-overmass"
	case components.DelamTesla:
		return "supermatter-delam-tesla"
	case components.DelamCascade:
		return "supermatter-delam-cascade"
	default:
		return "supermatter-delam-explosion"
	}
}

// remnantPrototype names what a delaminated crystal leaves behind.
func remnantPrototype(kind components.DelamType, protos config.PrototypeConfig) string {
	switch kind {
	case components.DelamSingulo:
		return protos.Singularity
	case components.DelamTesla:
		return protos.Tesla
	case components.DelamCascade:
		return protos.Kudzu
	default:
		return protos.Explosion
	}
}

// countdown announces the remaining time and, once it runs out, destroys
// the crystal. It returns true when the crystal was destroyed this tick.
func (s *SupermatterSystem) countdown(e ecs.Entity, sm *components.Supermatter, pos *components.Position, now time.Duration) bool {
	if now >= sm.DelamEndTime {
		sm.MarkDestroyed()
		proto := remnantPrototype(sm.PreferredDelamType, s.cfg.Prototypes)
		s.removals = append(s.removals, e)
		s.spawns = append(s.spawns, spawnRequest{
			pos:    *pos,
			hazard: components.Hazard{Kind: components.HazardRemnant, Prototype: proto},
		})

		s.log.Warn("supermatter delamination complete",
			"entity", e.ID(),
			"kind", sm.PreferredDelamType.String(),
			"remnant", proto,
		)
		s.emit(Effect{
			Kind:      EffectDelamComplete,
			Entity:    e,
			Time:      now,
			Prototype: proto,
			X:         pos.X,
			Y:         pos.Y,
		})
		s.announce(e, now, true, "supermatter-delam-complete",
			locale.Arg{Name: "kind", Value: sm.PreferredDelamType.String()})
		return true
	}

	if sm.Countdown.TryFire(now) {
		remaining := int(math.Ceil((sm.DelamEndTime - now).Seconds()))
		s.announce(e, now, true, "supermatter-seconds-before-delam",
			locale.Arg{Name: "seconds", Value: remaining})
	}
	return false
}

// announceIntegrity reports integrity every yell interval while damage is
// above the warning threshold, and once more when it drops back below.
func (s *SupermatterSystem) announceIntegrity(e ecs.Entity, sm *components.Supermatter, now time.Duration) {
	th := sm.Thresholds
	integrity := locale.Arg{Name: "integrity", Value: formatIntegrity(sm)}

	if sm.Damage < th.DamageWarning {
		if sm.IntegrityAlert {
			sm.IntegrityAlert = false
			s.announce(e, now, false, "supermatter-stabilized", integrity)
		}
		return
	}
	if !sm.Yell.TryFire(now) {
		return
	}
	sm.IntegrityAlert = true

	switch {
	case sm.Damage < sm.DamageArchived:
		s.announce(e, now, false, "supermatter-healing", integrity)
	case sm.Damage >= th.DamageEmergency:
		s.announce(e, now, true, "supermatter-emergency", integrity)
	default:
		s.announce(e, now, false, "supermatter-warning", integrity)
	}

	if sm.Power > th.PowerPenalty {
		s.announce(e, now, false, "supermatter-threshold-power",
			locale.Arg{Name: "power", Value: fmt.Sprintf("%.0f", sm.Power)})
	}
	if moles := sm.GasStorage.Total(); moles > th.MolePenalty {
		s.announce(e, now, false, "supermatter-threshold-mole",
			locale.Arg{Name: "moles", Value: fmt.Sprintf("%.0f", moles)})
	}
}

// ZapPlan returns how many bolts a crystal at power fires and which
// lightning tier they use. The random bonus bolt is not included.
func ZapPlan(power float64, th config.Thresholds) (count, tier int) {
	if power >= th.PowerPenalty {
		count += zapBaseCount
	}
	if power >= th.SeverePowerPenalty {
		tier = 1
		count++
	}
	if power >= th.CriticalPowerPenalty {
		tier = 2
		count++
	}
	return count, tier
}

// zap fires lightning when the crystal is overpowered or badly damaged.
func (s *SupermatterSystem) zap(e ecs.Entity, sm *components.Supermatter, pos *components.Position, now time.Duration) {
	th := sm.Thresholds
	if sm.Power <= th.PowerPenalty && sm.Damage <= th.DamagePenaltyPoint {
		return
	}

	count, tier := ZapPlan(sm.Power, th)
	if count == 0 && sm.Damage > th.DamagePenaltyPoint {
		count = zapBaseCount
	}
	if count == 0 || !sm.Zap.TryFire(now) {
		return
	}
	if s.rng.Float64() < zapBonusChance {
		count++
	}

	protos := s.cfg.Prototypes.Lightning
	if tier >= len(protos) {
		tier = len(protos) - 1
	}
	proto := protos[tier]
	reach := clamp(sm.Power/zapPowerPerRange, zapMinRange, zapMaxRange)
	expires := now + s.cfg.Derived.LightningLifetime

	for i := 0; i < count; i++ {
		tx, ty := s.zapTarget(pos, reach, sm.ZapHitCoordinatesChance)
		s.spawns = append(s.spawns, spawnRequest{
			pos: *pos,
			hazard: components.Hazard{
				Kind:      components.HazardLightning,
				Prototype: proto,
				Tier:      tier,
				ExpiresAt: expires,
				TargetX:   tx,
				TargetY:   ty,
			},
		})
	}

	s.emit(Effect{
		Kind:      EffectZap,
		Entity:    e,
		Time:      now,
		Prototype: proto,
		Count:     count,
		X:         pos.X,
		Y:         pos.Y,
	})
}

// zapTarget picks random coordinates within reach with chance hitCoords,
// otherwise the nearest hazard within reach. Without a hazard in reach it
// falls back to coordinates.
func (s *SupermatterSystem) zapTarget(pos *components.Position, reach, hitCoords float64) (float32, float32) {
	if s.rng.Float64() >= hitCoords {
		best := -1
		bestDist := reach * reach
		for i, t := range s.targets {
			dx := float64(t.X - pos.X)
			dy := float64(t.Y - pos.Y)
			if d := dx*dx + dy*dy; d <= bestDist {
				best, bestDist = i, d
			}
		}
		if best >= 0 {
			return s.targets[best].X, s.targets[best].Y
		}
	}
	angle := s.rng.Float64() * 2 * math.Pi
	dist := s.rng.Float64() * reach
	return pos.X + float32(math.Cos(angle)*dist), pos.Y + float32(math.Sin(angle)*dist)
}

// spawnAnomalies rolls for anomalies around an overpowered crystal.
func (s *SupermatterSystem) spawnAnomalies(e ecs.Entity, sm *components.Supermatter, pos *components.Position, now time.Duration) {
	th := sm.Thresholds
	if sm.Power <= th.PowerPenalty {
		return
	}
	ac := s.cfg.Anomalies
	protos := s.cfg.Prototypes

	if s.rng.Float64() < ac.BluespaceChance {
		s.spawnAnomaly(e, protos.AnomalyBluespace, pos, now)
	}

	gravity, pyro := ac.GravityChance, ac.PyroChance
	if sm.Power > th.SeverePowerPenalty {
		gravity, pyro = ac.GravityChanceSevere, ac.PyroChanceSevere
	}
	if s.rng.Float64() < gravity {
		s.spawnAnomaly(e, protos.AnomalyGravity, pos, now)
	}
	if s.rng.Float64() < pyro {
		s.spawnAnomaly(e, protos.AnomalyPyro, pos, now)
	}
}

func (s *SupermatterSystem) spawnAnomaly(e ecs.Entity, proto string, pos *components.Position, now time.Duration) {
	ac := s.cfg.Anomalies
	angle := s.rng.Float64() * 2 * math.Pi
	dist := ac.SpawnMinRange + s.rng.Float64()*(ac.SpawnMaxRange-ac.SpawnMinRange)
	at := components.Position{
		X: pos.X + float32(math.Cos(angle)*dist),
		Y: pos.Y + float32(math.Sin(angle)*dist),
	}
	s.spawns = append(s.spawns, spawnRequest{
		pos: at,
		hazard: components.Hazard{
			Kind:      components.HazardAnomaly,
			Prototype: proto,
			ExpiresAt: now + s.cfg.Derived.AnomalyLifetime,
		},
	})
	s.emit(Effect{
		Kind:      EffectAnomaly,
		Entity:    e,
		Time:      now,
		Prototype: proto,
		X:         at.X,
		Y:         at.Y,
	})
}

// StatusSound returns the alarm cue for a status, empty for none.
func StatusSound(status components.Status, sounds config.SoundConfig) string {
	switch status {
	case components.StatusWarning:
		return sounds.StatusWarning
	case components.StatusDanger:
		return sounds.StatusDanger
	case components.StatusEmergency:
		return sounds.StatusEmergency
	case components.StatusDelaminating:
		return sounds.StatusDelam
	default:
		return ""
	}
}

// updateSounds switches the ambient loop and status alarm, and plays an
// occasional accent once its cooldown allows.
func (s *SupermatterSystem) updateSounds(e ecs.Entity, sm *components.Supermatter, now time.Duration) {
	snd := s.cfg.Sounds

	loop := snd.CalmLoop
	if sm.Delamming() || sm.Damage >= sm.Thresholds.DamagePenaltyPoint {
		loop = snd.DelamLoop
	}
	if loop != sm.CurrentSoundLoop {
		sm.CurrentSoundLoop = loop
		s.emit(Effect{Kind: EffectLoop, Entity: e, Time: now, Sound: loop})
	}

	if alarm := StatusSound(sm.Status, snd); alarm != sm.StatusCurrentSound {
		sm.StatusCurrentSound = alarm
		s.emit(Effect{Kind: EffectAlarm, Entity: e, Time: now, Sound: alarm})
	}

	if sm.Status == components.StatusInactive || !sm.Accent.Ready(now) {
		return
	}
	if s.rng.Float64() >= s.cfg.Timing.AccentChance {
		return
	}
	sm.Accent.TryFire(now)
	accent := snd.CalmAccent
	if sm.Status >= components.StatusEmergency {
		accent = snd.DelamAccent
	}
	s.emit(Effect{Kind: EffectSound, Entity: e, Time: now, Sound: accent})
}
