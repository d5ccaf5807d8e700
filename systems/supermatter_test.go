package systems

import (
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/gas"
)

func init() {
	config.MustInit("")
}

func newTestSystem() (*ecs.World, *SupermatterSystem) {
	w := ecs.NewWorld()
	sys := NewSupermatterSystem(w, SupermatterDeps{
		Config: config.Cfg(),
		Rng:    rand.New(rand.NewSource(7)),
		Logger: slog.New(slog.DiscardHandler),
	})
	return w, sys
}

func roomAir(temperature float64) gas.Mixture {
	var mix gas.Mixture
	mix.Moles[gas.Nitrogen] = 80
	mix.Moles[gas.Oxygen] = 20
	mix.Temperature = temperature
	return mix
}

func spawnCrystal(w *ecs.World, sm components.Supermatter, atmos components.Atmosphere) ecs.Entity {
	mapper := ecs.NewMap3[components.Supermatter, components.Atmosphere, components.Position](w)
	pos := components.Position{X: 10, Y: 10}
	return mapper.NewEntity(&sm, &atmos, &pos)
}

func countHazards(w *ecs.World, kind components.HazardKind) []components.Hazard {
	var out []components.Hazard
	query := ecs.NewFilter1[components.Hazard](w).Query()
	for query.Next() {
		if h := query.Get(); h.Kind == kind {
			out = append(out, *h)
		}
	}
	return out
}

func sec(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func TestNewSupermatter_GasStorageHasEverySpecies(t *testing.T) {
	sm := components.NewSupermatter(config.Cfg())
	if len(sm.GasStorage) != gas.NumSpecies {
		t.Fatalf("storage has %d entries, want %d", len(sm.GasStorage), gas.NumSpecies)
	}
	for _, s := range gas.All() {
		if v := sm.GasStorage.Get(s); v != 0 {
			t.Errorf("%s = %v, want 0", s, v)
		}
	}
}

func TestSupermatterSystem_AbsorbsGas(t *testing.T) {
	w, sys := newTestSystem()
	sm := components.NewSupermatter(config.Cfg())
	e := spawnCrystal(w, sm, components.Atmosphere{Mix: roomAir(293.15)})

	sys.Update(sec(1))

	got := ecs.NewMap[components.Supermatter](w).Get(e)
	wantN2 := 80 * config.Cfg().Supermatter.GasEfficiency
	if math.Abs(got.GasStorage[gas.Nitrogen]-wantN2) > 1e-9 {
		t.Errorf("absorbed nitrogen = %v, want %v", got.GasStorage[gas.Nitrogen], wantN2)
	}
	if got.GasStorage[gas.Plasma] != 0 {
		t.Errorf("absorbed plasma = %v, want 0", got.GasStorage[gas.Plasma])
	}
	if got.Power < 0 {
		t.Errorf("power went negative: %v", got.Power)
	}
}

func TestSupermatterSystem_InactiveCrystalIsSkipped(t *testing.T) {
	w, sys := newTestSystem()
	sm := components.NewSupermatter(config.Cfg())
	sm.Activated = false
	mix := roomAir(293.15)
	e := spawnCrystal(w, sm, components.Atmosphere{Mix: mix})

	fx := sys.Update(sec(1))

	got := ecs.NewMap[components.Supermatter](w).Get(e)
	atmos := ecs.NewMap[components.Atmosphere](w).Get(e)
	if got.Status != components.StatusInactive {
		t.Errorf("status = %v, want Inactive", got.Status)
	}
	if atmos.Mix != mix {
		t.Error("inactive crystal changed its tile")
	}
	if len(fx) != 0 {
		t.Errorf("inactive crystal emitted %d effects", len(fx))
	}
}

func TestSupermatterSystem_DamageHardcap(t *testing.T) {
	cfg := config.Cfg()
	limit := cfg.Supermatter.DamageHardcap * cfg.Thresholds.DamageDelamination

	t.Run("space exposure", func(t *testing.T) {
		w, sys := newTestSystem()
		sm := components.NewSupermatter(cfg)
		sm.Power = 1e6 // exposure damage would be capped at 2.0 without the hardcap
		e := spawnCrystal(w, sm, components.Atmosphere{Exposed: true})

		sys.Update(sec(1))

		got := ecs.NewMap[components.Supermatter](w).Get(e)
		if math.Abs(got.Damage-limit) > 1e-9 {
			t.Errorf("damage = %v, want hardcap %v", got.Damage, limit)
		}
		if got.Temperature != gas.TCMB {
			t.Errorf("temperature = %v, want %v", got.Temperature, gas.TCMB)
		}
		if got.GasStorage.Total() != 0 {
			t.Errorf("exposed crystal stored %v moles", got.GasStorage.Total())
		}
	})

	t.Run("healing", func(t *testing.T) {
		w, sys := newTestSystem()
		sm := components.NewSupermatter(cfg)
		sm.Damage = 100
		e := spawnCrystal(w, sm, components.Atmosphere{Mix: roomAir(3)})

		sys.Update(sec(1))

		got := ecs.NewMap[components.Supermatter](w).Get(e)
		if math.Abs(got.Damage-(100-limit)) > 1e-9 {
			t.Errorf("damage = %v, want %v", got.Damage, 100-limit)
		}
	})
}

func TestSupermatterSystem_LatchNeverReverts(t *testing.T) {
	w, sys := newTestSystem()
	sm := components.NewSupermatter(config.Cfg())
	sm.Damage = 950
	e := spawnCrystal(w, sm, components.Atmosphere{Mix: roomAir(293.15)})
	smMap := ecs.NewMap[components.Supermatter](w)

	var started, completed int
	destroyedAt := time.Duration(-1)
	for i := 1; i <= 40; i++ {
		now := sec(float64(i))
		for _, fx := range sys.Update(now) {
			switch fx.Kind {
			case EffectDelamination:
				started++
			case EffectDelamComplete:
				completed++
			}
		}
		if !w.Alive(e) {
			if destroyedAt < 0 {
				destroyedAt = now
			}
			continue
		}
		got := smMap.Get(e)
		if !got.Delamming() {
			t.Fatalf("tick %d: latch reverted", i)
		}
		if got.Status != components.StatusDelaminating {
			t.Errorf("tick %d: status = %v", i, got.Status)
		}
	}

	if started != 1 {
		t.Errorf("delamination started %d times, want 1", started)
	}
	if completed != 1 {
		t.Errorf("delamination completed %d times, want 1", completed)
	}
	want := sec(1) + config.Cfg().Derived.DelamTimer
	if destroyedAt != want {
		t.Errorf("destroyed at %v, want %v", destroyedAt, want)
	}

	remnants := countHazards(w, components.HazardRemnant)
	if len(remnants) != 1 {
		t.Fatalf("%d remnants, want 1", len(remnants))
	}
	if remnants[0].Prototype != config.Cfg().Prototypes.Explosion {
		t.Errorf("remnant = %q", remnants[0].Prototype)
	}
}

func TestSupermatterSystem_DelamAnnouncedOnce(t *testing.T) {
	w, sys := newTestSystem()
	sm := components.NewSupermatter(config.Cfg())
	sm.Damage = 950
	spawnCrystal(w, sm, components.Atmosphere{Mix: roomAir(293.15)})

	announced := 0
	for i := 1; i <= 10; i++ {
		for _, fx := range sys.Update(sec(float64(i))) {
			if fx.Kind == EffectAnnouncement && fx.Key == "supermatter-delam-explosion" {
				announced++
				if !fx.Global {
					t.Error("delamination announcement not global")
				}
			}
		}
	}
	if announced != 1 {
		t.Errorf("delamination announced %d times, want 1", announced)
	}
}

func TestSupermatterSystem_IntegrityAnnouncementsRateLimited(t *testing.T) {
	w, sys := newTestSystem()
	sm := components.NewSupermatter(config.Cfg())
	sm.Damage = 100
	spawnCrystal(w, sm, components.Atmosphere{Mix: roomAir(293.15)})

	integrityReports := func(fx []Effect) int {
		n := 0
		for _, f := range fx {
			switch f.Key {
			case "supermatter-warning", "supermatter-healing", "supermatter-emergency":
				n++
			}
		}
		return n
	}

	yell := config.Cfg().Derived.YellTimer
	tests := []struct {
		at   time.Duration
		want int
	}{
		{yell, 1},
		{yell + time.Second, 0},
		{2*yell - time.Second, 0},
		{2 * yell, 1},
	}
	for _, tt := range tests {
		if got := integrityReports(sys.Update(tt.at)); got != tt.want {
			t.Errorf("at %v: %d reports, want %d", tt.at, got, tt.want)
		}
	}
}

func TestChooseDelamType(t *testing.T) {
	cfg := config.Cfg()
	th := cfg.Thresholds

	tests := []struct {
		name    string
		power   float64
		moles   float64
		cascade bool
		want    components.DelamType
	}{
		{"quiet", 100, 100, false, components.DelamExplosion},
		{"overmass", 100, th.MolePenalty, false, components.DelamSingulo},
		{"overpowered", th.PowerPenalty, 100, false, components.DelamTesla},
		{"mass beats power", th.PowerPenalty, th.MolePenalty, false, components.DelamSingulo},
		{"forced cascade", th.PowerPenalty, th.MolePenalty, true, components.DelamCascade},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := components.NewSupermatter(cfg)
			sm.Power = tt.power
			dc := cfg.Delamination
			dc.ForceCascade = tt.cascade
			if got := ChooseDelamType(&sm, tt.moles, dc); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZapPlan(t *testing.T) {
	th := config.Cfg().Thresholds
	tests := []struct {
		power     float64
		wantCount int
		wantTier  int
	}{
		{th.PowerPenalty - 1, 0, 0},
		{th.PowerPenalty, 2, 0},
		{th.SeverePowerPenalty, 3, 1},
		{th.CriticalPowerPenalty + 500, 4, 2},
	}
	for _, tt := range tests {
		count, tier := ZapPlan(tt.power, th)
		if count != tt.wantCount || tier != tt.wantTier {
			t.Errorf("ZapPlan(%v) = (%d, %d), want (%d, %d)", tt.power, count, tier, tt.wantCount, tt.wantTier)
		}
	}
}

func TestSupermatterSystem_ZapsWhenOverpowered(t *testing.T) {
	w, sys := newTestSystem()
	sm := components.NewSupermatter(config.Cfg())
	sm.Power = 100000 // still above the critical threshold after decay
	spawnCrystal(w, sm, components.Atmosphere{Mix: roomAir(293.15)})

	now := config.Cfg().Derived.ZapCooldown
	zaps := 0
	for _, fx := range sys.Update(now) {
		if fx.Kind == EffectZap {
			zaps++
		}
	}
	if zaps != 1 {
		t.Fatalf("%d zap effects, want 1", zaps)
	}
	bolts := countHazards(w, components.HazardLightning)
	if len(bolts) < 2 {
		t.Fatalf("%d bolts, want at least 2", len(bolts))
	}
	for _, b := range bolts {
		if b.ExpiresAt != now+config.Cfg().Derived.LightningLifetime {
			t.Errorf("bolt expires at %v", b.ExpiresAt)
		}
	}
}

func TestSupermatterSystem_ZapsWhenDamagedOnly(t *testing.T) {
	w, sys := newTestSystem()
	sm := components.NewSupermatter(config.Cfg())
	sm.Damage = 700 // past the damage penalty point, power stays at zero
	e := spawnCrystal(w, sm, components.Atmosphere{Mix: roomAir(293.15)})

	now := sec(3)
	zaps := 0
	for _, fx := range sys.Update(now) {
		if fx.Kind == EffectZap {
			zaps++
		}
	}
	if zaps != 1 {
		t.Fatalf("%d zap effects, want 1", zaps)
	}
	if n := len(countHazards(w, components.HazardLightning)); n < 2 {
		t.Errorf("%d bolts, want at least 2", n)
	}
	if got := ecs.NewMap[components.Supermatter](w).Get(e).Zap.Last; got != now {
		t.Errorf("zap cooldown last = %v, want %v", got, now)
	}
}

func TestApplyDamage_ScalesHeatByMoles(t *testing.T) {
	_, sys := newTestSystem()
	heatDamage := func(moles float64) float64 {
		sm := components.NewSupermatter(config.Cfg())
		sm.DynamicHeatResistance = 1
		sm.MoleHeatPenaltyThreshold = moleHeatScale(moles, sm.MoleHeatPenalty)
		sys.applyDamage(&sm, moles, 400)
		return sm.Damage
	}

	thin, dense := heatDamage(250), heatDamage(1000)
	if thin <= 0 {
		t.Fatalf("thin mix damage = %v, want > 0", thin)
	}
	if thin >= dense {
		t.Errorf("thin mix damage %v should be below dense mix damage %v", thin, dense)
	}
	if r := dense / thin; r < 3.9 || r > 4 {
		t.Errorf("damage ratio = %v, want about 4", r)
	}
}

func TestStatusSound(t *testing.T) {
	snd := config.Cfg().Sounds
	if got := StatusSound(components.StatusNormal, snd); got != "" {
		t.Errorf("normal alarm = %q, want none", got)
	}
	if got := StatusSound(components.StatusDelaminating, snd); got != snd.StatusDelam {
		t.Errorf("delaminating alarm = %q", got)
	}
}

func TestSupermatterSystem_Consume(t *testing.T) {
	w, sys := newTestSystem()
	sm := components.NewSupermatter(config.Cfg())
	sm.Activated = false
	e := spawnCrystal(w, sm, components.Atmosphere{Mix: roomAir(293.15)})

	fx, err := sys.Consume(e, "a toolbox", 100, sec(1))
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	got := ecs.NewMap[components.Supermatter](w).Get(e)
	if !got.Activated {
		t.Error("consuming matter did not activate the crystal")
	}
	if got.MatterPower != 100 {
		t.Errorf("matter power = %v, want 100", got.MatterPower)
	}
	if len(fx) != 1 || fx[0].Sound != config.Cfg().Sounds.Dust {
		t.Errorf("effects = %+v", fx)
	}
	if n := len(countHazards(w, components.HazardAsh)); n != 1 {
		t.Errorf("%d ash piles, want 1", n)
	}

	notCrystal := ecs.NewMap1[components.Position](w).NewEntity(&components.Position{})
	if _, err := sys.Consume(notCrystal, "x", 1, sec(1)); !errors.Is(err, ErrNotSupermatter) {
		t.Errorf("err = %v, want ErrNotSupermatter", err)
	}
}

func TestSupermatterSystem_ExtractSliver(t *testing.T) {
	w, sys := newTestSystem()
	cfg := config.Cfg()
	sm := components.NewSupermatter(cfg)
	e := spawnCrystal(w, sm, components.Atmosphere{Mix: roomAir(293.15)})

	fx, err := sys.ExtractSliver(e, sec(1))
	if err != nil {
		t.Fatalf("ExtractSliver: %v", err)
	}
	got := ecs.NewMap[components.Supermatter](w).Get(e)
	if got.Damage != cfg.Supermatter.SliverDamage {
		t.Errorf("damage = %v, want %v", got.Damage, cfg.Supermatter.SliverDamage)
	}
	if got.DelamTimer != cfg.Derived.DelamTimer/2 {
		t.Errorf("delam timer = %v, want %v", got.DelamTimer, cfg.Derived.DelamTimer/2)
	}
	if len(fx) != 2 || fx[0].Kind != EffectSliver || fx[1].Key != "supermatter-tamper" {
		t.Errorf("effects = %+v", fx)
	}
	if n := len(countHazards(w, components.HazardSliver)); n != 1 {
		t.Errorf("%d slivers, want 1", n)
	}
}

func TestSupermatterSystem_ClampsBadThresholds(t *testing.T) {
	w, sys := newTestSystem()
	sm := components.NewSupermatter(config.Cfg())
	sm.Thresholds.DamageWarning = 700 // above the delam alert point
	e := spawnCrystal(w, sm, components.Atmosphere{Mix: roomAir(293.15)})

	sys.Update(sec(1))

	th := ecs.NewMap[components.Supermatter](w).Get(e).Thresholds
	order := []float64{th.DamageWarning, th.DamageDelamAlert, th.DamagePenaltyPoint, th.DamageDelamination}
	for i := 1; i < len(order); i++ {
		if order[i] < order[i-1] {
			t.Errorf("thresholds not monotonic: %v", order)
		}
	}
}

func TestRespondTo(t *testing.T) {
	table := gas.DefaultTable()
	tests := []struct {
		name        string
		composition gas.Storage
		want        GasResponse
	}{
		{"nitrogen", gas.Storage{gas.Nitrogen: 1}, GasResponse{PowerRatio: 0, HeatModifier: minHeatModifier, Transmission: 0, HeatResistance: 1}},
		{"oxygen", gas.Storage{gas.Oxygen: 1}, GasResponse{PowerRatio: 1, HeatModifier: 1, Transmission: 1.5, HeatResistance: 1}},
		{"nitrous", gas.Storage{gas.NitrousOxide: 1}, GasResponse{PowerRatio: 0, HeatModifier: minHeatModifier, Transmission: 0, HeatResistance: 6}},
		{"half plasma", gas.Storage{gas.Plasma: 0.5, gas.Nitrogen: 0.5}, GasResponse{PowerRatio: 0, HeatModifier: 6.75, Transmission: 2, HeatResistance: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RespondTo(table, tt.composition)
			if math.Abs(got.PowerRatio-tt.want.PowerRatio) > 1e-9 ||
				math.Abs(got.HeatModifier-tt.want.HeatModifier) > 1e-9 ||
				math.Abs(got.Transmission-tt.want.Transmission) > 1e-9 ||
				math.Abs(got.HeatResistance-tt.want.HeatResistance) > 1e-9 {
				t.Errorf("RespondTo = %+v, want %+v", got, tt.want)
			}
		})
	}
}
