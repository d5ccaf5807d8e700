package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/supermatter/gas"
)

func TestLoad_EmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Derived.DT != time.Second {
		t.Errorf("DT = %v, want 1s", cfg.Derived.DT)
	}
	if cfg.Derived.DelamTimer != 30*time.Second {
		t.Errorf("DelamTimer = %v, want 30s", cfg.Derived.DelamTimer)
	}
	if cfg.Derived.ZapCooldown != 2500*time.Millisecond {
		t.Errorf("ZapCooldown = %v", cfg.Derived.ZapCooldown)
	}
	if cfg.Derived.StatsWindowTicks != 10 {
		t.Errorf("StatsWindowTicks = %d, want 10", cfg.Derived.StatsWindowTicks)
	}
	if cfg.Derived.GasTable.Len() != gas.NumSpecies {
		t.Errorf("gas table has %d entries", cfg.Derived.GasTable.Len())
	}
	if cfg.Derived.AtmosphereMix[gas.Nitrogen] != 80 {
		t.Errorf("initial nitrogen = %v", cfg.Derived.AtmosphereMix[gas.Nitrogen])
	}
	if len(cfg.Prototypes.Lightning) != 3 {
		t.Errorf("lightning tiers = %d", len(cfg.Prototypes.Lightning))
	}
}

func TestLoad_UserFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	data := []byte("sim:\n  dt: 0.5\ngases:\n  plasma:\n    transmit_modifier: 1\n    heat_penalty: 2\n    power_mix_ratio: 1\n    heat_resistance: 1\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sim.DT != 0.5 {
		t.Errorf("dt = %v, want 0.5", cfg.Sim.DT)
	}
	// Untouched keys keep their defaults.
	if cfg.Thresholds.DamageDelamination != 900 {
		t.Errorf("delamination point = %v", cfg.Thresholds.DamageDelamination)
	}
	if got := cfg.Derived.GasTable.Fact(gas.Plasma).HeatPenalty; got != 2 {
		t.Errorf("plasma heat penalty = %v, want 2", got)
	}
	if got := cfg.Derived.GasTable.Fact(gas.Tritium).TransmitModifier; got != 30 {
		t.Errorf("tritium transmit = %v, want stock 30", got)
	}
}

func TestLoad_RejectsUnknownGas(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("gases:\n  helium:\n    heat_penalty: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown gas species")
	}
}

func TestThresholds_Validate(t *testing.T) {
	base := Default().Thresholds

	tests := []struct {
		name   string
		mutate func(*Thresholds)
		ok     bool
	}{
		{"defaults", func(*Thresholds) {}, true},
		{"warning above emergency", func(th *Thresholds) { th.DamageWarning = 600 }, false},
		{"penalty above delamination", func(th *Thresholds) { th.DamagePenaltyPoint = 1000 }, false},
		{"emergency equals delamination", func(th *Thresholds) { th.DamageEmergency = th.DamageDelamination }, true},
		{"severe below penalty", func(th *Thresholds) { th.SeverePowerPenalty = 100 }, false},
		{"critical equals severe", func(th *Thresholds) { th.CriticalPowerPenalty = th.SeverePowerPenalty }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := base
			tt.mutate(&th)
			err := th.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrThresholdOrder) {
				t.Errorf("error = %v, want ErrThresholdOrder", err)
			}
		})
	}
}

func TestThresholds_Clamped(t *testing.T) {
	th := Thresholds{
		DamageWarning:        500,
		DamageEmergency:      100,
		DamageDelamAlert:     50,
		DamagePenaltyPoint:   550,
		DamageDelamination:   300,
		PowerPenalty:         9000,
		SeverePowerPenalty:   7000,
		CriticalPowerPenalty: 5000,
	}

	out, changed := th.Clamped()
	if !changed {
		t.Fatal("expected clamping to change inverted thresholds")
	}
	if err := out.Validate(); err != nil && !errors.Is(err, ErrThresholdOrder) {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.DamageDelamination < out.DamagePenaltyPoint || out.DamagePenaltyPoint < out.DamageDelamAlert ||
		out.DamageDelamAlert < out.DamageWarning || out.DamageEmergency < out.DamageWarning ||
		out.DamageEmergency > out.DamageDelamination {
		t.Errorf("damage thresholds not monotonic: %+v", out)
	}
	if out.SeverePowerPenalty < out.PowerPenalty || out.CriticalPowerPenalty < out.SeverePowerPenalty {
		t.Errorf("power thresholds not monotonic: %+v", out)
	}

	if _, changed := Default().Thresholds.Clamped(); changed {
		t.Error("valid thresholds should be left untouched")
	}
}

func TestThresholds_ClampedReportsEqualNeighbours(t *testing.T) {
	th := Default().Thresholds
	th.SeverePowerPenalty = th.PowerPenalty
	if th.Validate() == nil {
		t.Fatal("equal power penalties should fail validation")
	}
	if _, changed := th.Clamped(); !changed {
		t.Error("Clamped should report a set that Validate rejects")
	}
}

func TestValidate_RejectsBadTick(t *testing.T) {
	cfg := Default()
	cfg.Sim.DT = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero dt")
	}

	cfg = Default()
	cfg.Supermatter.GasEfficiency = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for gas efficiency above 1")
	}
}

func TestWriteYAML_RoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Timing.YellTimer = 12

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Derived.YellTimer != 12*time.Second {
		t.Errorf("yell timer = %v, want 12s", loaded.Derived.YellTimer)
	}
}
