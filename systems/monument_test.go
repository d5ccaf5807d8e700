package systems

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/monument"
)

func newMonumentWorld(t *testing.T) (*ecs.World, *MonumentSystem, ecs.Entity, ecs.Entity) {
	t.Helper()
	w := ecs.NewWorld()
	sys := NewMonumentSystem(w, MonumentDeps{
		Config: config.Cfg(),
		Logger: slog.New(slog.DiscardHandler),
	})
	mon := sys.NewMonument()
	me := ecs.NewMap1[components.Monument](w).NewEntity(&mon)
	cult := components.Cultist{Name: "local", Local: true}
	ce := ecs.NewMap1[components.Cultist](w).NewEntity(&cult)
	return w, sys, me, ce
}

func TestStageFor(t *testing.T) {
	stages := []int{0, 60, 180}
	tests := []struct {
		entropy float64
		want    int
	}{
		{0, 0},
		{59.9, 0},
		{60, 1},
		{179, 1},
		{500, 2},
	}
	for _, tt := range tests {
		if got := StageFor(tt.entropy, stages); got != tt.want {
			t.Errorf("StageFor(%v) = %d, want %d", tt.entropy, got, tt.want)
		}
	}
}

func TestMonumentSystem_StageUnlocks(t *testing.T) {
	w, sys, me, _ := newMonumentWorld(t)
	monMap := ecs.NewMap[components.Monument](w)

	if _, ok := monMap.Get(me).UnlockedGlyphs["CosmicGlyphNull"]; ok {
		t.Fatal("stage 1 glyph unlocked at stage 0")
	}

	var fx []Effect
	for i := 1; i <= 60; i++ {
		fx = append(fx, sys.Update(time.Second, time.Duration(i)*time.Second)...)
	}

	m := monMap.Get(me)
	if m.Stage != 1 {
		t.Fatalf("stage = %d, want 1", m.Stage)
	}
	if _, ok := m.UnlockedGlyphs["CosmicGlyphNull"]; !ok {
		t.Error("stage 1 glyph still locked")
	}
	if _, ok := m.UnlockedInfluences["InfluenceAstralLance"]; ok {
		t.Error("stage 2 influence unlocked early")
	}
	if len(fx) != 1 || fx[0].Kind != EffectMonument || fx[0].Count != 1 {
		t.Errorf("effects = %+v", fx)
	}
}

func TestMonumentSystem_Intents(t *testing.T) {
	w, sys, me, ce := newMonumentWorld(t)
	monMap := ecs.NewMap[components.Monument](w)
	monMap.Get(me).Entropy = 30

	if err := sys.SelectGlyph(me, "CosmicGlyphNull"); !errors.Is(err, ErrLocked) {
		t.Errorf("locked glyph: err = %v", err)
	}
	if err := sys.SelectGlyph(me, "nope"); !errors.Is(err, monument.ErrUnknownPrototype) {
		t.Errorf("unknown glyph: err = %v", err)
	}
	if err := sys.SelectGlyph(me, "CosmicGlyphProjection"); err != nil {
		t.Fatalf("SelectGlyph: %v", err)
	}
	if got := monMap.Get(me).SelectedGlyph; got != "CosmicGlyphProjection" {
		t.Errorf("selected = %q", got)
	}
	if err := sys.RemoveGlyph(me); err != nil || monMap.Get(me).SelectedGlyph != "" {
		t.Errorf("RemoveGlyph: err = %v, selected = %q", err, monMap.Get(me).SelectedGlyph)
	}

	if err := sys.GainInfluence(me, ce, "InfluenceAbyssalGaze"); err != nil {
		t.Fatalf("GainInfluence: %v", err)
	}
	if got := monMap.Get(me).Available(); got != 10 {
		t.Errorf("available = %v, want 10", got)
	}
	if err := sys.GainInfluence(me, ce, "InfluenceAbyssalGaze"); !errors.Is(err, ErrAlreadyOwned) {
		t.Errorf("repeat purchase: err = %v", err)
	}
	if err := sys.GainInfluence(me, ce, "InfluenceEventHorizon"); !errors.Is(err, ErrLocked) {
		t.Errorf("locked influence: err = %v", err)
	}

	monMap.Get(me).UnlockedInfluences["InfluenceEventHorizon"] = struct{}{}
	if err := sys.GainInfluence(me, ce, "InfluenceEventHorizon"); !errors.Is(err, ErrInsufficientEntropy) {
		t.Errorf("unaffordable influence: err = %v", err)
	}
	if err := sys.GainInfluence(me, me, "InfluenceAbyssalGaze"); !errors.Is(err, ErrNotCultist) {
		t.Errorf("non-cultist: err = %v", err)
	}
}

func TestMonumentSystem_Snapshot(t *testing.T) {
	w, sys, me, ce := newMonumentWorld(t)
	ecs.NewMap[components.Monument](w).Get(me).Entropy = 45
	ecs.NewMap[components.Cultist](w).Get(ce).CrewConverted = 1

	st, err := sys.Snapshot(me)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if st.PercentageComplete != 25 {
		t.Errorf("percentage = %v, want 25", st.PercentageComplete)
	}
	if st.AvailableEntropy != 45 {
		t.Errorf("available = %d, want 45", st.AvailableEntropy)
	}
	if st.EntropyUntilNextStage != 15 {
		t.Errorf("until next stage = %d, want 15", st.EntropyUntilNextStage)
	}
	if st.CrewToConvertUntilNextStage != 3 {
		t.Errorf("crew = %d, want 3", st.CrewToConvertUntilNextStage)
	}

	c, e, ok := sys.LocalCultist()
	if !ok || e != ce || c.Name != "local" {
		t.Errorf("LocalCultist = %v, %v, %v", c, e, ok)
	}
}
