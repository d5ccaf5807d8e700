package game

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/telemetry"
)

func init() {
	config.MustInit("")
}

func newTestGame(t *testing.T, mutate func(*config.Config), opts Options) *Game {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	opts.Config = cfg
	opts.Headless = true
	opts.Seed = 1
	opts.Logger = slog.New(slog.DiscardHandler)

	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestNewGame_SpawnsReactors(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) { c.Sim.Reactors = 3 }, Options{})

	if got := len(g.Reactors()); got != 3 {
		t.Fatalf("reactors = %d, want 3", got)
	}

	snap := g.Snapshot(nil)
	if len(snap.Reactors) != 3 {
		t.Errorf("snapshot reactors = %d, want 3", len(snap.Reactors))
	}
	if snap.Monument == nil {
		t.Error("snapshot has no monument")
	}
	if snap.Seed != 1 || snap.Version != telemetry.SnapshotVersion {
		t.Errorf("snapshot header = seed %d version %d", snap.Seed, snap.Version)
	}
}

func TestNewGame_MonumentDisabled(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) { c.Monument.Enabled = false }, Options{})

	if g.Presenter() != nil {
		t.Error("presenter created with the monument disabled")
	}
	g.UpdateHeadless()
	if snap := g.Snapshot(nil); snap.Monument != nil {
		t.Error("snapshot has a monument while disabled")
	}
}

func TestGame_TickAdvancesTime(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	dt := g.cfg.Derived.DT

	for range 5 {
		g.UpdateHeadless()
	}
	if g.Tick() != 5 {
		t.Errorf("tick = %d, want 5", g.Tick())
	}
	if g.Now() != 5*dt {
		t.Errorf("now = %v, want %v", g.Now(), 5*dt)
	}
}

func TestGame_StepReturnsSnapshot(t *testing.T) {
	g := newTestGame(t, nil, Options{})

	snap, _ := g.Step()
	if snap.Tick != 1 {
		t.Errorf("snapshot tick = %d, want 1", snap.Tick)
	}
	if snap.SimTime != g.cfg.Derived.DT.Seconds() {
		t.Errorf("sim time = %v", snap.SimTime)
	}
}

func TestGame_MonumentAdvances(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) {
		c.Monument.EntropyPerSecond = 1
		c.Monument.StageEntropy = []int{0, 60, 180}
	}, Options{})
	if g.cfg.Derived.DT != time.Second {
		t.Skipf("default tick is %v", g.cfg.Derived.DT)
	}

	for range 60 {
		g.UpdateHeadless()
	}

	snap := g.Snapshot(nil)
	if snap.Monument.Stage != 1 {
		t.Errorf("stage = %d, want 1", snap.Monument.Stage)
	}
	if p := g.Presenter().View().Progress; p < 33 {
		t.Errorf("presenter progress = %v, want >= 33", p)
	}
}

func TestGame_ConsumeWakesCrystal(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	e := g.Reactors()[0]

	if err := g.Consume(e, "toolbox"); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	sm := g.Supermatter(e)
	if !sm.Activated {
		t.Error("crystal not activated")
	}
	if sm.MatterPower != consumeMatter {
		t.Errorf("matter power = %v, want %v", sm.MatterPower, consumeMatter)
	}

	found := false
	for _, ev := range g.events {
		if ev.Kind == "consume" && ev.Reactor == e.ID() {
			found = true
		}
	}
	if !found {
		t.Errorf("no consume event in %+v", g.events)
	}
}

func TestGame_WritesTelemetry(t *testing.T) {
	dir := t.TempDir()
	g := newTestGame(t, nil, Options{OutputDir: dir})

	for range g.cfg.Derived.StatsWindowTicks {
		g.UpdateHeadless()
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	stats, err := telemetry.ReadTelemetry(filepath.Join(dir, telemetry.ReactorFile))
	if err != nil {
		t.Fatalf("ReadTelemetry: %v", err)
	}
	if len(stats) == 0 {
		t.Error("no telemetry windows written")
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config not written: %v", err)
	}
}

func TestGame_AnnouncementHistory(t *testing.T) {
	g := newTestGame(t, nil, Options{})

	for i := range announcementHistory + 3 {
		g.pushAnnouncement(string(rune('a' + i)))
	}
	if got := len(g.Announcements()); got != announcementHistory {
		t.Fatalf("history = %d, want %d", got, announcementHistory)
	}
	if g.Announcements()[0] != "d" {
		t.Errorf("oldest = %q, want d", g.Announcements()[0])
	}
}
