// Package game owns the ECS world and runs the reactor floor: it spawns
// the crystals and the monument, steps every system once per tick and
// routes their effects to logging, telemetry, the monitor and audio.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/supermatter/audio"
	"github.com/pthm-cable/supermatter/camera"
	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/gas"
	"github.com/pthm-cable/supermatter/inspector"
	"github.com/pthm-cable/supermatter/locale"
	"github.com/pthm-cable/supermatter/monitor"
	"github.com/pthm-cable/supermatter/monument"
	"github.com/pthm-cable/supermatter/systems"
	"github.com/pthm-cable/supermatter/telemetry"
	"github.com/pthm-cable/supermatter/ui"
)

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	log   *slog.Logger
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	reactorMapper *ecs.Map3[components.Supermatter, components.Atmosphere, components.Position]
	reactorFilter ecs.Filter3[components.Supermatter, components.Atmosphere, components.Position]
	hazardFilter  ecs.Filter2[components.Position, components.Hazard]
	smMap         *ecs.Map[components.Supermatter]
	atmosMap      *ecs.Map[components.Atmosphere]
	posMap        *ecs.Map[components.Position]
	monumentMap   *ecs.Map[components.Monument]

	// Systems in tick order
	registry    *systems.SystemRegistry
	atmosphere  *systems.AtmosphereSystem
	supermatter *systems.SupermatterSystem
	hazards     *systems.HazardSystem
	monuments   *systems.MonumentSystem // nil when the monument is disabled

	monumentEntity ecs.Entity
	presenter      *monument.Presenter
	lastMonument   monumentKey

	// Telemetry
	collector   *telemetry.Collector
	bookmarks   *telemetry.BookmarkDetector
	output      *telemetry.OutputManager
	snapshotDir string
	logStats    bool
	perf        *PerfStats

	// Observers
	monitor *monitor.Hub
	sound   *audio.SoundBoard

	// State
	tick           int32
	now            time.Duration
	paused         bool
	stepsPerUpdate int
	accum          time.Duration
	worldW, worldH float32

	effects       []systems.Effect
	events        []telemetry.Event // Events of the last tick
	announcements []string

	// Rendering (nil when headless)
	headless      bool
	screenW       int32
	screenH       int32
	camera        *camera.Camera
	hud           *ui.HUD
	reactorPanel  *ui.ReactorPanel
	monumentPanel *ui.MonumentPanel
	announceLog   *ui.AnnouncementLog
	perfPanel     *ui.PerfPanel
	controls      *ui.ControlsPanel
	overlays      *ui.OverlayRegistry
	help          *ui.HelpOverlay
	inspector     *inspector.Inspector
	showPerf      bool
}

// NewGame creates a headless game with default options.
func NewGame() (*Game, error) {
	return NewGameWithOptions(Options{Headless: true})
}

// NewGameWithOptions creates a game, spawns the configured crystals and,
// when enabled, the monument with a local cultist.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Sim.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	loc, err := locale.Load(cfg.Monument.LocalePath)
	if err != nil {
		return nil, fmt.Errorf("loading locale: %w", err)
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(seed))

	g := &Game{
		cfg:            cfg,
		log:            logger,
		world:          world,
		rng:            rng,
		seed:           seed,
		reactorMapper:  ecs.NewMap3[components.Supermatter, components.Atmosphere, components.Position](world),
		reactorFilter:  *ecs.NewFilter3[components.Supermatter, components.Atmosphere, components.Position](world),
		hazardFilter:   *ecs.NewFilter2[components.Position, components.Hazard](world),
		smMap:          ecs.NewMap[components.Supermatter](world),
		atmosMap:       ecs.NewMap[components.Atmosphere](world),
		posMap:         ecs.NewMap[components.Position](world),
		monumentMap:    ecs.NewMap[components.Monument](world),
		registry:       systems.NewSystemRegistry(),
		snapshotDir:    opts.SnapshotDir,
		logStats:       opts.LogStats,
		perf:           NewPerfStats(120),
		monitor:        opts.Monitor,
		sound:          opts.Sound,
		stepsPerUpdate: MinSpeed,
		headless:       opts.Headless,
	}

	g.atmosphere = systems.NewAtmosphereSystem(world, cfg)
	g.supermatter = systems.NewSupermatterSystem(world, systems.SupermatterDeps{
		Config: cfg,
		Loc:    loc,
		Rng:    rng,
		Logger: logger,
	})
	g.hazards = systems.NewHazardSystem(world, logger)
	if cfg.Monument.Enabled {
		if err := g.setupMonument(loc); err != nil {
			return nil, err
		}
	}

	g.collector = telemetry.NewCollector(cfg.Derived.StatsWindowTicks, cfg.Derived.DT)
	g.bookmarks = telemetry.NewBookmarkDetector(cfg.Telemetry.AlertHistorySize)
	if g.output, err = telemetry.NewOutputManager(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	if err := g.output.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	g.spawnReactors()
	if !opts.Headless {
		g.initRendering()
	}

	g.logStartup()
	g.publishSnapshot()
	return g, nil
}

// spawnReactors places the configured crystals in a row across the floor.
func (g *Game) spawnReactors() {
	n := g.cfg.Sim.Reactors
	spacing := float32(g.cfg.Sim.Spacing)
	g.worldW = spacing * float32(n+1)
	g.worldH = spacing * 2

	for i := range n {
		g.SpawnReactor(spacing*float32(i+1), spacing)
	}
}

// SpawnReactor creates a crystal on a fresh scenario tile at (x, y).
func (g *Game) SpawnReactor(x, y float32) ecs.Entity {
	sm := components.NewSupermatter(g.cfg)
	atmos := components.Atmosphere{
		Mix: gas.Mixture{
			Moles:       g.cfg.Derived.AtmosphereMix,
			Temperature: g.cfg.Atmosphere.Temperature,
		},
		Exposed: g.cfg.Atmosphere.Exposed,
	}
	pos := components.Position{X: x, Y: y}

	e := g.reactorMapper.NewEntity(&sm, &atmos, &pos)
	g.log.Info("crystal spawned",
		"reactor", e.ID(),
		"x", x,
		"y", y,
		"activated", sm.Activated,
	)
	return e
}

// setupMonument loads the prototypes and spawns the monument and the
// local player's cultist record.
func (g *Game) setupMonument(loc *locale.Catalog) error {
	protos, err := monument.LoadPrototypes(g.cfg.Monument.PrototypesPath)
	if err != nil {
		return fmt.Errorf("loading monument prototypes: %w", err)
	}

	g.monuments = systems.NewMonumentSystem(g.world, systems.MonumentDeps{
		Config:     g.cfg,
		Prototypes: protos,
		Logger:     g.log,
	})

	m := g.monuments.NewMonument()
	g.monumentEntity = ecs.NewMap1[components.Monument](g.world).NewEntity(&m)
	cult := components.Cultist{Name: "local", Local: true}
	ecs.NewMap1[components.Cultist](g.world).NewEntity(&cult)

	g.presenter = monument.NewPresenter(monument.Deps{
		Prototypes:  protos,
		LocalPlayer: g.localPlayer,
		Loc:         loc,
		Logger:      g.log,
	})
	g.presenter.OnSelectGlyph = g.selectGlyph
	g.presenter.OnRemoveGlyph = g.removeGlyph
	g.presenter.OnGain = g.gainInfluence

	g.refreshMonument(true)
	return nil
}

// UpdateHeadless advances the simulation one tick.
func (g *Game) UpdateHeadless() {
	g.step()
}

// Step advances one tick and returns the post-tick snapshot with the
// events the tick produced.
func (g *Game) Step() (*telemetry.Snapshot, []telemetry.Event) {
	g.step()
	return g.Snapshot(nil), g.events
}

// Reactors returns the live crystals in spawn order.
func (g *Game) Reactors() []ecs.Entity {
	var out []ecs.Entity
	query := g.reactorFilter.Query()
	for query.Next() {
		out = append(out, query.Entity())
	}
	return out
}

// Supermatter returns a crystal's state, nil if e is not a live crystal.
func (g *Game) Supermatter(e ecs.Entity) *components.Supermatter {
	if !g.world.Alive(e) || !g.smMap.Has(e) {
		return nil
	}
	return g.smMap.Get(e)
}

// Consume throws an object into crystal e.
func (g *Game) Consume(e ecs.Entity, target string) error {
	fx, err := g.supermatter.Consume(e, target, consumeMatter, g.now)
	if err != nil {
		return err
	}
	g.dispatch(fx)
	return nil
}

// ExtractSliver cuts a sliver from crystal e.
func (g *Game) ExtractSliver(e ecs.Entity) error {
	fx, err := g.supermatter.ExtractSliver(e, g.now)
	if err != nil {
		return err
	}
	g.dispatch(fx)
	return nil
}

// Presenter returns the monument panel presenter, nil when disabled.
func (g *Game) Presenter() *monument.Presenter {
	return g.presenter
}

// HazardCounts returns the live hazards by kind.
func (g *Game) HazardCounts() map[components.HazardKind]int {
	return g.hazards.Count()
}

// Announcements returns the most recent radio messages, oldest first.
func (g *Game) Announcements() []string {
	return g.announcements
}

// Tick returns the current tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Now returns the simulated time.
func (g *Game) Now() time.Duration {
	return g.now
}

// Seed returns the RNG seed in use.
func (g *Game) Seed() int64 {
	return g.seed
}

// Registry returns the system metadata.
func (g *Game) Registry() *systems.SystemRegistry {
	return g.registry
}

// Perf returns the per-system timings.
func (g *Game) Perf() *PerfStats {
	return g.perf
}

// Paused reports whether the GUI loop is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// Close flushes and closes the telemetry files.
func (g *Game) Close() error {
	return g.output.Close()
}
