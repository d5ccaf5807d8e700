package systems

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/monument"
)

// Errors returned by the monument intents.
var (
	ErrNotMonument         = errors.New("systems: entity is not a monument")
	ErrNotCultist          = errors.New("systems: entity is not a cultist")
	ErrLocked              = errors.New("systems: prototype not unlocked")
	ErrAlreadyOwned        = errors.New("systems: influence already owned")
	ErrInsufficientEntropy = errors.New("systems: not enough entropy")
)

// MonumentDeps are the host services the monument system is built with.
type MonumentDeps struct {
	Config     *config.Config
	Prototypes *monument.Prototypes
	Logger     *slog.Logger
}

// MonumentSystem owns the authoritative monument state. Entropy accrues
// every tick; crossing a stage threshold unlocks that stage's glyphs and
// influences. The presenter's intents are applied through SelectGlyph,
// RemoveGlyph and GainInfluence.
type MonumentSystem struct {
	world         *ecs.World
	filter        ecs.Filter1[components.Monument]
	cultistFilter ecs.Filter1[components.Cultist]
	monMap        *ecs.Map[components.Monument]
	cultMap       *ecs.Map[components.Cultist]

	protos        *monument.Prototypes
	entropyPerSec float64
	stageEntropy  []int
	crewPerStage  int
	log           *slog.Logger
	effects       []Effect
}

// NewMonumentSystem creates a monument system over w.
func NewMonumentSystem(w *ecs.World, deps MonumentDeps) *MonumentSystem {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	protos := deps.Prototypes
	if protos == nil {
		protos = monument.DefaultPrototypes()
	}
	mc := deps.Config.Monument
	return &MonumentSystem{
		world:         w,
		filter:        *ecs.NewFilter1[components.Monument](w),
		cultistFilter: *ecs.NewFilter1[components.Cultist](w),
		monMap:        ecs.NewMap[components.Monument](w),
		cultMap:       ecs.NewMap[components.Cultist](w),
		protos:        protos,
		entropyPerSec: mc.EntropyPerSecond,
		stageEntropy:  mc.StageEntropy,
		crewPerStage:  mc.CrewPerStage,
		log:           logger,
	}
}

// NewMonument returns a monument at stage zero with stage zero unlocked.
func (s *MonumentSystem) NewMonument() components.Monument {
	m := components.Monument{
		UnlockedGlyphs:     make(map[string]struct{}),
		UnlockedInfluences: make(map[string]struct{}),
	}
	s.unlock(&m)
	return m
}

// Update accrues entropy over dt and advances stages.
func (s *MonumentSystem) Update(dt time.Duration, now time.Duration) []Effect {
	s.effects = nil
	gain := s.entropyPerSec * dt.Seconds()

	query := s.filter.Query()
	for query.Next() {
		m := query.Get()
		m.Entropy += gain

		stage := StageFor(m.Entropy, s.stageEntropy)
		if stage <= m.Stage {
			continue
		}
		m.Stage = stage
		s.unlock(m)

		e := query.Entity()
		s.log.Info("monument stage reached",
			"entity", e.ID(),
			"stage", stage,
			"entropy", m.Entropy,
		)
		s.effects = append(s.effects, Effect{
			Kind:   EffectMonument,
			Entity: e,
			Time:   now,
			Key:    "stage",
			Count:  stage,
		})
	}
	return s.effects
}

// StageFor returns the highest stage whose entropy threshold is reached.
func StageFor(entropy float64, thresholds []int) int {
	stage := 0
	for i, th := range thresholds {
		if entropy >= float64(th) {
			stage = i
		}
	}
	return stage
}

func (s *MonumentSystem) unlock(m *components.Monument) {
	for _, g := range s.protos.Glyphs {
		if g.Stage <= m.Stage {
			m.UnlockedGlyphs[g.ID] = struct{}{}
		}
	}
	for _, inf := range s.protos.Influences {
		if inf.Stage <= m.Stage {
			m.UnlockedInfluences[inf.ID] = struct{}{}
		}
	}
}

// Snapshot builds the presenter state for a monument.
func (s *MonumentSystem) Snapshot(e ecs.Entity) (monument.State, error) {
	m, err := s.monument(e)
	if err != nil {
		return monument.State{}, err
	}

	st := monument.State{
		SelectedGlyph:      m.SelectedGlyph,
		UnlockedGlyphs:     m.UnlockedGlyphs,
		UnlockedInfluences: m.UnlockedInfluences,
		AvailableEntropy:   int(math.Floor(m.Available())),
	}

	if n := len(s.stageEntropy); n > 0 {
		final := float64(s.stageEntropy[n-1])
		if final > 0 {
			st.PercentageComplete = clamp(m.Entropy/final*100, 0, 100)
		} else {
			st.PercentageComplete = 100
		}
		if m.Stage+1 < n {
			st.EntropyUntilNextStage = int(math.Ceil(float64(s.stageEntropy[m.Stage+1]) - m.Entropy))
		}
	}

	crew := 0
	query := s.cultistFilter.Query()
	for query.Next() {
		crew += query.Get().CrewConverted
	}
	st.CrewToConvertUntilNextStage = max(s.crewPerStage*(m.Stage+1)-crew, 0)
	return st, nil
}

// LocalCultist returns the local player's cultist record.
func (s *MonumentSystem) LocalCultist() (*components.Cultist, ecs.Entity, bool) {
	query := s.cultistFilter.Query()
	for query.Next() {
		if c := query.Get(); c.Local {
			e := query.Entity()
			query.Close()
			return c, e, true
		}
	}
	return nil, ecs.Entity{}, false
}

// SelectGlyph sets the monument's active glyph.
func (s *MonumentSystem) SelectGlyph(e ecs.Entity, id string) error {
	m, err := s.monument(e)
	if err != nil {
		return err
	}
	if _, err := s.protos.Glyph(id); err != nil {
		return err
	}
	if _, ok := m.UnlockedGlyphs[id]; !ok {
		return fmt.Errorf("glyph %q: %w", id, ErrLocked)
	}
	m.SelectedGlyph = id
	s.log.Info("monument glyph selected", "entity", e.ID(), "glyph", id)
	return nil
}

// RemoveGlyph clears the monument's active glyph.
func (s *MonumentSystem) RemoveGlyph(e ecs.Entity) error {
	m, err := s.monument(e)
	if err != nil {
		return err
	}
	m.SelectedGlyph = ""
	return nil
}

// GainInfluence buys an influence for a cultist with the monument's entropy.
func (s *MonumentSystem) GainInfluence(e, cultist ecs.Entity, id string) error {
	m, err := s.monument(e)
	if err != nil {
		return err
	}
	if !s.world.Alive(cultist) || !s.cultMap.Has(cultist) {
		return ErrNotCultist
	}
	c := s.cultMap.Get(cultist)

	inf, err := s.protos.Influence(id)
	if err != nil {
		return err
	}
	if c.Owns(id) {
		return fmt.Errorf("influence %q: %w", id, ErrAlreadyOwned)
	}
	if _, ok := m.UnlockedInfluences[id]; !ok {
		return fmt.Errorf("influence %q: %w", id, ErrLocked)
	}
	if float64(inf.Cost) > m.Available() {
		return fmt.Errorf("influence %q costs %d: %w", id, inf.Cost, ErrInsufficientEntropy)
	}

	m.Spent += float64(inf.Cost)
	if c.OwnedInfluences == nil {
		c.OwnedInfluences = make(map[string]struct{})
	}
	c.OwnedInfluences[id] = struct{}{}

	s.log.Info("influence gained",
		"cultist", c.Name,
		"influence", id,
		"cost", inf.Cost,
		"remaining", m.Available(),
	)
	return nil
}

func (s *MonumentSystem) monument(e ecs.Entity) (*components.Monument, error) {
	if !s.world.Alive(e) || !s.monMap.Has(e) {
		return nil, ErrNotMonument
	}
	return s.monMap.Get(e), nil
}
