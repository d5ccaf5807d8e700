package game

import (
	"math"

	"github.com/pthm-cable/supermatter/monument"
)

// monumentKey is the part of the monument state the panel displays.
// The presenter is only pushed a new state when it changes.
type monumentKey struct {
	stage     int
	selected  string
	available int
	untilNext int
	crew      int
	owned     int
	percent   int
}

// refreshMonument pushes the monument state to the presenter when it
// changed since the last push, or unconditionally when force is set.
func (g *Game) refreshMonument(force bool) {
	if g.monuments == nil {
		return
	}
	st, err := g.monuments.Snapshot(g.monumentEntity)
	if err != nil {
		g.log.Warn("monument snapshot failed", "error", err)
		return
	}

	key := monumentKey{
		stage:     g.monumentMap.Get(g.monumentEntity).Stage,
		selected:  st.SelectedGlyph,
		available: st.AvailableEntropy,
		untilNext: st.EntropyUntilNextStage,
		crew:      st.CrewToConvertUntilNextStage,
		percent:   int(math.Floor(st.PercentageComplete)),
	}
	if c, _, ok := g.monuments.LocalCultist(); ok {
		key.owned = len(c.OwnedInfluences)
	}
	if !force && key == g.lastMonument {
		return
	}
	g.lastMonument = key
	g.presenter.UpdateState(st)
}

// localPlayer reports the local cultist to the presenter.
func (g *Game) localPlayer() (monument.Owner, bool) {
	c, _, ok := g.monuments.LocalCultist()
	if !ok {
		return nil, false
	}
	return c, true
}

func (g *Game) selectGlyph(id string) {
	if err := g.monuments.SelectGlyph(g.monumentEntity, id); err != nil {
		g.log.Warn("glyph selection rejected", "glyph", id, "error", err)
	}
	g.refreshMonument(true)
}

func (g *Game) removeGlyph() {
	if err := g.monuments.RemoveGlyph(g.monumentEntity); err != nil {
		g.log.Warn("glyph removal rejected", "error", err)
	}
	g.refreshMonument(true)
}

func (g *Game) gainInfluence(id string) {
	_, ce, ok := g.monuments.LocalCultist()
	if !ok {
		g.log.Warn("influence gain without a local cultist", "influence", id)
		return
	}
	if err := g.monuments.GainInfluence(g.monumentEntity, ce, id); err != nil {
		g.log.Warn("influence gain rejected", "influence", id, "error", err)
	}
	g.refreshMonument(true)
}
