package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/supermatter/components"
)

// pickRadius is how far from a crystal's center a click still selects
// it, in tiles.
const pickRadius = 0.75

// reactorAt returns the crystal under a screen position, if any.
func (g *Game) reactorAt(sx, sy float32) (ecs.Entity, bool) {
	wx, wy := g.camera.ScreenToWorld(sx, sy)

	var found ecs.Entity
	best := float32(pickRadius * pickRadius)
	ok := false

	query := g.reactorFilter.Query()
	for query.Next() {
		_, _, pos := query.Get()
		dx, dy := pos.X-wx, pos.Y-wy
		if d := dx*dx + dy*dy; d <= best {
			best = d
			found = query.Entity()
			ok = true
		}
	}
	return found, ok
}

// selectNext moves the inspector to the crystal after the current one.
func (g *Game) selectNext() {
	reactors := g.Reactors()
	if len(reactors) == 0 {
		return
	}
	next := 0
	if cur, ok := g.inspector.Selected(); ok {
		for i, e := range reactors {
			if e == cur {
				next = (i + 1) % len(reactors)
				break
			}
		}
	}
	g.inspector.Select(reactors[next])
	pos := g.posMap.Get(reactors[next])
	g.camera.CenterOn(pos.X, pos.Y)
}

// selectedReactor returns the inspected crystal's components. A crystal
// that no longer exists is deselected.
func (g *Game) selectedReactor() (ecs.Entity, *components.Supermatter, bool) {
	if g.inspector == nil {
		return ecs.Entity{}, nil, false
	}
	e, ok := g.inspector.Selected()
	if !ok {
		return ecs.Entity{}, nil, false
	}
	sm := g.Supermatter(e)
	if sm == nil {
		g.inspector.Deselect()
		return ecs.Entity{}, nil, false
	}
	return e, sm, true
}
