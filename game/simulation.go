package game

import (
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/supermatter/systems"
	"github.com/pthm-cable/supermatter/telemetry"
)

// step runs one simulation tick.
func (g *Game) step() {
	dt := g.cfg.Derived.DT
	g.tick++
	g.now += dt
	g.effects = g.effects[:0]
	g.events = nil

	g.timed("atmosphere", func() {
		g.atmosphere.Update(dt)
	})
	g.timed("supermatter", func() {
		g.effects = append(g.effects, g.supermatter.Update(g.now)...)
	})
	g.timed("hazards", func() {
		g.hazards.Update(g.now)
	})
	if g.monuments != nil {
		g.timed("monument", func() {
			g.effects = append(g.effects, g.monuments.Update(dt, g.now)...)
		})
	}

	g.timed("telemetry", func() {
		g.sampleReactors()
		g.dispatch(g.effects)
		g.flushTelemetry()
	})

	g.refreshMonument(false)
	g.publishSnapshot()
}

// timed runs fn and records its wall time under name.
func (g *Game) timed(name string, fn func()) {
	start := time.Now()
	fn()
	g.perf.Record(name, time.Since(start))
}

// dispatch routes effects to every observer and records them as events.
func (g *Game) dispatch(effects []systems.Effect) {
	if len(effects) == 0 {
		return
	}

	batch := make([]telemetry.Event, 0, len(effects))
	for _, fx := range effects {
		g.collector.RecordEffect(fx)
		ev := telemetry.NewEvent(g.tick, fx)
		batch = append(batch, ev)

		if g.monitor != nil {
			g.monitor.PublishEvent(ev)
		}
		if g.sound != nil {
			g.sound.Handle(fx)
		}
		g.logEffect(fx)
	}

	g.events = append(g.events, batch...)
	if err := g.output.WriteEvents(batch); err != nil {
		slog.Error("failed to write events", "error", err)
	}
}

// Update runs one GUI frame: input, then as many fixed ticks as the
// elapsed frame time and speed setting allow.
func (g *Game) Update() {
	g.handleInput()
	if g.paused {
		return
	}

	dt := g.cfg.Derived.DT
	frame := time.Duration(float64(rl.GetFrameTime()) * float64(time.Second))
	g.accum += frame * time.Duration(g.stepsPerUpdate)

	steps := 0
	for g.accum >= dt && steps < MaxSpeed {
		g.step()
		g.accum -= dt
		steps++
	}
	// Drop backlog we could not catch up on rather than spiralling
	if steps == MaxSpeed {
		g.accum = 0
	}
}
