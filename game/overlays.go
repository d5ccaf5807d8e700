package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/ui"
)

// Hazard colors
var (
	colorBolt    = rl.Color{R: 170, G: 200, B: 255, A: 255}
	colorAnomaly = rl.Color{R: 200, G: 90, B: 220, A: 220}
	colorRemnant = rl.Color{R: 255, G: 140, B: 40, A: 255}
	colorRange   = rl.Color{R: 200, G: 90, B: 220, A: 60}
)

// drawOverlays renders every enabled hazard overlay.
func (g *Game) drawOverlays() {
	if g.overlays.IsEnabled(ui.OverlayAnomalyRange) {
		g.drawAnomalyRange()
	}

	bolts := g.overlays.IsEnabled(ui.OverlayLightning)
	anomalies := g.overlays.IsEnabled(ui.OverlayAnomalies)
	remnants := g.overlays.IsEnabled(ui.OverlayRemnants)
	if !bolts && !anomalies && !remnants {
		return
	}

	query := g.hazardFilter.Query()
	for query.Next() {
		pos, hz := query.Get()
		sx, sy := g.camera.WorldToScreen(pos.X, pos.Y)

		switch hz.Kind {
		case components.HazardLightning:
			if !bolts {
				continue
			}
			tx, ty := g.camera.WorldToScreen(hz.TargetX, hz.TargetY)
			rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: tx, Y: ty}, float32(1+hz.Tier), colorBolt)
		case components.HazardAnomaly:
			if anomalies {
				rl.DrawCircleLines(int32(sx), int32(sy), g.camera.Zoom*0.4, colorAnomaly)
			}
		case components.HazardRemnant:
			if remnants {
				rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, g.camera.Zoom*0.8, colorRemnant)
			}
		}
	}
}

// drawAnomalyRange shows the ring anomalies spawn in around each crystal.
func (g *Game) drawAnomalyRange() {
	ac := g.cfg.Anomalies
	inner := float32(ac.SpawnMinRange) * g.camera.Zoom
	outer := float32(ac.SpawnMaxRange) * g.camera.Zoom

	query := g.reactorFilter.Query()
	for query.Next() {
		_, _, pos := query.Get()
		sx, sy := g.camera.WorldToScreen(pos.X, pos.Y)
		rl.DrawRing(rl.Vector2{X: sx, Y: sy}, inner, outer, 0, 360, 48, colorRange)
	}
}
