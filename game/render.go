package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/supermatter/camera"
	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/inspector"
	"github.com/pthm-cable/supermatter/ui"
)

// Floor colors
var (
	colorFloor = rl.Color{R: 22, G: 24, B: 30, A: 255}
	colorGrid  = rl.Color{R: 38, G: 40, B: 48, A: 255}
)

// initRendering builds the camera and panels. It needs an open window.
func (g *Game) initRendering() {
	g.screenW = int32(g.cfg.Screen.Width)
	g.screenH = int32(g.cfg.Screen.Height)

	g.camera = camera.New(float32(g.screenW), float32(g.screenH), g.worldW, g.worldH)
	g.hud = ui.NewHUD()
	g.reactorPanel = ui.NewReactorPanel(ui.AnchorBottomLeft, 260)
	g.announceLog = ui.NewAnnouncementLog(420)
	g.perfPanel = ui.NewPerfPanel(10, 100)
	g.controls = ui.NewControlsPanel(320, 100, 200)
	g.overlays = ui.NewOverlayRegistry()
	g.help = ui.NewHelpOverlay(g.registry, keyBindings)
	g.inspector = inspector.NewInspector(g.screenW, g.screenH)
	if g.presenter != nil {
		g.monumentPanel = ui.NewMonumentPanel(g.presenter, ui.AnchorCenter)
	}
}

// Draw renders one frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	rl.ClearBackground(rl.Black)
	g.drawFloor()
	g.drawOverlays()
	g.drawReactors()
	g.drawUI()
}

// drawFloor renders the floor rectangle and its tile grid.
func (g *Game) drawFloor() {
	x0, y0 := g.camera.WorldToScreen(0, 0)
	x1, y1 := g.camera.WorldToScreen(g.worldW, g.worldH)
	rl.DrawRectangle(int32(x0), int32(y0), int32(x1-x0), int32(y1-y0), colorFloor)

	// Skip the grid when tiles get too small to read
	if g.camera.Zoom < 6 {
		return
	}
	for tx := float32(0); tx <= g.worldW; tx++ {
		sx, _ := g.camera.WorldToScreen(tx, 0)
		rl.DrawLine(int32(sx), int32(y0), int32(sx), int32(y1), colorGrid)
	}
	for ty := float32(0); ty <= g.worldH; ty++ {
		_, sy := g.camera.WorldToScreen(0, ty)
		rl.DrawLine(int32(x0), int32(sy), int32(x1), int32(sy), colorGrid)
	}
}

// drawReactors renders each crystal colored by status with a glow that
// scales with power.
func (g *Game) drawReactors() {
	selected, hasSelected := g.inspector.Selected()
	labels := g.overlays.IsEnabled(ui.OverlayLabels)
	tileGas := g.overlays.IsEnabled(ui.OverlayTileGas)
	size := g.camera.Zoom * 0.6

	query := g.reactorFilter.Query()
	for query.Next() {
		sm, atmos, pos := query.Get()
		e := query.Entity()
		if !g.camera.IsVisible(pos.X, pos.Y, 2) {
			continue
		}
		sx, sy := g.camera.WorldToScreen(pos.X, pos.Y)
		color := ui.StatusColor(sm.Status)

		if sm.Power > 0 {
			glow := size * (1 + float32(min(sm.Power/sm.Thresholds.CriticalPowerPenalty, 2)))
			rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, glow, rl.Fade(color, 0.25))
		}
		rl.DrawPoly(rl.Vector2{X: sx, Y: sy}, 6, size, 0, color)
		if hasSelected && e == selected {
			rl.DrawPolyLinesEx(rl.Vector2{X: sx, Y: sy}, 6, size+4, 0, 2, rl.White)
		}

		tx, ty := int32(sx+size+6), int32(sy-size)
		switch {
		case tileGas:
			rl.DrawText(fmt.Sprintf("%.0f mol  %.0fK", atmos.Mix.TotalMoles(), atmos.Mix.Temperature), tx, ty, 12, rl.SkyBlue)
		case labels:
			rl.DrawText(fmt.Sprintf("#%d %s %.0f%%", e.ID(), sm.Status, sm.Integrity()), tx, ty, 12, rl.RayWhite)
		}
	}
}

// drawUI renders panels on top of the floor.
func (g *Game) drawUI() {
	counts := g.hazards.Count()
	rows := g.reactorRows()

	g.hud.Draw(ui.HUDData{
		Title:     "SUPERMATTER",
		Reactors:  len(rows),
		Lightning: counts[components.HazardLightning],
		Anomalies: counts[components.HazardAnomaly],
		Remnants:  counts[components.HazardRemnant],
		Tick:      g.tick,
		SimTime:   g.now,
		Speed:     g.stepsPerUpdate,
		FPS:       rl.GetFPS(),
		Paused:    g.paused,
	})

	e, sm, ok := g.selectedReactor()
	g.reactorPanel.Draw(rows, sm, g.screenW, g.screenH)
	if ok {
		g.inspector.Draw(sm, g.atmosMap.Get(e), g.posMap.Get(e))
	}

	g.announceLog.Draw(g.announcements, g.screenW, g.screenH)

	if g.showPerf {
		g.perfPanel.Draw(ui.PerfPanelData{
			SystemTimes: g.perf.Averages(),
			Total:       g.perf.Total(),
			Registry:    g.registry,
		})
	}
	g.controls.Draw(g.overlays)

	if g.monumentPanel != nil {
		g.monumentPanel.Draw(g.screenW, g.screenH)
	}
	g.help.Draw(g.screenW, g.screenH)
	g.hud.DrawControls(g.screenH, controlsLegend)
}

// reactorRows builds the reactor list entries.
func (g *Game) reactorRows() []ui.ReactorRow {
	selected, hasSelected := g.inspector.Selected()

	var rows []ui.ReactorRow
	query := g.reactorFilter.Query()
	for query.Next() {
		sm, _, _ := query.Get()
		e := query.Entity()
		row := ui.ReactorRow{
			ID:        e.ID(),
			Status:    sm.Status,
			Integrity: sm.Integrity(),
			Power:     sm.Power,
			Selected:  hasSelected && e == selected,
			Delamming: sm.Delamming(),
		}
		if row.Delamming {
			row.DelamRemaining = max(sm.DelamEndTime-g.now, 0)
		}
		rows = append(rows, row)
	}
	return rows
}
