package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/supermatter/ui"
)

// keyBindings is the key list shown by the help overlay.
var keyBindings = []ui.KeyBinding{
	{Key: "Space", Action: "Pause / resume"},
	{Key: ", / .", Action: "Slower / faster"},
	{Key: "Tab", Action: "Select next crystal"},
	{Key: "Click", Action: "Inspect crystal"},
	{Key: "C", Action: "Throw an object into the crystal"},
	{Key: "X", Action: "Extract a sliver"},
	{Key: "T", Action: "Monument panel"},
	{Key: "O", Action: "Overlay controls"},
	{Key: "P", Action: "Performance panel"},
	{Key: "H", Action: "This help"},
	{Key: "Arrows", Action: "Pan"},
	{Key: "Wheel / + -", Action: "Zoom"},
	{Key: "Home", Action: "Reset camera"},
	{Key: "F11", Action: "Fullscreen"},
}

// controlsLegend is the one-line legend at the bottom of the screen.
const controlsLegend = "Space: pause | ,/.: speed | Tab: next | C: consume | X: sliver | T: monument | H: help"

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > MinSpeed {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < MaxSpeed {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyH) {
		g.help.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyO) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyT) && g.monumentPanel != nil {
		g.monumentPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.selectNext()
	}

	if key := rl.GetKeyPressed(); key != 0 {
		if id, on, ok := g.overlays.HandleKeyPress(key); ok {
			g.log.Debug("overlay toggled", "overlay", id, "enabled", on)
		}
	}

	g.handleReactorCommands()
	g.handleCameraInput()

	mouse := rl.GetMousePosition()
	if g.controls.Contains(mouse.X, mouse.Y) {
		return
	}
	if g.monumentPanel != nil && g.monumentPanel.Contains(mouse.X, mouse.Y, g.screenW, g.screenH) {
		return
	}
	g.inspector.HandleInput(mouse.X, mouse.Y, g.reactorAt)
}

// handleReactorCommands applies player actions to the selected crystal.
func (g *Game) handleReactorCommands() {
	e, _, ok := g.selectedReactor()
	if !ok {
		return
	}
	if rl.IsKeyPressed(rl.KeyC) {
		if err := g.Consume(e, "object"); err != nil {
			g.log.Warn("consume failed", "reactor", e.ID(), "error", err)
		}
	}
	if rl.IsKeyPressed(rl.KeyX) {
		if err := g.ExtractSliver(e); err != nil {
			g.log.Warn("sliver extraction failed", "reactor", e.ID(), "error", err)
		}
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	if w == g.screenW && h == g.screenH {
		return
	}
	g.screenW = w
	g.screenH = h

	g.camera.Resize(float32(w), float32(h))
	g.inspector.Resize(w, h)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
