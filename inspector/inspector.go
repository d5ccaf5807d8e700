// Package inspector draws a detail panel for the selected crystal. Fields
// are discovered from `inspect` struct tags so new component fields show
// up without panel changes.
package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/gas"
)

// Panel dimensions
const (
	PanelWidth   = 320
	PanelPadding = 10
	HeaderHeight = 30
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
)

// Picker finds the crystal under a screen position.
type Picker func(sx, sy float32) (ecs.Entity, bool)

// Inspector manages crystal selection and panel rendering.
type Inspector struct {
	selected     ecs.Entity
	hasSelected  bool
	panelX       int32
	panelY       int32
	screenWidth  int32
	screenHeight int32
}

// NewInspector creates a new inspector instance.
func NewInspector(screenWidth, screenHeight int32) *Inspector {
	ins := &Inspector{}
	ins.Resize(screenWidth, screenHeight)
	return ins
}

// Resize anchors the panel to the right edge of a new screen size.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.screenWidth = screenWidth
	ins.screenHeight = screenHeight
	ins.panelX = screenWidth - PanelWidth - 10
	ins.panelY = 10
}

// HandleInput processes clicks for crystal selection.
func (ins *Inspector) HandleInput(mouseX, mouseY float32, pick Picker) {
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) || rl.IsKeyPressed(rl.KeyEscape) {
		ins.Deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	if ins.hasSelected {
		closeX := ins.panelX + PanelWidth - 25
		closeY := ins.panelY + 5
		if int32(mouseX) >= closeX && int32(mouseX) <= closeX+20 &&
			int32(mouseY) >= closeY && int32(mouseY) <= closeY+20 {
			ins.Deselect()
			return
		}
		// Clicks inside the panel don't change the selection
		if int32(mouseX) >= ins.panelX && int32(mouseX) <= ins.panelX+PanelWidth &&
			int32(mouseY) >= ins.panelY {
			return
		}
	}

	if e, ok := pick(mouseX, mouseY); ok {
		ins.Select(e)
	}
}

// Select makes e the inspected crystal.
func (ins *Inspector) Select(e ecs.Entity) {
	ins.selected = e
	ins.hasSelected = true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the currently selected entity.
func (ins *Inspector) Selected() (ecs.Entity, bool) {
	return ins.selected, ins.hasSelected
}

// Draw renders the panel for the selected crystal. The caller looks the
// components up and deselects when the entity is gone.
func (ins *Inspector) Draw(sm *components.Supermatter, atmos *components.Atmosphere, pos *components.Position) {
	if !ins.hasSelected {
		return
	}

	fields := ExtractFields(sm)
	species := presentSpecies(&atmos.Mix)

	height := int32(HeaderHeight + PanelPadding)
	height += 22 + 8 + labelHeight // Status line, separator, position
	for _, f := range fields {
		height += fieldHeight(f)
	}
	height += 12 + 20 + 2*labelHeight // Tile section header, temperature, exposure
	height += int32(len(species)) * barHeight
	height += PanelPadding

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, height, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(height)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText(fmt.Sprintf("CRYSTAL #%d", ins.selected.ID()), ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	x := ins.panelX + PanelPadding
	y := ins.panelY + HeaderHeight + PanelPadding

	rl.DrawText(fmt.Sprintf("%s  |  %s", sm.Status, sm.Phase()), x, y, 14, ColorHeaderText)
	y += 22
	rl.DrawLine(x, y, ins.panelX+PanelWidth-PanelPadding, y, ColorPanelBorder)
	y += 8

	y += DrawLabel(x, y, "Position", fmt.Sprintf("(%.1f, %.1f)", pos.X, pos.Y), nil)
	for _, f := range fields {
		y += DrawField(x, y, f)
	}

	y += 4
	rl.DrawLine(x, y, ins.panelX+PanelWidth-PanelPadding, y, ColorPanelBorder)
	y += 8
	ins.drawSectionHeader(x, y, "TILE")
	y += 20

	y += DrawLabel(x, y, "Temperature", atmos.Mix.Temperature, map[string]string{"fmt": "%.1fK"})
	y += DrawBool(x, y, "Exposed", atmos.Exposed)

	total := atmos.Mix.TotalMoles()
	barOpts := map[string]string{"max": fmt.Sprintf("%g", total), "fmt": "%.1f"}
	for _, s := range species {
		y += DrawBar(x, y, s.String(), float32(atmos.Mix.Moles.Get(s)), barOpts)
	}
}

// presentSpecies lists the species with moles on the tile.
func presentSpecies(mix *gas.Mixture) []gas.Species {
	var out []gas.Species
	for _, s := range gas.All() {
		if mix.Moles.Get(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// drawSectionHeader renders a section title.
func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}
