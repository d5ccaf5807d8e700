package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/supermatter/monument"
)

// Monument panel layout
const (
	monumentPanelWidth = 420
	glyphButtonSize    = 64
	influenceRowHeight = 44
	monumentRowHeight  = 22
)

// MonumentPanel renders a monument.View with raygui controls and turns
// clicks into presenter presses. It keeps no state of its own.
type MonumentPanel struct {
	renderer  *Renderer
	presenter *monument.Presenter
	anchor    PanelAnchor
	visible   bool
}

// NewMonumentPanel creates a visible panel driving p.
func NewMonumentPanel(p *monument.Presenter, anchor PanelAnchor) *MonumentPanel {
	return &MonumentPanel{renderer: NewRenderer(), presenter: p, anchor: anchor, visible: true}
}

// Toggle switches visibility.
func (m *MonumentPanel) Toggle() bool {
	m.visible = !m.visible
	return m.visible
}

// Contains reports whether a screen point is over the panel, so clicks
// there are not treated as floor clicks.
func (m *MonumentPanel) Contains(sx, sy float32, screenW, screenH int32) bool {
	if !m.visible {
		return false
	}
	b := m.bounds(m.presenter.View(), screenW, screenH)
	return rl.CheckCollisionPointRec(rl.Vector2{X: sx, Y: sy}, b)
}

func (m *MonumentPanel) bounds(v monument.View, screenW, screenH int32) rl.Rectangle {
	pad := m.renderer.Theme.Padding
	glyphRows := (int32(len(v.Glyphs)) + 5) / 6
	height := pad*2 + monumentRowHeight*6 + glyphRows*(glyphButtonSize+4) + monumentRowHeight +
		int32(len(v.Influences))*influenceRowHeight
	x, y := m.anchor.Place(monumentPanelWidth, height, screenW, screenH, 10)
	return rl.Rectangle{X: float32(x), Y: float32(y), Width: monumentPanelWidth, Height: float32(height)}
}

// Draw renders the current view and dispatches any presses.
func (m *MonumentPanel) Draw(screenW, screenH int32) {
	if !m.visible {
		return
	}
	v := m.presenter.View()
	r := m.renderer
	b := m.bounds(v, screenW, screenH)
	r.DrawPanel(int32(b.X), int32(b.Y), int32(b.Width), int32(b.Height))

	pad := float32(r.Theme.Padding)
	x := b.X + pad
	y := b.Y + pad
	w := b.Width - 2*pad

	rl.DrawText("Monument", int32(x), int32(y), 16, rl.White)
	y += monumentRowHeight

	gui.ProgressBar(rl.Rectangle{X: x, Y: y, Width: w - 60, Height: 16}, "", v.ProgressLabel, float32(v.Progress), 0, 100)
	y += monumentRowHeight

	y = float32(r.DrawLabelValue(int32(x), int32(y), "Entropy", v.AvailableLabel))
	y = float32(r.DrawLabelValue(int32(x), int32(y), "Next stage", v.NextStageLabel))
	y = float32(r.DrawLabelValue(int32(x), int32(y), "Crew", v.CrewLabel))
	y += 6

	var hovered string
	mouse := rl.GetMousePosition()
	for i, g := range v.Glyphs {
		col := float32(i % 6)
		row := float32(i / 6)
		bounds := rl.Rectangle{
			X:      x + col*(glyphButtonSize+4),
			Y:      y + row*(glyphButtonSize+4),
			Width:  glyphButtonSize,
			Height: glyphButtonSize,
		}
		if !g.Enabled {
			gui.Disable()
		}
		if gui.Toggle(bounds, g.Name, g.Pressed) && !g.Pressed {
			m.presenter.PressGlyph(g.ID)
		}
		gui.Enable()
		if rl.CheckCollisionPointRec(mouse, bounds) {
			hovered = g.Tooltip
		}
	}
	y += float32((len(v.Glyphs)+5)/6) * (glyphButtonSize + 4)

	half := (w - 6) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 20}, v.SelectLabel) {
		m.presenter.PressSelect()
	}
	if gui.Button(rl.Rectangle{X: x + half + 6, Y: y, Width: half, Height: 20}, v.RemoveLabel) {
		m.presenter.PressRemove()
	}
	y += monumentRowHeight + 4

	for _, inf := range v.Influences {
		rl.DrawText(inf.Name, int32(x), int32(y), r.Theme.HeaderFontSize, influenceColor(inf.State))
		rl.DrawText(inf.CostLabel, int32(x), int32(y)+18, r.Theme.FontSize, r.Theme.LabelColor)

		if inf.State == monument.BoxOwned {
			rl.DrawText("Owned", int32(x+w-70), int32(y)+4, r.Theme.FontSize, rl.Green)
		} else {
			if !inf.CanGain() {
				gui.Disable()
			}
			if gui.Button(rl.Rectangle{X: x + w - 80, Y: y, Width: 80, Height: 24}, "Gain") {
				m.presenter.PressGain(inf.ID)
			}
			gui.Enable()
		}
		if rl.CheckCollisionPointRec(mouse, rl.Rectangle{X: x, Y: y, Width: w - 90, Height: influenceRowHeight}) {
			hovered = inf.Description
		}
		y += influenceRowHeight
	}

	if hovered != "" {
		drawTooltip(r, hovered, mouse)
	}
}

func influenceColor(s monument.BoxState) rl.Color {
	switch s {
	case monument.BoxOwned:
		return rl.Green
	case monument.BoxUnlockedAffordable:
		return rl.White
	case monument.BoxUnlockedUnaffordable:
		return rl.Orange
	default:
		return rl.DarkGray
	}
}

func drawTooltip(r *Renderer, text string, at rl.Vector2) {
	w := rl.MeasureText(text, r.Theme.FontSize) + r.Theme.Padding*2
	h := r.Theme.LineHeight + r.Theme.Padding
	x := int32(at.X) + 14
	y := int32(at.Y) + 14
	r.DrawPanel(x, y, w, h)
	rl.DrawText(text, x+r.Theme.Padding, y+r.Theme.Padding/2, r.Theme.FontSize, r.Theme.ValueColor)
}
