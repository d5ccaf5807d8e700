package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsPanel lists overlays grouped by category as clickable check
// boxes. Keyboard toggles and clicks go through the same registry.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32 // from the last Draw, for hit tests
	visible  bool
}

// NewControlsPanel creates a hidden controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Contains reports whether a screen point falls on the visible panel.
func (c *ControlsPanel) Contains(x, y float32) bool {
	if !c.visible {
		return false
	}
	rect := rl.Rectangle{X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(c.height)}
	return rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, rect)
}

// Draw renders the panel and applies any check box the user clicked.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) {
	if !c.visible {
		return
	}

	r := c.renderer
	pad := r.Theme.Padding
	line := r.Theme.LineHeight + 4

	categories := overlays.Categories()
	rows := len(overlays.All()) + len(categories)
	c.height = int32(rows)*line + r.Theme.LineHeight + pad*3
	r.DrawPanel(c.x, c.y, c.width, c.height)

	y := r.DrawSectionHeader(c.x+pad, c.y+pad, "Overlays")
	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+pad, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += line

		for _, desc := range overlays.ByCategory(category) {
			box := rl.Rectangle{X: float32(c.x + pad), Y: float32(y), Width: 12, Height: 12}
			was := overlays.IsEnabled(desc.ID)
			if now := gui.CheckBox(box, desc.Name, was); now != was {
				overlays.SetEnabled(desc.ID, now)
			}
			if desc.KeyLabel != "" {
				key := fmt.Sprintf("[%s]", desc.KeyLabel)
				w := rl.MeasureText(key, r.Theme.FontSize)
				rl.DrawText(key, c.x+c.width-pad-w, y, r.Theme.FontSize, r.Theme.LabelColor)
			}
			y += line
		}
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "hazards":
		return "Hazards"
	case "reactor":
		return "Reactor"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
