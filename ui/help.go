package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/supermatter/systems"
)

// KeyBinding is one line of the help key list.
type KeyBinding struct {
	Key    string
	Action string
}

// HelpOverlay lists the key bindings and the systems run each tick.
type HelpOverlay struct {
	renderer *Renderer
	registry *systems.SystemRegistry
	bindings []KeyBinding
	visible  bool
}

// NewHelpOverlay creates a hidden help overlay.
func NewHelpOverlay(registry *systems.SystemRegistry, bindings []KeyBinding) *HelpOverlay {
	return &HelpOverlay{renderer: NewRenderer(), registry: registry, bindings: bindings}
}

// Toggle switches visibility.
func (h *HelpOverlay) Toggle() bool {
	h.visible = !h.visible
	return h.visible
}

// IsVisible returns whether the overlay is shown.
func (h *HelpOverlay) IsVisible() bool {
	return h.visible
}

// Draw renders the overlay centered on screen.
func (h *HelpOverlay) Draw(screenW, screenH int32) {
	if !h.visible {
		return
	}
	r := h.renderer
	line := r.Theme.LineHeight

	rows := len(h.bindings) + 2
	for _, cat := range h.registry.Categories() {
		rows += len(h.registry.ByCategory(cat)) + 1
	}
	const width = int32(520)
	height := int32(rows)*line + r.Theme.Padding*4

	x, y := AnchorCenter.Place(width, height, screenW, screenH, 0)
	r.DrawPanel(x, y, width, height)
	x += r.Theme.Padding
	y += r.Theme.Padding

	y = r.DrawSectionHeader(x, y, "Keys")
	for _, b := range h.bindings {
		rl.DrawText(b.Key, x, y, r.Theme.FontSize, rl.White)
		rl.DrawText(b.Action, x+110, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += line
	}

	y = r.DrawSectionHeader(x, y+r.Theme.Padding, "Systems")
	for _, cat := range h.registry.Categories() {
		rl.DrawText(cat, x, y, r.Theme.FontSize, r.Theme.SectionHeader)
		y += line
		for _, info := range h.registry.ByCategory(cat) {
			rl.DrawText(fmt.Sprintf("%-12s %s", info.Name, info.Description), x+10, y, r.Theme.FontSize, r.Theme.LabelColor)
			y += line
		}
	}
}
