package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/supermatter/components"
)

// ReactorRow is one crystal in the reactor list.
type ReactorRow struct {
	ID             uint32
	Status         components.Status
	Integrity      float64
	Power          float64
	Selected       bool
	Delamming      bool
	DelamRemaining time.Duration
}

// ReactorPanel lists every crystal and shows gauges for the selected one.
type ReactorPanel struct {
	renderer *Renderer
	anchor   PanelAnchor
	width    int32
}

// NewReactorPanel creates a panel of the given width.
func NewReactorPanel(anchor PanelAnchor, width int32) *ReactorPanel {
	return &ReactorPanel{renderer: NewRenderer(), anchor: anchor, width: width}
}

// Draw renders the list and, when selected is non-nil, its gauges.
func (p *ReactorPanel) Draw(rows []ReactorRow, selected *components.Supermatter, screenW, screenH int32) {
	r := p.renderer
	padding := r.Theme.Padding
	line := r.Theme.LineHeight

	height := padding*2 + line + int32(len(rows))*(line+2)
	var fields []components.FieldDescriptor
	if selected != nil {
		fields = components.SupermatterFieldDescriptors(selected)
		for _, group := range components.SupermatterGroups() {
			height += line + 8
			for _, fd := range fields {
				if fd.Group == group && (fd.ShowWhenZero || components.GetSupermatterValue(selected, fd.ID) != 0) {
					height += line + 2
				}
			}
		}
	}

	x, y := p.anchor.Place(p.width, height, screenW, screenH, 10)
	r.DrawPanel(x, y, p.width, height)
	x += padding
	y += padding

	rl.DrawText("Crystals", x, y, 16, rl.White)
	y += line + 4

	for _, row := range rows {
		if row.Selected {
			rl.DrawRectangle(x-4, y-1, p.width-2*padding+8, line+2, rl.Color{R: 50, G: 60, B: 80, A: 255})
		}
		bw := r.DrawStatusBadge(x, y, row.Status)
		text := fmt.Sprintf("#%d  %5.1f%%  %6.0f", row.ID, row.Integrity, row.Power)
		if row.Delamming {
			text += fmt.Sprintf("  T-%ds", int(row.DelamRemaining.Seconds()))
		}
		rl.DrawText(text, x+bw+6, y+2, r.Theme.FontSize, r.Theme.ValueColor)
		y += line + 2
	}

	if selected == nil {
		return
	}
	for _, group := range components.SupermatterGroups() {
		y = r.DrawSectionHeader(x, y+4, groupTitle(group))
		y = r.DrawSection(x, y, group, selected, p.width-2*padding)
	}
}

func groupTitle(group string) string {
	switch group {
	case "core":
		return "Core"
	case "gas":
		return "Gas"
	default:
		return group
	}
}
