package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/supermatter/components"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a bar for value in [minVal, maxVal] with a formatted
// value beside it. Fill color moves from low to high with the ratio;
// inverted bars (integrity) are green when full.
func (r *Renderer) DrawBar(x, y int32, label string, value, minVal, maxVal float64, format string, inverted bool, width int32) int32 {
	ratio := 0.0
	if maxVal > minVal {
		ratio = (value - minVal) / (maxVal - minVal)
	}
	ratio = max(0, min(ratio, 1))

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 60

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)

	level := ratio
	if inverted {
		level = 1 - ratio
	}
	rl.DrawRectangle(barX, y+2, int32(float64(barWidth)*ratio), r.Theme.BarHeight, r.levelColor(level))

	rl.DrawText(fmt.Sprintf(format, value), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight + 2
}

func (r *Renderer) levelColor(level float64) rl.Color {
	switch {
	case level > 0.75:
		return r.Theme.BarFillHigh
	case level > 0.4:
		return r.Theme.BarFillMedium
	default:
		return r.Theme.BarFillLow
	}
}

// DrawStatusBadge draws a colored status pill and returns its width.
func (r *Renderer) DrawStatusBadge(x, y int32, status components.Status) int32 {
	text := status.String()
	w := rl.MeasureText(text, r.Theme.FontSize) + 8
	rl.DrawRectangle(x, y, w, r.Theme.LineHeight, StatusColor(status))
	rl.DrawText(text, x+4, y+2, r.Theme.FontSize, rl.Black)
	return w
}

// DrawField renders a supermatter field from its descriptor. Zero values
// are hidden unless the descriptor asks otherwise.
func (r *Renderer) DrawField(x, y int32, fd components.FieldDescriptor, value float64, width int32) int32 {
	if value == 0 && !fd.ShowWhenZero {
		return y
	}
	if fd.IsBar {
		return r.DrawBar(x, y, fd.Label, value, fd.Min, fd.Max, fd.Format, fd.ID == "integrity", width)
	}
	return r.DrawLabelValue(x, y, fd.Label, fmt.Sprintf(fd.Format, value))
}

// DrawSection renders every field of one group.
func (r *Renderer) DrawSection(x, y int32, group string, sm *components.Supermatter, width int32) int32 {
	for _, fd := range components.SupermatterFieldDescriptors(sm) {
		if fd.Group != group {
			continue
		}
		y = r.DrawField(x, y, fd, components.GetSupermatterValue(sm, fd.ID), width)
	}
	return y + 4
}
