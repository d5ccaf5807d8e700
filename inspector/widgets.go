package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Widget colors
var (
	ColorBarBg    = rl.Color{R: 40, G: 40, B: 40, A: 255}
	ColorBarFill  = rl.Color{R: 100, G: 180, B: 100, A: 255}
	ColorBarLow   = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorText     = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTextDim  = rl.Color{R: 150, G: 150, B: 150, A: 255}
	ColorBoolOn   = rl.Color{R: 100, G: 200, B: 100, A: 255}
	ColorBoolOff  = rl.Color{R: 80, G: 80, B: 80, A: 255}
	ColorLabelDim = rl.Color{R: 120, G: 120, B: 130, A: 255}
)

// Row heights returned by the draw functions.
const (
	labelHeight = 20
	barHeight   = 18
)

// DrawLabel renders a text value.
func DrawLabel(x, y int32, name string, value any, options map[string]string) int32 {
	text := FormatValue(value, options["fmt"])
	rl.DrawText(fmt.Sprintf("%s: %s", name, text), x, y, 14, ColorText)
	return labelHeight
}

// DrawBar renders a horizontal bar scaled by the max option.
func DrawBar(x, y int32, name string, value float32, options map[string]string) int32 {
	ratio := value / GetMax(options)
	ratio = max(0, min(ratio, 1))

	const barWidth, height = int32(120), int32(14)

	rl.DrawText(name, x, y, 14, ColorTextDim)

	barX := x + 110
	rl.DrawRectangle(barX, y, barWidth, height, ColorBarBg)
	fill := lerpColor(ColorBarLow, ColorBarFill, ratio)
	rl.DrawRectangle(barX, y, int32(float32(barWidth)*ratio), height, fill)

	text := FormatValue(value, options["fmt"])
	rl.DrawText(text, barX+barWidth+5, y, 14, ColorTextDim)

	return barHeight
}

// DrawBool renders an on/off indicator.
func DrawBool(x, y int32, name string, value bool) int32 {
	rl.DrawText(name, x, y, 14, ColorTextDim)

	indicatorX := x + 110
	const size = int32(14)

	color, text := ColorBoolOff, "OFF"
	if value {
		color, text = ColorBoolOn, "ON"
	}
	rl.DrawRectangle(indicatorX, y, size, size, color)
	rl.DrawText(text, indicatorX+size+5, y, 14, color)

	return barHeight
}

// DrawField renders a field using its widget type.
func DrawField(x, y int32, field Field) int32 {
	switch field.Widget {
	case WidgetBar:
		if v, ok := GetFloatValue(field.Value); ok {
			return DrawBar(x, y, field.Name, v, field.Options)
		}
	case WidgetBool:
		if v, ok := field.Value.(bool); ok {
			return DrawBool(x, y, field.Name, v)
		}
	}
	return DrawLabel(x, y, field.Name, field.Value, field.Options)
}

// fieldHeight is the row height DrawField will use.
func fieldHeight(field Field) int32 {
	switch field.Widget {
	case WidgetBar, WidgetBool:
		return barHeight
	default:
		return labelHeight
	}
}

// lerpColor interpolates between two colors.
func lerpColor(a, b rl.Color, t float32) rl.Color {
	return rl.Color{
		R: uint8(float32(a.R) + (float32(b.R)-float32(a.R))*t),
		G: uint8(float32(a.G) + (float32(b.G)-float32(a.G))*t),
		B: uint8(float32(a.B) + (float32(b.B)-float32(a.B))*t),
		A: 255,
	}
}
