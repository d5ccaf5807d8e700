package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/supermatter/systems"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Reactors  int
	Lightning int
	Anomalies int
	Remnants  int
	Tick      int32
	SimTime   time.Duration
	Speed     int
	FPS       int32
	Paused    bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Crystals: %d | Bolts: %d | Anomalies: %d | Remnants: %d",
			data.Reactors, data.Lightning, data.Anomalies, data.Remnants),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Time: %s | Speed: %dx | FPS: %d",
			data.Tick, data.SimTime.Round(time.Second), data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// AnnouncementLog shows the most recent radio messages.
type AnnouncementLog struct {
	renderer *Renderer
	width    int32
}

// NewAnnouncementLog creates a log panel of the given width.
func NewAnnouncementLog(width int32) *AnnouncementLog {
	return &AnnouncementLog{renderer: NewRenderer(), width: width}
}

// Draw renders lines oldest first above the control legend.
func (a *AnnouncementLog) Draw(lines []string, screenW, screenH int32) {
	if len(lines) == 0 {
		return
	}
	r := a.renderer
	height := r.Theme.Padding*2 + int32(len(lines))*r.Theme.LineHeight
	x, y := AnchorBottomRight.Place(a.width, height, screenW, screenH-30, 10)
	r.DrawPanel(x, y, a.width, height)
	y += r.Theme.Padding
	for _, line := range lines {
		rl.DrawText(line, x+r.Theme.Padding, y, r.Theme.FontSize, r.Theme.ValueColor)
		y += r.Theme.LineHeight
	}
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	SystemTimes map[string]time.Duration
	Total       time.Duration
	Registry    *systems.SystemRegistry
}

// PerfPanel shows each system's average tick time in tick order, with a
// bar for its share of the total.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData) {
	r := p.renderer
	pad := r.Theme.Padding
	line := r.Theme.LineHeight
	const width = int32(300)

	infos := data.Registry.All()
	height := int32(len(infos)+2)*line + pad*2
	r.DrawPanel(p.x, p.y, width, height)

	x := p.x + pad
	y := r.DrawSectionHeader(x, p.y+pad, "System Performance")
	rl.DrawText(fmt.Sprintf("Total: %s", data.Total.Round(time.Microsecond)), x, y, r.Theme.FontSize, rl.Yellow)
	y += line

	const barW = int32(80)
	for _, info := range infos {
		avg := data.SystemTimes[info.ID]
		share := 0.0
		if data.Total > 0 {
			share = float64(avg) / float64(data.Total)
		}

		color := rl.LightGray
		if share > 0.5 {
			color = rl.Red
		} else if share > 0.25 {
			color = rl.Orange
		}

		rl.DrawText(fmt.Sprintf("%-12s %8s", info.Name, avg.Round(time.Microsecond)), x, y, 12, color)
		bx := p.x + width - pad - barW
		rl.DrawRectangle(bx, y+2, barW, 8, r.Theme.BarBg)
		rl.DrawRectangle(bx, y+2, int32(share*float64(barW)), 8, color)
		y += line
	}
}
