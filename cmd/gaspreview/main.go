// Gas mix preview tool - shows how a tile composition drives the crystal.
//
// Usage: go run ./cmd/gaspreview [-config config.yaml]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/gas"
	"github.com/pthm-cable/supermatter/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	panelWidth   = 440
	maxMoles     = 500
)

// speciesColors tints each species in the composition bar.
var speciesColors = [gas.NumSpecies]rl.Color{
	gas.Oxygen:        rl.SkyBlue,
	gas.Nitrogen:      rl.LightGray,
	gas.CarbonDioxide: rl.DarkGray,
	gas.Plasma:        rl.Orange,
	gas.Tritium:       rl.Green,
	gas.WaterVapor:    rl.Blue,
	gas.Frezon:        rl.Purple,
	gas.Ammonia:       rl.Beige,
	gas.NitrousOxide:  rl.Pink,
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	table := cfg.Derived.GasTable

	mix := gas.Mixture{Moles: cfg.Derived.AtmosphereMix, Temperature: cfg.Atmosphere.Temperature}

	rl.InitWindow(windowWidth, windowHeight, "Gas Mix Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	for !rl.WindowShouldClose() {
		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Mix sliders
		x := float32(10)
		y := float32(10)
		rl.DrawText("Tile Mix (moles)", int32(x), int32(y), 20, rl.DarkGray)
		y += 35
		for _, s := range gas.All() {
			rl.DrawText(s.String(), int32(x), int32(y), 14, rl.Gray)
			y += 18
			v := gui.SliderBar(
				rl.Rectangle{X: x, Y: y, Width: panelWidth - 80, Height: 20},
				"0", fmt.Sprint(maxMoles),
				float32(mix.Moles[s]), 0, maxMoles,
			)
			mix.Moles[s] = float64(v)
			rl.DrawText(fmt.Sprintf("%.1f", mix.Moles[s]), int32(x+panelWidth-70), int32(y+2), 16, rl.DarkGray)
			y += 30
		}

		rl.DrawText("Temperature (K)", int32(x), int32(y), 14, rl.Gray)
		y += 18
		mix.Temperature = float64(gui.SliderBar(
			rl.Rectangle{X: x, Y: y, Width: panelWidth - 80, Height: 20},
			"3", "5000",
			float32(mix.Temperature), 3, 5000,
		))
		rl.DrawText(fmt.Sprintf("%.0f", mix.Temperature), int32(x+panelWidth-70), int32(y+2), 16, rl.DarkGray)
		y += 40

		if gui.Button(rl.Rectangle{X: x, Y: y, Width: 120, Height: 30}, "Reset") {
			mix = gas.Mixture{Moles: cfg.Derived.AtmosphereMix, Temperature: cfg.Atmosphere.Temperature}
		}
		if gui.Button(rl.Rectangle{X: x + 130, Y: y, Width: 120, Height: 30}, "Clear") {
			mix.Moles = gas.Storage{}
		}

		drawResponse(table, &mix, panelWidth+40)

		rl.DrawText("Press C to copy the mix as YAML", windowWidth-260, windowHeight-30, 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			if text, err := mixYAML(&mix); err == nil {
				rl.SetClipboardText(text)
			}
		}

		rl.EndDrawing()
	}
}

// drawResponse renders the composition bar and the crystal's response.
func drawResponse(table gas.Table, mix *gas.Mixture, x int32) {
	y := int32(10)
	rl.DrawText("Crystal Response", x, y, 20, rl.DarkGray)
	y += 35

	total := mix.TotalMoles()
	rl.DrawText(fmt.Sprintf("Total: %.1f mol  Heat capacity: %.1f", total, mix.HeatCapacity()), x, y, 16, rl.DarkGray)
	y += 30

	// Stacked composition bar
	const barW, barH = 480, 24
	comp := mix.Composition()
	bx := float32(x)
	for _, s := range gas.All() {
		w := float32(comp[s]) * barW
		if w <= 0 {
			continue
		}
		rl.DrawRectangleV(rl.Vector2{X: bx, Y: float32(y)}, rl.Vector2{X: w, Y: barH}, speciesColors[s])
		bx += w
	}
	rl.DrawRectangleLines(x, y, barW, barH, rl.DarkGray)
	y += barH + 10

	for _, s := range gas.All() {
		if comp[s] <= 0 {
			continue
		}
		rl.DrawRectangle(x, y+2, 10, 10, speciesColors[s])
		rl.DrawText(fmt.Sprintf("%s %.1f%%", s, comp[s]*100), x+16, y, 14, rl.Gray)
		y += 18
	}
	y += 15

	resp := systems.RespondTo(table, comp)
	rows := []struct {
		label    string
		value    float64
		max      float64
		subtitle string
	}{
		{"Power ratio", resp.PowerRatio, 1, "share of tile heat turned into power"},
		{"Heat modifier", resp.HeatModifier, 15, "waste heat, plasma and oxygen release"},
		{"Transmission", resp.Transmission, 30, "radiation output"},
		{"Heat resistance", resp.HeatResistance, 6, "raises the damage temperature"},
	}
	for _, r := range rows {
		rl.DrawText(r.label, x, y, 16, rl.DarkGray)
		gui.ProgressBar(
			rl.Rectangle{X: float32(x + 150), Y: float32(y), Width: 260, Height: 18},
			"", fmt.Sprintf("%.2f", r.value),
			float32(min(r.value, r.max)), 0, float32(r.max),
		)
		y += 20
		rl.DrawText(r.subtitle, x, y, 12, rl.LightGray)
		y += 24
	}
}

// mixYAML formats the mix as an atmosphere config block.
func mixYAML(mix *gas.Mixture) (string, error) {
	moles := make(map[string]float64)
	for _, s := range gas.All() {
		if m := mix.Moles[s]; m > 0 {
			moles[s.String()] = m
		}
	}
	out, err := yaml.Marshal(map[string]any{
		"atmosphere": map[string]any{
			"temperature": mix.Temperature,
			"mix":         moles,
		},
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
