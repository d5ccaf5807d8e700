package ui

import "testing"

func TestOverlayRegistry_Defaults(t *testing.T) {
	reg := NewOverlayRegistry()

	for _, id := range []OverlayID{OverlayLightning, OverlayAnomalies, OverlayRemnants, OverlayLabels} {
		if !reg.IsEnabled(id) {
			t.Errorf("%s should start enabled", id)
		}
	}
	if reg.IsEnabled(OverlayTileGas) || reg.IsEnabled(OverlayAnomalyRange) {
		t.Error("tile gas and anomaly range should start disabled")
	}
}

func TestOverlayRegistry_Exclusive(t *testing.T) {
	reg := NewOverlayRegistry()

	if !reg.Toggle(OverlayTileGas) {
		t.Fatal("toggle should enable tile gas")
	}
	if reg.IsEnabled(OverlayLabels) {
		t.Error("enabling tile gas should disable labels")
	}

	reg.SetEnabled(OverlayLabels, true)
	if reg.IsEnabled(OverlayTileGas) {
		t.Error("enabling labels should disable tile gas")
	}
}

func TestOverlayRegistry_Categories(t *testing.T) {
	reg := NewOverlayRegistry()

	cats := reg.Categories()
	want := []string{"hazards", "reactor", "debug"}
	if len(cats) != len(want) {
		t.Fatalf("categories = %v", cats)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("category %d = %q, want %q", i, cats[i], want[i])
		}
	}
	if n := len(reg.ByCategory("hazards")); n != 3 {
		t.Errorf("hazard overlays = %d", n)
	}
}

func TestOverlayRegistry_HandleKeyPress(t *testing.T) {
	reg := NewOverlayRegistry()
	desc, _ := reg.Get(OverlayAnomalyRange)

	id, enabled, ok := reg.HandleKeyPress(desc.Key)
	if !ok || id != OverlayAnomalyRange || !enabled {
		t.Errorf("key press = %v, %v, %v", id, enabled, ok)
	}
	if _, _, ok := reg.HandleKeyPress(0x7fff); ok {
		t.Error("unbound key toggled an overlay")
	}

	enabledIDs := reg.EnabledOverlays()
	if enabledIDs[len(enabledIDs)-1] != OverlayAnomalyRange {
		t.Errorf("enabled order = %v", enabledIDs)
	}
}

func TestPanelAnchor_Place(t *testing.T) {
	tests := []struct {
		anchor PanelAnchor
		x, y   int32
	}{
		{AnchorTopLeft, 10, 10},
		{AnchorTopRight, 690, 10},
		{AnchorBottomLeft, 10, 490},
		{AnchorBottomRight, 690, 490},
		{AnchorCenter, 350, 250},
	}
	for _, tt := range tests {
		x, y := tt.anchor.Place(100, 100, 800, 600, 10)
		if x != tt.x || y != tt.y {
			t.Errorf("anchor %d = (%d, %d), want (%d, %d)", tt.anchor, x, y, tt.x, tt.y)
		}
	}
}
