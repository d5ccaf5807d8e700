package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pthm-cable/supermatter/telemetry"
)

// fakeSource ramps power by 10 each tick and announces on tick 2.
type fakeSource struct {
	tick int32
}

func (f *fakeSource) Step() (*telemetry.Snapshot, []telemetry.Event) {
	f.tick++
	snap := &telemetry.Snapshot{
		Tick:    f.tick,
		SimTime: float64(f.tick),
		Reactors: []telemetry.ReactorState{
			{ID: 1, Status: "Normal", Power: float64(f.tick) * 10, Integrity: 100},
			{ID: 2, Status: "Warning", Power: 5, Integrity: 40},
		},
		Monument: &telemetry.MonumentState{Stage: 1, Entropy: 70, Available: 70},
	}
	var events []telemetry.Event
	if f.tick == 2 {
		events = append(events,
			telemetry.Event{Tick: f.tick, Kind: "announcement", Channel: "Engineering", Message: "Crystal integrity at 40%"},
			telemetry.Event{Tick: f.tick, Kind: "zap"},
		)
	}
	return snap, events
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_TickSteps(t *testing.T) {
	src := &fakeSource{}
	m := NewModel(src, time.Millisecond)

	m = update(t, m, TickMsg(time.Now()))
	m = update(t, m, TickMsg(time.Now()))

	if src.tick != 2 {
		t.Fatalf("source ticks = %d, want 2", src.tick)
	}
	if got := m.history[1]; len(got) != 2 || got[1] != 20 {
		t.Errorf("power history = %v", got)
	}
	if len(m.radio) != 1 || !strings.Contains(m.radio[0], "integrity at 40%") {
		t.Errorf("radio = %v", m.radio)
	}
}

func TestModel_PauseAndSpeed(t *testing.T) {
	src := &fakeSource{}
	m := NewModel(src, time.Millisecond)

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = update(t, m, TickMsg(time.Now()))
	if src.tick != 0 {
		t.Fatalf("paused model stepped %d ticks", src.tick)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m = update(t, m, TickMsg(time.Now()))
	if src.tick != 2 {
		t.Errorf("ticks at speed 2 = %d, want 2", src.tick)
	}
}

func TestModel_View(t *testing.T) {
	m := NewModel(&fakeSource{}, time.Millisecond)
	if !strings.Contains(m.View(), "waiting") {
		t.Error("view before the first tick should say waiting")
	}

	for range 3 {
		m = update(t, m, TickMsg(time.Now()))
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})

	view := m.View()
	for _, want := range []string{"tick 3", "#1", "#2", "Warning", "stage 1", "crystal #2 power", "Engineering"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestGauge(t *testing.T) {
	tests := []struct {
		frac float64
		want string
	}{
		{0, "[....]"},
		{0.5, "[##..]"},
		{1, "[####]"},
		{2, "[####]"},
	}
	for _, tt := range tests {
		if got := gauge(tt.frac, 4); got != tt.want {
			t.Errorf("gauge(%v) = %q, want %q", tt.frac, got, tt.want)
		}
	}
}
