// Package tui is a terminal dashboard for a running reactor floor. It
// steps a Source on a timer and shows gauges, a power history graph and
// the radio log.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/pthm-cable/supermatter/telemetry"
)

const (
	historyCapacity = 120
	radioLines      = 6
	gaugeWidth      = 24
	maxSpeed        = 20
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	radioStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false, false, false).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	statusStyles = map[string]lipgloss.Style{
		"Inactive":     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		"Normal":       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"Notify":       lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		"Warning":      lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		"Danger":       lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"Emergency":    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		"Delaminating": lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true),
	}
)

// Source advances the simulation by one tick.
type Source interface {
	Step() (*telemetry.Snapshot, []telemetry.Event)
}

// TickMsg drives the simulation.
type TickMsg time.Time

// Model is the bubbletea model of the dashboard.
type Model struct {
	src      Source
	interval time.Duration
	running  bool
	speed    int // Ticks stepped per TickMsg

	snap     *telemetry.Snapshot
	selected int
	history  map[uint32][]float64 // Power per reactor
	radio    []string
	showHelp bool
}

// NewModel creates a dashboard stepping src every interval.
func NewModel(src Source, interval time.Duration) Model {
	return Model{
		src:      src,
		interval: interval,
		running:  true,
		speed:    1,
		history:  make(map[uint32][]float64),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input and steps the source.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "tab":
			if m.snap != nil && len(m.snap.Reactors) > 0 {
				m.selected = (m.selected + 1) % len(m.snap.Reactors)
			}
		case "+", "=":
			m.speed = min(m.speed+1, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed-1, 1)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			for range m.speed {
				m.step()
			}
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the source one tick and records what it produced.
func (m *Model) step() {
	snap, events := m.src.Step()
	m.snap = snap

	for _, r := range snap.Reactors {
		h := append(m.history[r.ID], r.Power)
		if len(h) > historyCapacity {
			h = h[len(h)-historyCapacity:]
		}
		m.history[r.ID] = h
	}

	for _, ev := range events {
		if ev.Kind != "announcement" {
			continue
		}
		m.radio = append(m.radio, fmt.Sprintf("[%s] %s", ev.Channel, ev.Message))
	}
	if n := len(m.radio); n > radioLines {
		m.radio = m.radio[n-radioLines:]
	}
	if m.selected >= len(snap.Reactors) {
		m.selected = 0
	}
}

// View renders the dashboard.
func (m Model) View() string {
	if m.snap == nil {
		return "waiting for the first tick...\n"
	}

	var b strings.Builder
	state := "running"
	if !m.running {
		state = "paused"
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("SUPERMATTER  tick %d  t=%s  %dx  %s",
		m.snap.Tick, time.Duration(m.snap.SimTime*float64(time.Second)).Round(time.Second), m.speed, state)))
	b.WriteString("\n")

	for i, r := range m.snap.Reactors {
		b.WriteString(m.reactorLine(i, r))
		b.WriteString("\n")
	}

	if mon := m.snap.Monument; mon != nil {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Monument"))
		b.WriteString(valueStyle.Render(fmt.Sprintf("stage %d  entropy %.0f  available %.0f", mon.Stage, mon.Entropy, mon.Available)))
		if mon.SelectedGlyph != "" {
			b.WriteString(valueStyle.Render("  glyph " + mon.SelectedGlyph))
		}
		b.WriteString("\n")
	}

	if len(m.snap.Reactors) > 0 {
		b.WriteString(m.powerGraph(m.snap.Reactors[m.selected]))
		b.WriteString("\n")
	}

	if len(m.radio) > 0 {
		b.WriteString(radioStyle.Render(strings.Join(m.radio, "\n")))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(helpStyle.Render("space: pause  tab: next crystal  +/-: speed  ?: help  q: quit"))
	} else {
		b.WriteString(helpStyle.Render("?: help  q: quit"))
	}
	return b.String()
}

// reactorLine renders one crystal's status and integrity gauge.
func (m Model) reactorLine(i int, r telemetry.ReactorState) string {
	name := fmt.Sprintf("#%d", r.ID)
	if i == m.selected {
		name = selectStyle.Render("> " + name)
	}

	style, ok := statusStyles[r.Status]
	if !ok {
		style = valueStyle
	}
	line := fmt.Sprintf("%s %s %s %5.1f%%  %6.0f power  %6.0fK",
		labelStyle.Render(name),
		style.Width(13).Render(r.Status),
		gauge(r.Integrity/100, gaugeWidth),
		r.Integrity,
		r.Power,
		r.Temperature,
	)
	if r.DelamType != "" {
		line += style.Render(fmt.Sprintf("  %s in %.0fs", r.DelamType, r.DelamRemaining))
	}
	return line
}

// powerGraph plots the selected crystal's recent power.
func (m Model) powerGraph(r telemetry.ReactorState) string {
	data := m.history[r.ID]
	if len(data) < 2 {
		return ""
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("crystal #%d power", r.ID)),
	)
	return graphStyle.Render(graph)
}

// gauge renders a fill bar for a fraction in [0, 1].
func gauge(frac float64, width int) string {
	frac = max(0, min(frac, 1))
	filled := int(frac*float64(width) + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
