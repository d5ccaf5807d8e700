package monument

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/pthm-cable/supermatter/locale"
)

// State is the snapshot the host pushes whenever the monument changes.
type State struct {
	SelectedGlyph               string
	UnlockedGlyphs              map[string]struct{}
	UnlockedInfluences          map[string]struct{}
	PercentageComplete          float64
	AvailableEntropy            int
	EntropyUntilNextStage       int
	CrewToConvertUntilNextStage int
}

// BoxState is how an influence is shown.
type BoxState uint8

const (
	BoxLocked BoxState = iota
	BoxOwned
	BoxUnlockedAffordable
	BoxUnlockedUnaffordable
)

// String returns the name used in logs and tests.
func (b BoxState) String() string {
	switch b {
	case BoxLocked:
		return "locked"
	case BoxOwned:
		return "owned"
	case BoxUnlockedAffordable:
		return "affordable"
	case BoxUnlockedUnaffordable:
		return "unaffordable"
	default:
		return "unknown"
	}
}

// GlyphButton is one entry of the glyph selection group.
type GlyphButton struct {
	ID      string
	Name    string
	Tooltip string
	Icon    string
	Enabled bool
	Pressed bool
}

// InfluenceBox is one entry of the influence list.
type InfluenceBox struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Cost        int
	CostLabel   string
	State       BoxState
}

// CanGain reports whether the gain button is enabled.
func (b InfluenceBox) CanGain() bool {
	return b.State == BoxUnlockedAffordable
}

// View is the rendered panel. Renderers draw it as-is.
type View struct {
	Progress       float64 // [0,100]
	ProgressLabel  string
	AvailableLabel string
	NextStageLabel string
	CrewLabel      string
	SelectLabel    string
	RemoveLabel    string
	Glyphs         []GlyphButton
	Influences     []InfluenceBox
}

// Owner is the local player's record of bought influences.
type Owner interface {
	Owns(influenceID string) bool
}

// Deps are the host services a presenter reads from.
type Deps struct {
	Prototypes *Prototypes
	// LocalPlayer returns the local player's cult record, false when the
	// local player has none.
	LocalPlayer func() (Owner, bool)
	Loc         *locale.Catalog
	Logger      *slog.Logger
}

// Presenter turns monument snapshots into a View and forwards button
// presses to the host as intents. It keeps no authoritative state.
type Presenter struct {
	protos *Prototypes
	player func() (Owner, bool)
	loc    *locale.Catalog
	log    *slog.Logger

	view    View
	pending string // Glyph pressed locally, sent on PressSelect

	OnSelectGlyph func(id string)
	OnRemoveGlyph func()
	OnGain        func(id string)
}

// NewPresenter creates a presenter. Missing deps fall back to the
// embedded prototypes and catalog.
func NewPresenter(deps Deps) *Presenter {
	p := &Presenter{
		protos: deps.Prototypes,
		player: deps.LocalPlayer,
		loc:    deps.Loc,
		log:    deps.Logger,
	}
	if p.protos == nil {
		p.protos = DefaultPrototypes()
	}
	if p.loc == nil {
		p.loc = locale.Default()
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	if p.player == nil {
		p.player = func() (Owner, bool) { return nil, false }
	}
	return p
}

// View returns the last rendered view.
func (p *Presenter) View() View {
	return p.view
}

// UpdateState rebuilds the whole view from st.
func (p *Presenter) UpdateState(st State) View {
	p.pending = st.SelectedGlyph

	p.view = View{
		Progress: st.PercentageComplete,
		ProgressLabel: p.loc.Get("monument-interface-progress-bar",
			locale.Arg{Name: "percentage", Value: fmt.Sprintf("%.0f", st.PercentageComplete)}),
		AvailableLabel: p.loc.Get("monument-interface-entropy-value",
			locale.Arg{Name: "infused", Value: st.AvailableEntropy}),
		NextStageLabel: p.loc.Get("monument-interface-entropy-value",
			locale.Arg{Name: "infused", Value: st.EntropyUntilNextStage}),
		CrewLabel: p.loc.Get("monument-interface-crew",
			locale.Arg{Name: "count", Value: st.CrewToConvertUntilNextStage}),
		SelectLabel: p.loc.Get("monument-interface-select-glyph"),
		RemoveLabel: p.loc.Get("monument-interface-remove-glyph"),
		Glyphs:      p.glyphs(st),
		Influences:  p.influences(st),
	}
	return p.view
}

func (p *Presenter) glyphs(st State) []GlyphButton {
	glyphs := slices.Clone(p.protos.Glyphs)
	slices.SortStableFunc(glyphs, func(a, b Glyph) int {
		return compareFold(a.Name, b.Name)
	})

	out := make([]GlyphButton, 0, len(glyphs))
	for _, g := range glyphs {
		_, unlocked := st.UnlockedGlyphs[g.ID]
		out = append(out, GlyphButton{
			ID:      g.ID,
			Name:    g.Name,
			Tooltip: p.loc.Get(g.Tooltip),
			Icon:    g.Icon,
			Enabled: unlocked,
			Pressed: g.ID == st.SelectedGlyph,
		})
	}
	return out
}

func (p *Presenter) influences(st State) []InfluenceBox {
	infs := slices.Clone(p.protos.Influences)
	slices.SortStableFunc(infs, func(a, b Influence) int {
		_, ua := st.UnlockedInfluences[a.ID]
		_, ub := st.UnlockedInfluences[b.ID]
		if ua != ub {
			if ua {
				return -1
			}
			return 1
		}
		return compareFold(a.Name, b.Name)
	})

	owner, hasOwner := p.player()
	if !hasOwner {
		p.log.Debug("monument panel has no local cultist, influences locked")
	}

	out := make([]InfluenceBox, 0, len(infs))
	for _, inf := range infs {
		out = append(out, InfluenceBox{
			ID:          inf.ID,
			Name:        inf.Name,
			Description: inf.Description,
			Icon:        inf.Icon,
			Cost:        inf.Cost,
			CostLabel:   p.loc.Get("monument-interface-cost", locale.Arg{Name: "cost", Value: inf.Cost}),
			State:       boxState(inf, st, owner, hasOwner),
		})
	}
	return out
}

// boxState derives an influence's state. Without a local cultist every
// influence is Locked.
func boxState(inf Influence, st State, owner Owner, hasOwner bool) BoxState {
	if !hasOwner || owner == nil {
		return BoxLocked
	}
	if owner.Owns(inf.ID) {
		return BoxOwned
	}
	if _, unlocked := st.UnlockedInfluences[inf.ID]; !unlocked {
		return BoxLocked
	}
	if inf.Cost > st.AvailableEntropy {
		return BoxUnlockedUnaffordable
	}
	return BoxUnlockedAffordable
}

// compareFold orders case-insensitively, breaking ties by exact bytes so
// the order is total.
func compareFold(a, b string) int {
	if c := cmp.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

// PressGlyph presses a glyph button. Only one glyph is pressed at a time;
// disabled glyphs ignore the press.
func (p *Presenter) PressGlyph(id string) bool {
	idx := slices.IndexFunc(p.view.Glyphs, func(g GlyphButton) bool { return g.ID == id })
	if idx < 0 || !p.view.Glyphs[idx].Enabled {
		return false
	}
	p.pending = id
	for i := range p.view.Glyphs {
		p.view.Glyphs[i].Pressed = i == idx
	}
	return true
}

// PendingGlyph returns the glyph that PressSelect would send.
func (p *Presenter) PendingGlyph() string {
	return p.pending
}

// PressSelect sends the pressed glyph to the host.
func (p *Presenter) PressSelect() {
	if p.OnSelectGlyph != nil {
		p.OnSelectGlyph(p.pending)
	}
}

// PressRemove asks the host to clear the selected glyph.
func (p *Presenter) PressRemove() {
	if p.OnRemoveGlyph != nil {
		p.OnRemoveGlyph()
	}
}

// PressGain asks the host to buy an influence. The press is ignored
// unless the influence's gain button is enabled.
func (p *Presenter) PressGain(id string) bool {
	idx := slices.IndexFunc(p.view.Influences, func(b InfluenceBox) bool { return b.ID == id })
	if idx < 0 || !p.view.Influences[idx].CanGain() {
		return false
	}
	if p.OnGain != nil {
		p.OnGain(id)
	}
	return true
}
