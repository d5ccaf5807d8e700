package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/gas"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is the observable state of every reactor at one tick. The
// monitor streams it and bookmarks save it to disk.
type Snapshot struct {
	Version int     `json:"version"`
	Seed    int64   `json:"seed"`
	Tick    int32   `json:"tick"`
	SimTime float64 `json:"sim_time"`

	Reactors []ReactorState `json:"reactors"`
	Monument *MonumentState `json:"monument,omitempty"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ReactorState is one crystal's replicated fields.
type ReactorState struct {
	ID     uint32  `json:"id"`
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Status string  `json:"status"`
	Phase  string  `json:"phase"`

	Power              float64 `json:"power"`
	Temperature        float64 `json:"temperature"`
	Damage             float64 `json:"damage"`
	Integrity          float64 `json:"integrity"`
	MatterPower        float64 `json:"matter_power"`
	PowerlossInhibitor float64 `json:"powerloss_inhibitor"`
	Radiation          float64 `json:"radiation"`

	GasStorage      gas.Storage `json:"gas_storage"`
	TileMoles       float64     `json:"tile_moles"`
	TileTemperature float64     `json:"tile_temperature"`

	DelamType      string  `json:"delam_type,omitempty"`
	DelamRemaining float64 `json:"delam_remaining,omitempty"` // Seconds
}

// NewReactorState copies a crystal's state at now.
func NewReactorState(id uint32, sm *components.Supermatter, atmos *components.Atmosphere, pos *components.Position, now time.Duration) ReactorState {
	rs := ReactorState{
		ID:                 id,
		X:                  pos.X,
		Y:                  pos.Y,
		Status:             sm.Status.String(),
		Phase:              sm.Phase().String(),
		Power:              sm.Power,
		Temperature:        sm.Temperature,
		Damage:             sm.Damage,
		Integrity:          sm.Integrity(),
		MatterPower:        sm.MatterPower,
		PowerlossInhibitor: sm.PowerlossInhibitor,
		Radiation:          sm.Radiation,
		GasStorage:         sm.GasStorage,
		TileMoles:          atmos.Mix.TotalMoles(),
		TileTemperature:    atmos.Mix.Temperature,
	}
	if sm.Delamming() {
		rs.DelamType = sm.PreferredDelamType.String()
		rs.DelamRemaining = max(sm.DelamEndTime-now, 0).Seconds()
	}
	return rs
}

// MonumentState is the monument's replicated fields.
type MonumentState struct {
	Stage         int     `json:"stage"`
	Entropy       float64 `json:"entropy"`
	Available     float64 `json:"available"`
	SelectedGlyph string  `json:"selected_glyph,omitempty"`
}

// NewMonumentState copies a monument's state.
func NewMonumentState(m *components.Monument) *MonumentState {
	return &MonumentState{
		Stage:         m.Stage,
		Entropy:       m.Entropy,
		Available:     m.Available(),
		SelectedGlyph: m.SelectedGlyph,
	}
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
