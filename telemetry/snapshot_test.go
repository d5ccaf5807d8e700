package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/gas"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	sm := components.NewSupermatter(config.Cfg())
	sm.Power = 1200
	sm.Damage = 90
	sm.GasStorage[gas.Plasma] = 3.5
	sm.BeginDelamination(components.DelamTesla, 40*time.Second)

	var mix gas.Mixture
	mix.Moles[gas.Nitrogen] = 100
	mix.Temperature = 280
	atmos := components.Atmosphere{Mix: mix}
	pos := components.Position{X: 5, Y: 6}

	snapshot := &Snapshot{
		Version:  SnapshotVersion,
		Seed:     42,
		Tick:     30,
		SimTime:  30,
		Reactors: []ReactorState{NewReactorState(7, &sm, &atmos, &pos, 30*time.Second)},
		Bookmark: &Bookmark{Type: BookmarkDelamination, Tick: 30, Reactor: 7},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if !strings.HasSuffix(path, "snapshot_30_delamination.json") {
		t.Errorf("path = %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(loaded.Reactors) != 1 {
		t.Fatalf("reactors = %d", len(loaded.Reactors))
	}
	r := loaded.Reactors[0]
	if r.ID != 7 || r.Power != 1200 || r.TileMoles != 100 {
		t.Errorf("reactor = %+v", r)
	}
	if r.GasStorage[gas.Plasma] != 3.5 {
		t.Errorf("plasma = %v", r.GasStorage[gas.Plasma])
	}
	if r.DelamType != "Tesla" || r.DelamRemaining != 10 {
		t.Errorf("delam = %s, %v s", r.DelamType, r.DelamRemaining)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkDelamination {
		t.Errorf("bookmark = %+v", loaded.Bookmark)
	}
}

func TestLoadSnapshot_RejectsOtherVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version error")
	}
}
