package telemetry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/systems"
)

func TestCollector_WindowsPerReactor(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap1[components.Position](w)
	a := mapper.NewEntity(&components.Position{})
	b := mapper.NewEntity(&components.Position{})

	c := NewCollector(3, time.Second)
	for tick := 0; tick < 3; tick++ {
		c.RecordSample(Sample{Reactor: a.ID(), Power: float64(tick) * 100, Damage: float64(tick), Integrity: 100 - float64(tick), Status: components.StatusNormal})
		c.RecordSample(Sample{Reactor: b.ID(), Power: 50, Status: components.StatusWarning})
	}
	c.RecordEffect(systems.Effect{Kind: systems.EffectZap, Entity: a, Count: 3})
	c.RecordEffect(systems.Effect{Kind: systems.EffectZap, Entity: a, Count: 2})
	c.RecordEffect(systems.Effect{Kind: systems.EffectAnnouncement, Entity: b})

	if c.ShouldFlush(2) {
		t.Error("flushed before the window ended")
	}
	if !c.ShouldFlush(3) {
		t.Fatal("window should be complete at tick 3")
	}

	stats := c.Flush(3)
	if len(stats) != 2 {
		t.Fatalf("got %d windows, want 2", len(stats))
	}
	first := stats[0]
	if first.Reactor != a.ID() {
		t.Errorf("windows not ordered by reactor: %d, %d", stats[0].Reactor, stats[1].Reactor)
	}
	if first.Samples != 3 || first.PowerMax != 200 || first.PowerMean != 100 {
		t.Errorf("reactor a = %+v", first)
	}
	if first.IntegrityMin != 98 || first.DamageMax != 2 {
		t.Errorf("integrity %v damage %v", first.IntegrityMin, first.DamageMax)
	}
	if first.Zaps != 2 || first.Bolts != 5 {
		t.Errorf("zaps %d bolts %d", first.Zaps, first.Bolts)
	}
	if stats[1].Status != "Warning" || stats[1].Announcements != 1 {
		t.Errorf("reactor b = %+v", stats[1])
	}
	if first.SimTimeSec != 3 {
		t.Errorf("sim time = %v", first.SimTimeSec)
	}

	// Nothing recorded since the flush
	if again := c.Flush(6); len(again) != 0 {
		t.Errorf("empty window produced %d stats", len(again))
	}
}

func TestCollector_DelamComplete(t *testing.T) {
	w := ecs.NewWorld()
	e := ecs.NewMap1[components.Position](w).NewEntity(&components.Position{})

	c := NewCollector(10, time.Second)
	c.RecordSample(Sample{Reactor: e.ID(), Status: components.StatusEmergency})
	c.RecordEffect(systems.Effect{Kind: systems.EffectDelamComplete, Entity: e})

	stats := c.Flush(10)
	if len(stats) != 1 || !stats[0].Delaminated || stats[0].Status != "Delaminating" {
		t.Errorf("stats = %+v", stats)
	}
}

func TestOutputManager_Telemetry(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 1; i <= 2; i++ {
		err := om.WriteTelemetry([]WindowStats{{WindowEndTick: int32(i * 10), Reactor: 1, Samples: 10, PowerMean: float64(i), Status: "Normal"}})
		if err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkRecovery, Tick: 20, Reactor: 1}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	stats, err := ReadTelemetry(filepath.Join(dir, ReactorFile))
	if err != nil {
		t.Fatalf("ReadTelemetry: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("read %d rows, want 2", len(stats))
	}
	if stats[1].WindowEndTick != 20 || stats[1].PowerMean != 2 {
		t.Errorf("row 2 = %+v", stats[1])
	}
}

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	if err := om.WriteTelemetry([]WindowStats{{Reactor: 1}}); err != nil {
		t.Errorf("nil manager write: %v", err)
	}
	if om.Dir() != "" {
		t.Error("nil manager has a directory")
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil manager close: %v", err)
	}
}
