package game

import (
	"log/slog"

	"github.com/pthm-cable/supermatter/telemetry"
)

// sampleReactors feeds every crystal's post-tick state to the collector.
func (g *Game) sampleReactors() {
	query := g.reactorFilter.Query()
	for query.Next() {
		sm, atmos, _ := query.Get()
		g.collector.RecordSample(telemetry.Sample{
			Reactor:     query.Entity().ID(),
			Power:       sm.Power,
			Temperature: sm.Temperature,
			Damage:      sm.Damage,
			Integrity:   sm.Integrity(),
			Moles:       atmos.Mix.TotalMoles(),
			Status:      sm.Status,
		})
	}
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	windows := g.collector.Flush(g.tick)

	if g.logStats {
		for _, stats := range windows {
			stats.LogStats()
		}
		g.logPerfStats()
	}

	if err := g.output.WriteTelemetry(windows); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}

	for _, stats := range windows {
		for _, bm := range g.bookmarks.Check(stats) {
			bm.LogBookmark()

			if err := g.output.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
			if g.snapshotDir != "" {
				g.saveSnapshot(&bm)
			}
		}
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(g.Snapshot(bookmark), g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// Snapshot builds the observable state of the floor at the current tick.
func (g *Game) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		Seed:     g.seed,
		Tick:     g.tick,
		SimTime:  g.now.Seconds(),
		Bookmark: bookmark,
	}

	query := g.reactorFilter.Query()
	for query.Next() {
		sm, atmos, pos := query.Get()
		snapshot.Reactors = append(snapshot.Reactors,
			telemetry.NewReactorState(query.Entity().ID(), sm, atmos, pos, g.now))
	}

	if g.monuments != nil && g.world.Alive(g.monumentEntity) {
		snapshot.Monument = telemetry.NewMonumentState(g.monumentMap.Get(g.monumentEntity))
	}
	return snapshot
}

// publishSnapshot pushes the current state to monitor clients.
func (g *Game) publishSnapshot() {
	if g.monitor == nil {
		return
	}
	g.monitor.PublishSnapshot(g.Snapshot(nil))
}
