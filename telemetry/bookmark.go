package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/supermatter/components"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkStatusEscalation BookmarkType = "status_escalation"
	BookmarkDamageSpike      BookmarkType = "damage_spike"
	BookmarkPowerSurge       BookmarkType = "power_surge"
	BookmarkRecovery         BookmarkType = "recovery"
	BookmarkDelamination     BookmarkType = "delamination"
)

// Bookmark represents an automatically detected moment worth reviewing.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Reactor     uint32       `csv:"reactor"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	level := slog.LevelInfo
	if b.Type == BookmarkDelamination || b.Type == BookmarkStatusEscalation {
		level = slog.LevelWarn
	}
	slog.Log(context.Background(), level, "bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"reactor", b.Reactor,
		"description", b.Description,
	)
}

// reactorHistory is a rolling window history for one reactor.
type reactorHistory struct {
	history     []WindowStats
	historyIdx  int
	historyFull bool

	lastStatus components.Status
	peakStatus components.Status // Highest status since the last recovery
}

// BookmarkDetector detects alert-worthy moments in reactor telemetry.
type BookmarkDetector struct {
	historySize int
	reactors    map[uint32]*reactorHistory
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for rolling averages
	}
	return &BookmarkDetector{
		historySize: historySize,
		reactors:    make(map[uint32]*reactorHistory),
	}
}

// Check analyzes the latest window of one reactor and returns any
// triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	rh, ok := bd.reactors[stats.Reactor]
	if !ok {
		rh = &reactorHistory{history: make([]WindowStats, bd.historySize)}
		bd.reactors[stats.Reactor] = rh
	}
	status := components.ParseStatus(stats.Status)

	var bookmarks []Bookmark
	if b := bd.checkDelamination(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := rh.checkStatusEscalation(stats, status); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := rh.checkRecovery(stats, status); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := rh.checkDamageSpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := rh.checkPowerSurge(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	rh.addToHistory(stats)
	rh.lastStatus = status
	rh.peakStatus = max(rh.peakStatus, status)

	if stats.Delaminated {
		delete(bd.reactors, stats.Reactor)
	}
	return bookmarks
}

func (rh *reactorHistory) addToHistory(stats WindowStats) {
	rh.history[rh.historyIdx] = stats
	rh.historyIdx = (rh.historyIdx + 1) % len(rh.history)
	if rh.historyIdx == 0 {
		rh.historyFull = true
	}
}

// getHistory returns the stored windows oldest first.
func (rh *reactorHistory) getHistory() []WindowStats {
	if rh.historyFull {
		return append(rh.history[rh.historyIdx:len(rh.history):len(rh.history)], rh.history[:rh.historyIdx]...)
	}
	return rh.history[:rh.historyIdx]
}

func (bd *BookmarkDetector) checkDelamination(stats WindowStats) *Bookmark {
	if !stats.Delaminated {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkDelamination,
		Tick:        stats.WindowEndTick,
		Reactor:     stats.Reactor,
		Description: fmt.Sprintf("Reactor delaminated with peak power %.0f", stats.PowerMax),
	}
}

// checkStatusEscalation fires when the worst status of a window reaches
// Warning or above and exceeds the previous window's.
func (rh *reactorHistory) checkStatusEscalation(stats WindowStats, status components.Status) *Bookmark {
	if status < components.StatusWarning || status <= rh.lastStatus || stats.Delaminated {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkStatusEscalation,
		Tick:        stats.WindowEndTick,
		Reactor:     stats.Reactor,
		Description: fmt.Sprintf("Status escalated from %s to %s (integrity %.1f%%)", rh.lastStatus, status, stats.IntegrityMin),
	}
}

// checkRecovery fires when a reactor that reached Warning or worse drops
// back to Normal or Inactive.
func (rh *reactorHistory) checkRecovery(stats WindowStats, status components.Status) *Bookmark {
	if rh.peakStatus < components.StatusWarning || status > components.StatusNormal {
		return nil
	}
	peak := rh.peakStatus
	rh.peakStatus = status
	return &Bookmark{
		Type:        BookmarkRecovery,
		Tick:        stats.WindowEndTick,
		Reactor:     stats.Reactor,
		Description: fmt.Sprintf("Recovered to %s after reaching %s", status, peak),
	}
}

// checkDamageSpike fires when peak damage rose by more than twice the
// rolling average rise.
func (rh *reactorHistory) checkDamageSpike(stats WindowStats) *Bookmark {
	history := rh.getHistory()
	if len(history) < 3 {
		return nil
	}

	rise := stats.DamageMax - history[len(history)-1].DamageMax

	var totalRise float64
	for i := 1; i < len(history); i++ {
		totalRise += max(history[i].DamageMax-history[i-1].DamageMax, 0)
	}
	avgRise := totalRise / float64(len(history)-1)

	if rise > 1 && rise > avgRise*2.0 {
		return &Bookmark{
			Type:        BookmarkDamageSpike,
			Tick:        stats.WindowEndTick,
			Reactor:     stats.Reactor,
			Description: fmt.Sprintf("Damage rose %.2f in one window (average %.2f)", rise, avgRise),
		}
	}
	return nil
}

// checkPowerSurge fires when mean power exceeds twice its rolling average.
func (rh *reactorHistory) checkPowerSurge(stats WindowStats) *Bookmark {
	history := rh.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.PowerMean
	}
	avg := total / float64(len(history))
	if avg <= 0 {
		return nil
	}

	if stats.PowerMean > avg*2.0 && stats.PowerMean > 100 {
		return &Bookmark{
			Type:        BookmarkPowerSurge,
			Tick:        stats.WindowEndTick,
			Reactor:     stats.Reactor,
			Description: fmt.Sprintf("Power %.0f is %.1fx average (%.0f)", stats.PowerMean, stats.PowerMean/avg, avg),
		}
	}
	return nil
}
