package game

import (
	"log/slog"

	"github.com/pthm-cable/supermatter/audio"
	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/monitor"
)

// Options configures a game instance.
type Options struct {
	Config      *config.Config // nil = config.Cfg()
	Headless    bool           // No window, camera or panels
	Seed        int64          // 0 = config seed, then time based
	OutputDir   string         // CSV telemetry directory (empty = disabled)
	SnapshotDir string         // Bookmark snapshots (empty = disabled)
	LogStats    bool           // Log every telemetry window
	Logger      *slog.Logger   // nil = slog.Default()

	Monitor *monitor.Hub      // Optional websocket monitor
	Sound   *audio.SoundBoard // Optional sound output
}

// Speed limits for the steps-per-update control.
const (
	MinSpeed = 1
	MaxSpeed = 10
)

// announcementHistory is how many radio lines the HUD keeps.
const announcementHistory = 6

// consumeMatter is the matter power added when an object is thrown in.
const consumeMatter = 200
