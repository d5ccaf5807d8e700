package game

import (
	"fmt"
	"time"

	"github.com/pthm-cable/supermatter/systems"
)

// logEffect logs an effect. Announcements go out at Info and into the
// HUD's radio log; everything else is Debug.
func (g *Game) logEffect(fx systems.Effect) {
	if fx.Kind == systems.EffectAnnouncement {
		g.log.Info("announcement",
			"reactor", fx.Entity.ID(),
			"channel", fx.Channel,
			"global", fx.Global,
			"message", fx.Message,
		)
		g.pushAnnouncement(fmt.Sprintf("[%s] %s", fx.Channel, fx.Message))
		return
	}

	g.log.Debug("effect",
		"kind", fx.Kind.String(),
		"reactor", fx.Entity.ID(),
		"sound", fx.Sound,
		"prototype", fx.Prototype,
		"count", fx.Count,
	)
}

// pushAnnouncement appends to the radio log, dropping the oldest line.
func (g *Game) pushAnnouncement(line string) {
	g.announcements = append(g.announcements, line)
	if n := len(g.announcements); n > announcementHistory {
		g.announcements = g.announcements[n-announcementHistory:]
	}
}

// logStartup logs the floor layout once the game is built.
func (g *Game) logStartup() {
	g.log.Info("reactor floor ready",
		"seed", g.seed,
		"reactors", g.cfg.Sim.Reactors,
		"dt", g.cfg.Derived.DT,
		"monument", g.monuments != nil,
		"headless", g.headless,
	)
	for _, info := range g.registry.All() {
		g.log.Debug("system", "id", info.ID, "name", info.Name, "category", info.Category)
	}
}

// logPerfStats logs performance statistics.
func (g *Game) logPerfStats() {
	total := g.perf.Total()
	args := []any{
		"tick", g.tick,
		"speed", g.stepsPerUpdate,
		"total", total.Round(time.Microsecond),
	}
	for _, name := range g.perf.SortedNames() {
		args = append(args, name, g.perf.Avg(name).Round(time.Microsecond))
	}
	g.log.Info("perf", args...)
}
