package telemetry

import (
	"slices"
	"time"

	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/systems"
)

// Sample is one reactor's post-tick state.
type Sample struct {
	Reactor     uint32
	Power       float64
	Temperature float64
	Damage      float64
	Integrity   float64
	Moles       float64
	Status      components.Status
}

// reactorWindow accumulates one reactor's samples and events.
type reactorWindow struct {
	power, temperature, damage, integrity, moles []float64

	worst         components.Status
	zaps          int
	bolts         int
	anomalies     int
	announcements int
	delaminated   bool
}

func (w *reactorWindow) reset() {
	w.power = w.power[:0]
	w.temperature = w.temperature[:0]
	w.damage = w.damage[:0]
	w.integrity = w.integrity[:0]
	w.moles = w.moles[:0]
	w.worst = components.StatusInactive
	w.zaps, w.bolts, w.anomalies, w.announcements = 0, 0, 0, 0
	w.delaminated = false
}

// Collector accumulates samples within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  time.Duration

	// Current window tracking
	windowStartTick int32

	reactors map[uint32]*reactorWindow
}

// NewCollector creates a new stats collector.
// windowTicks: how many ticks each stats window spans
// dt: simulation time per tick
func NewCollector(windowTicks int, dt time.Duration) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: int32(windowTicks),
		dt:                  dt,
		reactors:            make(map[uint32]*reactorWindow),
	}
}

func (c *Collector) window(reactor uint32) *reactorWindow {
	w, ok := c.reactors[reactor]
	if !ok {
		w = &reactorWindow{}
		c.reactors[reactor] = w
	}
	return w
}

// RecordSample records one reactor's state for the current tick.
func (c *Collector) RecordSample(s Sample) {
	w := c.window(s.Reactor)
	w.power = append(w.power, s.Power)
	w.temperature = append(w.temperature, s.Temperature)
	w.damage = append(w.damage, s.Damage)
	w.integrity = append(w.integrity, s.Integrity)
	w.moles = append(w.moles, s.Moles)
	w.worst = max(w.worst, s.Status)
}

// RecordEffect counts an effect against its reactor's window.
func (c *Collector) RecordEffect(fx systems.Effect) {
	switch fx.Kind {
	case systems.EffectZap:
		w := c.window(fx.Entity.ID())
		w.zaps++
		w.bolts += fx.Count
	case systems.EffectAnomaly:
		c.window(fx.Entity.ID()).anomalies++
	case systems.EffectAnnouncement:
		c.window(fx.Entity.ID()).announcements++
	case systems.EffectDelamComplete:
		w := c.window(fx.Entity.ID())
		w.delaminated = true
		w.worst = components.StatusDelaminating
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces one WindowStats per reactor seen in the window, ordered by
// reactor id, and resets counters for the next window. Reactors that
// produced nothing this window are dropped.
func (c *Collector) Flush(currentTick int32) []WindowStats {
	ids := make([]uint32, 0, len(c.reactors))
	for id := range c.reactors {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	simTime := (time.Duration(currentTick) * c.dt).Seconds()
	out := make([]WindowStats, 0, len(ids))
	for _, id := range ids {
		w := c.reactors[id]
		if len(w.power) == 0 && w.zaps == 0 && w.anomalies == 0 && w.announcements == 0 && !w.delaminated {
			delete(c.reactors, id)
			continue
		}

		power := Summarize(w.power)
		temperature := Summarize(w.temperature)
		damage := Summarize(w.damage)
		integrity := Summarize(w.integrity)
		moles := Summarize(w.moles)

		out = append(out, WindowStats{
			WindowStartTick: c.windowStartTick,
			WindowEndTick:   currentTick,
			SimTimeSec:      simTime,
			Reactor:         id,
			Samples:         len(w.power),
			PowerMean:       power.Mean,
			PowerMax:        power.Max,
			PowerStd:        power.Std,
			TemperatureMean: temperature.Mean,
			TemperatureMax:  temperature.Max,
			DamageMean:      damage.Mean,
			DamageMax:       damage.Max,
			DamageP90:       damage.P90,
			IntegrityMin:    integrity.Min,
			MolesMean:       moles.Mean,
			Status:          w.worst.String(),
			Zaps:            w.zaps,
			Bolts:           w.bolts,
			Anomalies:       w.anomalies,
			Announcements:   w.announcements,
			Delaminated:     w.delaminated,
		})
		w.reset()
	}

	c.windowStartTick = currentTick
	return out
}
