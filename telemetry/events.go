// Package telemetry aggregates reactor samples into windows, detects
// alert-worthy moments and writes both to CSV.
package telemetry

import "github.com/pthm-cable/supermatter/systems"

// Event is one effect as recorded in events.csv.
type Event struct {
	Tick      int32   `csv:"tick"`
	SimTime   float64 `csv:"sim_time"`
	Reactor   uint32  `csv:"reactor"`
	Kind      string  `csv:"kind"`
	Channel   string  `csv:"channel"`
	Key       string  `csv:"key"`
	Message   string  `csv:"message"`
	Sound     string  `csv:"sound"`
	Prototype string  `csv:"prototype"`
	Count     int     `csv:"count"`
	X         float32 `csv:"x"`
	Y         float32 `csv:"y"`
}

// NewEvent converts a system effect into an event record.
func NewEvent(tick int32, fx systems.Effect) Event {
	return Event{
		Tick:      tick,
		SimTime:   fx.Time.Seconds(),
		Reactor:   fx.Entity.ID(),
		Kind:      fx.Kind.String(),
		Channel:   fx.Channel,
		Key:       fx.Key,
		Message:   fx.Message,
		Sound:     fx.Sound,
		Prototype: fx.Prototype,
		Count:     fx.Count,
		X:         fx.X,
		Y:         fx.Y,
	}
}
