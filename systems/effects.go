package systems

import (
	"time"

	"github.com/mlange-42/ark/ecs"
)

// EffectKind classifies a side effect emitted by a system.
type EffectKind uint8

const (
	EffectAnnouncement  EffectKind = iota // Radio message
	EffectSound                           // One-shot sound cue
	EffectAlarm                           // Status alarm changed (empty Sound stops it)
	EffectLoop                            // Ambient loop changed
	EffectZap                             // Lightning bolts fired
	EffectAnomaly                         // Anomaly spawned
	EffectDelamination                    // Latch tripped
	EffectDelamComplete                   // Crystal destroyed, remnant spawned
	EffectSliver                          // Sliver extracted
	EffectConsume                         // Matter consumed
	EffectMonument                        // Monument stage or purchase
)

// String returns the name used in logs and telemetry.
func (k EffectKind) String() string {
	switch k {
	case EffectAnnouncement:
		return "announcement"
	case EffectSound:
		return "sound"
	case EffectAlarm:
		return "alarm"
	case EffectLoop:
		return "loop"
	case EffectZap:
		return "zap"
	case EffectAnomaly:
		return "anomaly"
	case EffectDelamination:
		return "delamination"
	case EffectDelamComplete:
		return "delam_complete"
	case EffectSliver:
		return "sliver"
	case EffectConsume:
		return "consume"
	case EffectMonument:
		return "monument"
	default:
		return "unknown"
	}
}

// Effect is something observers (logs, audio, telemetry, monitor) react to.
// Systems never read effects back; they are output only.
type Effect struct {
	Kind      EffectKind
	Entity    ecs.Entity
	Time      time.Duration
	Channel   string // Announcement radio channel
	Global    bool   // Announcement went to the station-wide channel
	Key       string // Locale key of Message
	Message   string
	Sound     string
	Prototype string
	Count     int
	X, Y      float32
}
