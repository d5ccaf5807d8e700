package audio

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/systems"
)

// SoundBoard plays the crystal's cues: one ambient loop, one status alarm
// and any number of one-shots mixed together. Without an initialised
// speaker it only tracks what would be playing.
type SoundBoard struct {
	mu          sync.Mutex
	log         *slog.Logger
	rate        beep.SampleRate
	volume      float64
	cues        map[string]Cue
	mixer       *beep.Mixer
	loop        *beep.Ctrl
	alarm       *beep.Ctrl
	loopName    string
	alarmName   string
	played      int
	initialized bool
}

// NewSoundBoard creates a board for the configured sounds.
func NewSoundBoard(cfg *config.Config, logger *slog.Logger) *SoundBoard {
	if logger == nil {
		logger = slog.Default()
	}
	rate := cfg.Audio.SampleRate
	if rate <= 0 {
		rate = 44100
	}
	return &SoundBoard{
		log:    logger,
		rate:   beep.SampleRate(rate),
		volume: cfg.Audio.Volume,
		cues:   DefaultCues(cfg.Sounds),
		mixer:  &beep.Mixer{},
	}
}

// Initialize opens the speaker. On failure the board stays silent.
func (sb *SoundBoard) Initialize() error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.initialized {
		return nil
	}
	if err := speaker.Init(sb.rate, sb.rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(sb.mixer)
	sb.initialized = true
	return nil
}

// Close stops every sound.
func (sb *SoundBoard) Close() {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if !sb.initialized {
		return
	}
	speaker.Lock()
	sb.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sb.loop, sb.alarm = nil, nil
	sb.initialized = false
}

// Handle routes a system effect to the matching cue.
func (sb *SoundBoard) Handle(fx systems.Effect) {
	switch fx.Kind {
	case systems.EffectLoop:
		sb.SetLoop(fx.Sound)
	case systems.EffectAlarm:
		sb.SetAlarm(fx.Sound)
	case systems.EffectZap:
		sb.Play(ZapCue)
	default:
		if fx.Sound != "" {
			sb.Play(fx.Sound)
		}
	}
}

// Play starts a one-shot cue. Endless cues are ignored here.
func (sb *SoundBoard) Play(name string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	cue, ok := sb.cues[name]
	if !ok {
		sb.log.Debug("unknown sound cue", "sound", name)
		return
	}
	if cue.Endless() {
		return
	}
	sb.played++
	if !sb.initialized {
		return
	}
	sb.add(withVolume(cue.Streamer(sb.rate), sb.gain()))
}

// SetLoop switches the ambient loop. An empty name stops it.
func (sb *SoundBoard) SetLoop(name string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.loop = sb.swap(sb.loop, &sb.loopName, name)
}

// SetAlarm switches the status alarm. An empty name stops it.
func (sb *SoundBoard) SetAlarm(name string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.alarm = sb.swap(sb.alarm, &sb.alarmName, name)
}

// swap stops the current endless stream and starts name in its place.
func (sb *SoundBoard) swap(current *beep.Ctrl, currentName *string, name string) *beep.Ctrl {
	if name == *currentName && current != nil {
		return current
	}
	if current != nil {
		speaker.Lock()
		current.Streamer = nil // The mixer drops a Ctrl with no streamer
		speaker.Unlock()
	}
	*currentName = name
	cue, ok := sb.cues[name]
	if name == "" || !ok || !sb.initialized {
		return nil
	}
	ctrl := &beep.Ctrl{Streamer: withVolume(cue.Streamer(sb.rate), sb.gain())}
	sb.add(ctrl)
	return ctrl
}

func (sb *SoundBoard) add(s beep.Streamer) {
	speaker.Lock()
	sb.mixer.Add(s)
	speaker.Unlock()
}

// gain converts the configured base-2 volume offset to a linear factor.
func (sb *SoundBoard) gain() float64 {
	return math.Exp2(sb.volume)
}

// Loop returns the active ambient loop name.
func (sb *SoundBoard) Loop() string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.loopName
}

// Alarm returns the active status alarm name.
func (sb *SoundBoard) Alarm() string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.alarmName
}

// Played returns how many one-shot cues were triggered.
func (sb *SoundBoard) Played() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.played
}
