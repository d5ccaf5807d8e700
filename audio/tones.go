// Package audio synthesises the crystal's sound cues with beep.
package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/pthm-cable/supermatter/config"
)

// Wave is an oscillator shape.
type Wave uint8

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates a raw wave. A zero duration never ends.
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     Wave
	rate     beep.SampleRate
}

// NewOscillator returns a streamer for one wave at freq Hz.
func NewOscillator(freq float64, duration time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.duration > 0 && o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			val = 1
			if o.phase >= 0.5 {
				val = -1
			}
		case WaveSaw:
			val = 2 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release to a finite stream.
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// NewEnvelope shapes s over duration.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}
		vol := 1.0
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		if remaining := e.totalSamples - e.position; remaining < e.releaseSamples {
			vol = min(vol, float64(remaining)/float64(e.releaseSamples))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// pulse gates an endless stream on and off, used for alarms and loops.
type pulse struct {
	streamer beep.Streamer
	on, off  int
	position int
}

func newPulse(s beep.Streamer, on, off time.Duration, rate beep.SampleRate) beep.Streamer {
	return &pulse{streamer: s, on: rate.N(on), off: rate.N(off)}
}

func (p *pulse) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = p.streamer.Stream(samples)
	period := p.on + p.off
	for i := 0; i < n; i++ {
		if period > 0 && p.position%period >= p.on {
			samples[i][0] = 0
			samples[i][1] = 0
		}
		p.position++
	}
	return n, ok
}

func (p *pulse) Err() error { return p.streamer.Err() }

// withVolume scales s linearly; zero or less is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Cue describes how a named sound is synthesised.
type Cue struct {
	Freqs    []float64 // Played in sequence; one entry is a single tone
	Wave     Wave
	Note     time.Duration // Length of each tone; zero loops forever
	Attack   time.Duration
	Release  time.Duration
	PulseOn  time.Duration // Gating for endless cues
	PulseOff time.Duration
	Gain     float64
}

// Endless reports whether the cue loops until stopped.
func (c Cue) Endless() bool {
	return c.Note == 0
}

// Streamer builds a fresh stream for the cue.
func (c Cue) Streamer(rate beep.SampleRate) beep.Streamer {
	var s beep.Streamer
	if c.Endless() {
		voices := make([]beep.Streamer, 0, len(c.Freqs))
		for _, f := range c.Freqs {
			voices = append(voices, NewOscillator(f, 0, c.Wave, rate))
		}
		s = beep.Mix(voices...)
		if c.PulseOn > 0 {
			s = newPulse(s, c.PulseOn, c.PulseOff, rate)
		}
	} else {
		notes := make([]beep.Streamer, 0, len(c.Freqs))
		for _, f := range c.Freqs {
			osc := NewOscillator(f, c.Note, c.Wave, rate)
			notes = append(notes, NewEnvelope(osc, c.Note, c.Attack, c.Release, rate))
		}
		s = beep.Seq(notes...)
	}
	return withVolume(s, c.Gain)
}

// ZapCue is played for each lightning discharge.
const ZapCue = "zap"

// DefaultCues maps the configured sound names to their synthesis.
func DefaultCues(sounds config.SoundConfig) map[string]Cue {
	cues := map[string]Cue{
		sounds.Dust:            {Freqs: []float64{0}, Wave: WaveNoise, Note: 400 * time.Millisecond, Attack: 5 * time.Millisecond, Release: 350 * time.Millisecond, Gain: 0.3},
		sounds.Distort:         {Freqs: []float64{180, 90}, Wave: WaveSaw, Note: 250 * time.Millisecond, Attack: 10 * time.Millisecond, Release: 150 * time.Millisecond, Gain: 0.25},
		sounds.CalmLoop:        {Freqs: []float64{55, 82.5}, Wave: WaveSine, Gain: 0.08},
		sounds.DelamLoop:       {Freqs: []float64{49, 51.5}, Wave: WaveSaw, Gain: 0.1},
		sounds.CalmAccent:      {Freqs: []float64{660}, Wave: WaveSine, Note: 300 * time.Millisecond, Attack: 5 * time.Millisecond, Release: 250 * time.Millisecond, Gain: 0.15},
		sounds.DelamAccent:     {Freqs: []float64{330, 311}, Wave: WaveSquare, Note: 200 * time.Millisecond, Attack: 5 * time.Millisecond, Release: 150 * time.Millisecond, Gain: 0.15},
		sounds.StatusWarning:   {Freqs: []float64{440}, Wave: WaveSine, PulseOn: 300 * time.Millisecond, PulseOff: 1700 * time.Millisecond, Gain: 0.15},
		sounds.StatusDanger:    {Freqs: []float64{523}, Wave: WaveSquare, PulseOn: 250 * time.Millisecond, PulseOff: 750 * time.Millisecond, Gain: 0.12},
		sounds.StatusEmergency: {Freqs: []float64{784}, Wave: WaveSquare, PulseOn: 200 * time.Millisecond, PulseOff: 300 * time.Millisecond, Gain: 0.12},
		sounds.StatusDelam:     {Freqs: []float64{880, 932}, Wave: WaveSaw, PulseOn: 150 * time.Millisecond, PulseOff: 150 * time.Millisecond, Gain: 0.12},
		ZapCue:                 {Freqs: []float64{0}, Wave: WaveNoise, Note: 120 * time.Millisecond, Attack: time.Millisecond, Release: 100 * time.Millisecond, Gain: 0.35},
	}
	delete(cues, "")
	return cues
}
