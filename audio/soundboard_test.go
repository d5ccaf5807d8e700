package audio

import (
	"log/slog"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/systems"
)

func init() {
	config.MustInit("")
}

func TestOscillatorEnds(t *testing.T) {
	rate := beep.SampleRate(1000)
	osc := NewOscillator(100, 50*time.Millisecond, WaveSquare, rate)

	samples := make([][2]float64, 40)
	n, ok := osc.Stream(samples)
	if n != 40 || !ok {
		t.Fatalf("first read = %d, %v", n, ok)
	}
	for i := 0; i < n; i++ {
		if v := samples[i][0]; v != 1 && v != -1 {
			t.Fatalf("square sample %d = %v", i, v)
		}
	}

	n, ok = osc.Stream(samples)
	if n != 10 || !ok {
		t.Errorf("second read = %d, %v, want 10 samples", n, ok)
	}
	n, ok = osc.Stream(samples)
	if n != 0 || ok {
		t.Errorf("drained read = %d, %v", n, ok)
	}
}

func TestEnvelopeShape(t *testing.T) {
	rate := beep.SampleRate(1000)
	osc := NewOscillator(0, 100*time.Millisecond, WaveSquare, rate) // Constant 1
	env := NewEnvelope(osc, 100*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, rate)

	samples := make([][2]float64, 100)
	n, _ := env.Stream(samples)
	if n != 100 {
		t.Fatalf("streamed %d", n)
	}
	if samples[0][0] != 0 {
		t.Errorf("attack starts at %v", samples[0][0])
	}
	if samples[50][0] != 1 {
		t.Errorf("sustain = %v", samples[50][0])
	}
	if samples[99][0] >= samples[90][0] {
		t.Errorf("release not decreasing: %v then %v", samples[90][0], samples[99][0])
	}
}

func TestDefaultCues(t *testing.T) {
	cfg := config.Cfg()
	cues := DefaultCues(cfg.Sounds)

	for _, name := range []string{cfg.Sounds.CalmLoop, cfg.Sounds.DelamLoop, cfg.Sounds.StatusWarning, cfg.Sounds.StatusDelam} {
		cue, ok := cues[name]
		if !ok {
			t.Errorf("missing cue %q", name)
			continue
		}
		if !cue.Endless() {
			t.Errorf("cue %q should loop", name)
		}
	}
	for _, name := range []string{cfg.Sounds.Dust, cfg.Sounds.Distort, cfg.Sounds.CalmAccent, ZapCue} {
		cue, ok := cues[name]
		if !ok {
			t.Errorf("missing cue %q", name)
			continue
		}
		if cue.Endless() {
			t.Errorf("cue %q should be one-shot", name)
		}
	}
}

func TestCueStreamer(t *testing.T) {
	rate := beep.SampleRate(1000)
	cue := Cue{Freqs: []float64{100, 200}, Wave: WaveSine, Note: 20 * time.Millisecond, Gain: 0.5}
	s := cue.Streamer(rate)

	total := 0
	buf := make([][2]float64, 8)
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	if total != 40 {
		t.Errorf("two 20ms notes streamed %d samples, want 40", total)
	}
}

func TestSoundBoardTracksWithoutSpeaker(t *testing.T) {
	cfg := config.Cfg()
	sb := NewSoundBoard(cfg, slog.New(slog.DiscardHandler))

	sb.Handle(systems.Effect{Kind: systems.EffectLoop, Sound: cfg.Sounds.DelamLoop})
	sb.Handle(systems.Effect{Kind: systems.EffectAlarm, Sound: cfg.Sounds.StatusDanger})
	sb.Handle(systems.Effect{Kind: systems.EffectSound, Sound: cfg.Sounds.CalmAccent})
	sb.Handle(systems.Effect{Kind: systems.EffectZap, Count: 3})
	sb.Handle(systems.Effect{Kind: systems.EffectSound, Sound: "no-such-sound"})

	if sb.Loop() != cfg.Sounds.DelamLoop {
		t.Errorf("loop = %q", sb.Loop())
	}
	if sb.Alarm() != cfg.Sounds.StatusDanger {
		t.Errorf("alarm = %q", sb.Alarm())
	}
	if sb.Played() != 2 {
		t.Errorf("played = %d, want 2", sb.Played())
	}

	sb.Handle(systems.Effect{Kind: systems.EffectAlarm, Sound: ""})
	if sb.Alarm() != "" {
		t.Errorf("alarm not cleared: %q", sb.Alarm())
	}
	sb.Close()
}
