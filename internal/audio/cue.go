// Package audio turns chaos events into short synthesized cues.
package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"

	"github.com/talgya/chaosmode/internal/events"
)

// Note is one tone of a cue. Freq 0 is a rest.
type Note struct {
	Freq float64
	Dur  time.Duration
}

// Cue is a sequence of notes played back to back.
type Cue []Note

// Pitches used by the cues (equal temperament, A4 = 440Hz).
const (
	C4 = 261.63
	E4 = 329.63
	G4 = 392.00
	A4 = 440.00
	C5 = 523.25
	E5 = 659.25
	G5 = 783.99
	C6 = 1046.50
)

var cues = map[events.Type]Cue{
	events.ClickRegistered:     {{A4 * 2, 30 * time.Millisecond}},
	events.LevelUp:             {{C5, 80 * time.Millisecond}, {E5, 80 * time.Millisecond}, {G5, 160 * time.Millisecond}},
	events.PurchaseMade:        {{G4, 60 * time.Millisecond}, {C5, 120 * time.Millisecond}},
	events.PurchaseRejected:    {{110, 150 * time.Millisecond}},
	events.AchievementUnlocked: {{C5, 100 * time.Millisecond}, {0, 30 * time.Millisecond}, {C5, 80 * time.Millisecond}, {G5, 240 * time.Millisecond}},
	events.AscensionStarted:    {{C4, 400 * time.Millisecond}, {E4, 400 * time.Millisecond}, {G4, 400 * time.Millisecond}, {C5, 800 * time.Millisecond}},
	events.OmegaEntered:        {{C5, 150 * time.Millisecond}, {E5, 150 * time.Millisecond}, {G5, 150 * time.Millisecond}, {C6, 600 * time.Millisecond}},
	events.StateReset:          {{G4, 120 * time.Millisecond}, {E4, 120 * time.Millisecond}, {C4, 300 * time.Millisecond}},
}

// CueFor returns the cue for e, or nil when e is silent.
func CueFor(e events.Event) Cue {
	if e.Type == events.Notification && e.Notice != nil && e.Notice.Kind == events.NoticeError {
		return Cue{{110, 100 * time.Millisecond}, {0, 40 * time.Millisecond}, {110, 100 * time.Millisecond}}
	}
	if e.Type == events.EffectRequested && e.Effect != nil && e.Effect.Kind == events.EffectPageShake {
		return Cue{{55, 250 * time.Millisecond}}
	}
	return cues[e.Type]
}

// Duration is the total length of c.
func (c Cue) Duration() time.Duration {
	var d time.Duration
	for _, n := range c {
		d += n.Dur
	}
	return d
}

// Streamer renders c at sr with the given linear volume (1 = unity).
func (c Cue) Streamer(sr beep.SampleRate, volume float64) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(c))
	for _, n := range c {
		samples := sr.N(n.Dur)
		if n.Freq == 0 {
			parts = append(parts, beep.Silence(samples))
			continue
		}
		tone, err := generators.SineTone(sr, n.Freq)
		if err != nil {
			return nil, fmt.Errorf("tone %.1fHz: %w", n.Freq, err)
		}
		parts = append(parts, beep.Take(samples, tone))
	}
	return withVolume(beep.Seq(parts...), volume), nil
}

// withVolume scales s linearly; zero or less silences it.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
