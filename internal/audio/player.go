package audio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/talgya/chaosmode/internal/events"
)

// SampleRate is the output rate of every cue.
const SampleRate = beep.SampleRate(44100)

// clickGap throttles click cues so autoclicking does not turn into noise.
const clickGap = 60 * time.Millisecond

// Player mixes cues into the speaker. Until Init succeeds cues are mixed
// but never reach a device.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
	lastClick   time.Time
	now         func() time.Time
}

// NewPlayer creates a player at the given linear volume.
func NewPlayer(volume float64) *Player {
	return &Player{mixer: &beep.Mixer{}, volume: volume, now: time.Now}
}

// Init opens the audio device.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Close silences everything and releases the device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}

// Play queues c. Empty cues are ignored.
func (p *Player) Play(c Cue) error {
	if len(c) == 0 {
		return nil
	}
	s, err := c.Streamer(SampleRate, p.volume)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	p.mixer.Add(s)
	return nil
}

// Pending returns how many cues are still mixing.
func (p *Player) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return p.mixer.Len()
}

// Run plays a cue for every event on stream until it closes or ctx ends.
func (p *Player) Run(ctx context.Context, stream <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-stream:
			if !ok {
				return
			}
			p.handle(e)
		}
	}
}

func (p *Player) handle(e events.Event) {
	if e.Type == events.ClickRegistered {
		now := p.now()
		if now.Sub(p.lastClick) < clickGap {
			return
		}
		p.lastClick = now
	}
	if err := p.Play(CueFor(e)); err != nil {
		slog.Warn("audio cue failed", "event", e.Type, "error", err)
	}
}
