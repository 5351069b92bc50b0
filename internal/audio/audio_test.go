package audio

import (
	"context"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/chaosmode/internal/events"
)

// drain streams s to the end and returns the sample count and peak level.
func drain(t *testing.T, s beep.Streamer) (int, float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			peak = max(peak, smp[0], -smp[0])
		}
		total += n
		if !ok {
			return total, peak
		}
		require.Less(t, total, 10*int(SampleRate), "stream never ended")
	}
}

func TestCueStreamerLength(t *testing.T) {
	c := CueFor(events.New(events.LevelUp))
	require.Len(t, c, 3)
	assert.Equal(t, 320*time.Millisecond, c.Duration())

	s, err := c.Streamer(SampleRate, 1)
	require.NoError(t, err)
	n, peak := drain(t, s)

	want := 0
	for _, note := range c {
		want += SampleRate.N(note.Dur)
	}
	assert.Equal(t, want, n)
	assert.InDelta(t, 1.0, peak, 0.01)
}

func TestCueRestIsSilent(t *testing.T) {
	s, err := Cue{{0, 50 * time.Millisecond}}.Streamer(SampleRate, 1)
	require.NoError(t, err)
	n, peak := drain(t, s)
	assert.Equal(t, SampleRate.N(50*time.Millisecond), n)
	assert.Zero(t, peak)
}

func TestCueVolume(t *testing.T) {
	c := Cue{{A4, 20 * time.Millisecond}}

	s, err := c.Streamer(SampleRate, 0.25)
	require.NoError(t, err)
	_, peak := drain(t, s)
	assert.InDelta(t, 0.25, peak, 0.01)

	s, err = c.Streamer(SampleRate, 0)
	require.NoError(t, err)
	_, peak = drain(t, s)
	assert.Zero(t, peak)
}

func TestCueRejectsUnplayableTone(t *testing.T) {
	_, err := Cue{{float64(SampleRate), time.Millisecond}}.Streamer(SampleRate, 1)
	assert.Error(t, err)
}

func TestCueFor(t *testing.T) {
	assert.Nil(t, CueFor(events.New(events.EffectsChanged)))
	assert.NotNil(t, CueFor(events.New(events.OmegaEntered)))

	info := events.New(events.Notification)
	info.Notice = &events.Notice{Kind: events.NoticeInfo}
	assert.Nil(t, CueFor(info))

	failed := events.New(events.Notification)
	failed.Notice = &events.Notice{Kind: events.NoticeError}
	assert.NotNil(t, CueFor(failed))

	shake := events.New(events.EffectRequested)
	shake.Effect = &events.EffectRequest{Kind: events.EffectPageShake}
	assert.NotNil(t, CueFor(shake))
}

func TestPlayerRunThrottlesClicks(t *testing.T) {
	p := NewPlayer(0.5)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	stream := make(chan events.Event, 8)
	stream <- events.New(events.ClickRegistered)
	stream <- events.New(events.ClickRegistered) // Same instant: dropped
	stream <- events.New(events.EffectsChanged)  // Silent
	stream <- events.New(events.LevelUp)
	close(stream)

	p.Run(context.Background(), stream)
	assert.Equal(t, 2, p.Pending())

	// Mixing everything out empties the mixer.
	buf := make([][2]float64, SampleRate.N(time.Second))
	p.mixer.Stream(buf)
	assert.Zero(t, p.Pending())
}

func TestPlayerRunStopsOnCancel(t *testing.T) {
	p := NewPlayer(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		p.Run(ctx, make(chan events.Event))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("player did not stop")
	}
}
