package render

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/chaosmode/internal/app"
	"github.com/talgya/chaosmode/internal/config"
	"github.com/talgya/chaosmode/internal/engine"
	"github.com/talgya/chaosmode/internal/entropy"
	"github.com/talgya/chaosmode/internal/events"
	"github.com/talgya/chaosmode/internal/game"
	"github.com/talgya/chaosmode/internal/tuning"
)

func newSimScreen(t *testing.T) tcell.Screen {
	t.Helper()
	ss := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, ss.Init())
	ss.SetSize(80, 24)
	t.Cleanup(ss.Fini)
	return ss
}

// inline runs engine work on the calling goroutine.
type inline struct{}

func (inline) Do(fn func()) error { fn(); return nil }

func newApp(t *testing.T) *app.App {
	t.Helper()
	a, err := app.New(config.Config{Memory: true, Tuning: tuning.Default(), Seed: 3})
	require.NoError(t, err)
	return a
}

// rowText reads one screen row, skipping the trailing cell of wide glyphs.
func rowText(scr tcell.Screen, y int) string {
	w, _ := scr.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, width := scr.GetContent(x, y)
		b.WriteRune(r)
		if width == 2 {
			x++
		}
	}
	return b.String()
}

func screenText(scr tcell.Screen) string {
	_, h := scr.Size()
	rows := make([]string, h)
	for y := range h {
		rows[y] = rowText(scr, y)
	}
	return strings.Join(rows, "\n")
}

func TestDrawPanel(t *testing.T) {
	scr := newSimScreen(t)
	a := newApp(t)
	r := New(scr, entropy.Fixed(0.5))

	r.Draw(a.Game.Snapshot())

	assert.Contains(t, rowText(scr, 1), "CHAOS MODE")
	assert.Contains(t, rowText(scr, 2), "Clicks: 0")
	assert.Contains(t, rowText(scr, 1+buttonRow), "CLICK ME")
	assert.Contains(t, screenText(scr), "Chaos Minion")
	assert.Contains(t, screenText(scr), "Achievements 0/15")
	assert.Equal(t, uint64(1), r.Frame())
}

func TestDrawFlipped(t *testing.T) {
	scr := newSimScreen(t)
	a := newApp(t)
	r := New(scr, entropy.Fixed(0.5))

	snap := a.Game.Snapshot()
	snap.State.Settings.FlipPage = true
	r.Draw(snap)

	_, h := scr.Size()
	assert.NotContains(t, rowText(scr, 1), "CHAOS MODE")
	assert.Contains(t, rowText(scr, h-2), "EDOM SOAHC")
}

func TestDrawHidden(t *testing.T) {
	scr := newSimScreen(t)
	a := newApp(t)
	r := New(scr, entropy.Fixed(0.5))

	snap := a.Game.Snapshot()
	snap.Visible = false
	r.Draw(snap)

	text := screenText(scr)
	assert.NotContains(t, text, "CHAOS MODE")
	assert.Contains(t, text, "chaos mode hidden")
}

func TestDrawCutscene(t *testing.T) {
	scr := newSimScreen(t)
	a := newApp(t)
	r := New(scr, entropy.Fixed(0.5))

	e := events.New(events.AscensionStarted)
	e.DurationMS = 200
	r.Apply(e)

	r.Draw(a.Game.Snapshot())
	assert.Contains(t, screenText(scr), "ASCENDING")
	r.Draw(a.Game.Snapshot())
	r.Draw(a.Game.Snapshot())
	assert.NotContains(t, screenText(scr), "ASCENDING")
	assert.Contains(t, screenText(scr), "CHAOS MODE")
}

func TestDrawIntro(t *testing.T) {
	scr := newSimScreen(t)
	a := newApp(t)
	r := New(scr, entropy.Fixed(0.5))

	r.Intro()
	r.Draw(a.Game.Snapshot())
	assert.Contains(t, screenText(scr), "WELCOME TO CHAOS MODE")
	assert.NotContains(t, screenText(scr), "CLICK ME")

	for range introFrames {
		r.Draw(a.Game.Snapshot())
	}
	assert.NotContains(t, screenText(scr), "WELCOME TO CHAOS MODE")
	assert.Contains(t, screenText(scr), "CLICK ME")
}

func TestUIKeySkipsIntro(t *testing.T) {
	u, _ := newUI(t)
	u.Renderer.Intro()
	require.NoError(t, u.redraw())
	require.Contains(t, screenText(u.Screen), "WELCOME TO CHAOS MODE")

	_, err := u.handle(Action{Kind: ActTrack, X: 3, Y: 3})
	require.NoError(t, err)
	require.NoError(t, u.redraw())
	assert.Contains(t, screenText(u.Screen), "WELCOME TO CHAOS MODE")

	_, err = u.handle(Action{Kind: ActClick})
	require.NoError(t, err)
	assert.NotContains(t, screenText(u.Screen), "WELCOME TO CHAOS MODE")
	assert.Contains(t, screenText(u.Screen), "CHAOS MODE")
}

func TestToastsExpire(t *testing.T) {
	scr := newSimScreen(t)
	a := newApp(t)
	r := New(scr, entropy.Fixed(0.5))

	for i := range maxToasts + 2 {
		e := events.New(events.Notification)
		e.Notice = &events.Notice{Title: "Level Up!", Message: strings.Repeat("!", i), Kind: events.NoticeLevelUp}
		r.Apply(e)
	}
	require.Len(t, r.toasts, maxToasts)

	r.Draw(a.Game.Snapshot())
	_, h := scr.Size()
	assert.Contains(t, rowText(scr, h-1), "Level Up!")

	for range toastFrames {
		r.Draw(a.Game.Snapshot())
	}
	assert.Empty(t, r.toasts)
}

func TestParticles(t *testing.T) {
	scr := newSimScreen(t)
	a := newApp(t)
	r := New(scr, entropy.Fixed(0.5))
	r.Draw(a.Game.Snapshot())

	e := events.New(events.EffectRequested)
	e.Effect = &events.EffectRequest{Kind: events.EffectParticleBurst, Count: 7}
	r.Apply(e)
	assert.Len(t, r.particles, 7)

	e.Effect = &events.EffectRequest{Kind: events.EffectPageShake, Count: 3}
	r.Apply(e)
	assert.Equal(t, 3, r.shake)

	for range burstLife {
		r.Draw(a.Game.Snapshot())
	}
	assert.Empty(t, r.particles)
	assert.Zero(t, r.shake)
}

func TestReplaceImages(t *testing.T) {
	assert.Equal(t, "👾", iconFor("👾", game.Settings{}))
	assert.Equal(t, catIcon, iconFor("👾", game.Settings{ReplaceImages: true}))
}

func TestGraphemes(t *testing.T) {
	assert.Equal(t, []string{"a", "✖️", "b"}, graphemes("a✖️b"))
}

func TestPanelOriginClamps(t *testing.T) {
	far := 500.0
	neg := -4.0
	x, y := panelOrigin(game.MenuPosition{X: &far, Y: &neg}, 80, 24)
	assert.Equal(t, 80-panelWidth, x)
	assert.Equal(t, 0, y)

	x, y = panelOrigin(game.MenuPosition{}, 80, 24)
	assert.Equal(t, 1, x)
	assert.Equal(t, 1, y)
}

func TestActionFor(t *testing.T) {
	key := func(r rune) tcell.Event { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }
	hit := func(x, y int) bool { return x == 5 && y == 6 }

	tests := []struct {
		name string
		ev   tcell.Event
		want Action
	}{
		{"space clicks", key(' '), Action{Kind: ActClick}},
		{"enter clicks", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), Action{Kind: ActClick}},
		{"buy minion", key('1'), Action{Kind: ActBuy, Item: game.ItemMinion}},
		{"buy booster", key('3'), Action{Kind: ActBuy, Item: game.ItemChaosBooster}},
		{"toggle dark", key('d'), Action{Kind: ActToggle, Setting: game.SettingDarkMode}},
		{"toggle matrix", key('x'), Action{Kind: ActToggle, Setting: game.SettingMatrixRain}},
		{"more chaos", key('+'), Action{Kind: ActIntensity, Delta: intensityStep}},
		{"less chaos", key('-'), Action{Kind: ActIntensity, Delta: -intensityStep}},
		{"hide", key('v'), Action{Kind: ActVisibility}},
		{"reset", key('R'), Action{Kind: ActReset}},
		{"quit", key('q'), Action{Kind: ActQuit}},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), Action{Kind: ActQuit}},
		{"move", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), Action{Kind: ActMove, X: -2}},
		{"unbound", key('z'), Action{}},
		{"mouse on button", tcell.NewEventMouse(5, 6, tcell.Button1, tcell.ModNone), Action{Kind: ActClick}},
		{"mouse elsewhere", tcell.NewEventMouse(9, 9, tcell.Button1, tcell.ModNone), Action{Kind: ActTrack, X: 9, Y: 9}},
		{"mouse move", tcell.NewEventMouse(5, 6, tcell.ButtonNone, tcell.ModNone), Action{Kind: ActTrack, X: 5, Y: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActionFor(tt.ev, hit))
		})
	}
}

func newUI(t *testing.T) (*UI, *app.App) {
	t.Helper()
	scr := newSimScreen(t)
	a := newApp(t)
	return &UI{
		Screen:   scr,
		Eng:      inline{},
		Game:     a.Game,
		Bus:      a.Bus,
		Renderer: New(scr, entropy.Fixed(0.5)),
	}, a
}

func TestUIHandle(t *testing.T) {
	u, a := newUI(t)

	quit, err := u.handle(Action{Kind: ActClick})
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, 1.0, a.Game.State().Clicks)
	assert.True(t, u.Renderer.OnButton(2, 1+buttonRow))

	_, err = u.handle(Action{Kind: ActIntensity, Delta: intensityStep})
	require.NoError(t, err)
	assert.Equal(t, 60, a.Game.State().Settings.ChaosIntensity)

	_, err = u.handle(Action{Kind: ActToggle, Setting: game.SettingDarkMode})
	require.NoError(t, err)
	assert.False(t, a.Game.State().Settings.DarkMode)

	_, err = u.handle(Action{Kind: ActMove, X: 2})
	require.NoError(t, err)
	require.NotNil(t, a.Game.State().MenuPosition.X)
	assert.Equal(t, 3.0, *a.Game.State().MenuPosition.X)

	_, err = u.handle(Action{Kind: ActVisibility})
	require.NoError(t, err)
	assert.False(t, a.Game.Visible())

	quit, err = u.handle(Action{Kind: ActQuit})
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestUILockedToggleToasts(t *testing.T) {
	u, a := newUI(t)

	_, err := u.handle(Action{Kind: ActToggle, Setting: game.SettingFlipPage})
	require.NoError(t, err)
	assert.False(t, a.Game.State().Settings.FlipPage)
	require.NotEmpty(t, u.Renderer.toasts)
	assert.Equal(t, "Locked", u.Renderer.toasts[len(u.Renderer.toasts)-1].notice.Title)
}

func TestUIResetNeedsTwoPresses(t *testing.T) {
	u, a := newUI(t)

	_, err := u.handle(Action{Kind: ActClick})
	require.NoError(t, err)

	_, err = u.handle(Action{Kind: ActReset})
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.Game.State().Clicks)

	// Any other action disarms.
	_, err = u.handle(Action{Kind: ActIntensity, Delta: 0})
	require.NoError(t, err)
	_, err = u.handle(Action{Kind: ActReset})
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.Game.State().Clicks)

	_, err = u.handle(Action{Kind: ActReset})
	require.NoError(t, err)
	assert.Zero(t, a.Game.State().Clicks)
}

func TestUIRunQuits(t *testing.T) {
	u, _ := newUI(t)
	u.FrameRate = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- u.Run(ctx) }()

	require.NoError(t, u.Screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("ui did not quit")
	}
}

func TestUIRunStopsWithEngine(t *testing.T) {
	u, a := newUI(t)
	require.NoError(t, a.Start())
	u.Eng = a.Engine
	u.FrameRate = 10 * time.Millisecond
	require.NoError(t, a.Close())

	err := u.Run(context.Background())
	assert.NoError(t, err)
	assert.ErrorIs(t, a.Engine.Do(func() {}), engine.ErrStopped)
}
