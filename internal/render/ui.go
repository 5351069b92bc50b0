package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/talgya/chaosmode/internal/effects"
	"github.com/talgya/chaosmode/internal/engine"
	"github.com/talgya/chaosmode/internal/events"
)

// Runner executes fn on the engine goroutine and waits for it.
type Runner interface {
	Do(fn func()) error
}

// UI is the terminal front end: it turns input into engine commands and
// redraws a fresh snapshot every frame.
type UI struct {
	Screen    tcell.Screen
	Eng       Runner
	Game      *engine.Game
	Bus       *events.Bus
	Renderer  *Renderer
	FrameRate time.Duration

	resetArmed bool
}

// Run blocks until the player quits, the screen closes or ctx ends.
// The caller owns Screen.Init and Screen.Fini.
func (u *UI) Run(ctx context.Context) error {
	if u.FrameRate <= 0 {
		u.FrameRate = 100 * time.Millisecond
	}
	u.Screen.EnableMouse(tcell.MouseMotionEvents)
	u.Screen.HideCursor()

	input := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := u.Screen.PollEvent()
			if ev == nil {
				close(input)
				return
			}
			input <- ev
		}
	}()

	id, stream := u.Bus.Stream(256)
	defer u.Bus.Unstream(id)

	ticker := time.NewTicker(u.FrameRate)
	defer ticker.Stop()

	u.Renderer.Intro()
	if err := u.redraw(); err != nil {
		return quietStop(err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-input:
			if !ok {
				return nil
			}
			quit, err := u.handle(ActionFor(ev, u.Renderer.OnButton))
			if err != nil || quit {
				return quietStop(err)
			}
		case e, ok := <-stream:
			if !ok {
				return nil
			}
			u.Renderer.Apply(e)
		case <-ticker.C:
			if err := u.redraw(); err != nil {
				return quietStop(err)
			}
		}
	}
}

func (u *UI) redraw() error {
	var snap engine.Snapshot
	if err := u.Eng.Do(func() { snap = u.Game.Snapshot() }); err != nil {
		return err
	}
	u.Renderer.Draw(snap)
	return nil
}

// quietStop treats a stopped engine as a normal exit.
func quietStop(err error) error {
	if errors.Is(err, engine.ErrStopped) {
		return nil
	}
	return err
}

// handle applies one action. It returns true when the UI should exit.
func (u *UI) handle(a Action) (bool, error) {
	if a.Kind != ActReset && a.Kind != ActTrack {
		u.resetArmed = false
	}
	if a.Kind != ActTrack && a.Kind != ActNone {
		u.Renderer.SkipIntro()
	}

	var err error
	switch a.Kind {
	case ActQuit:
		return true, nil
	case ActRedraw:
		u.Screen.Sync()
		return false, u.redraw()
	case ActTrack:
		u.Renderer.Track(a.X, a.Y)
		return false, nil
	case ActClick:
		err = u.do(func() error { return u.Game.Click() })
	case ActBuy:
		err = u.do(func() error {
			_, err := u.Game.Buy(a.Item)
			return err
		})
	case ActToggle:
		err = u.do(func() error {
			on, err := u.Game.State().Settings.Flag(a.Setting)
			if err != nil {
				return err
			}
			return u.Game.SetFlag(a.Setting, !on)
		})
	case ActIntensity:
		err = u.do(func() error {
			v := u.Game.State().Settings.ChaosIntensity + a.Delta
			return u.Game.SetIntensity(min(max(v, 0), 100))
		})
	case ActVisibility:
		err = u.do(func() error {
			_, err := u.Game.ToggleVisibility()
			return err
		})
	case ActMove:
		x, y := float64(u.Renderer.originX+a.X), float64(u.Renderer.originY+a.Y)
		err = u.do(func() error {
			u.Game.SetMenuPosition(x, y)
			return nil
		})
	case ActReset:
		if !u.resetArmed {
			u.resetArmed = true
			u.toast(events.NoticeError, "⚠️", "Reset?", "Press R again to wipe all progress.")
			return false, nil
		}
		u.resetArmed = false
		err = u.do(func() error {
			u.Game.Reset()
			return nil
		})
	}

	switch {
	case err == nil:
	case errors.Is(err, engine.ErrStopped):
		return true, nil
	case errors.Is(err, effects.ErrSuspended):
		// Input is ignored mid-cutscene.
	case errors.Is(err, effects.ErrEffectLocked):
		u.toast(events.NoticeError, "🔒", "Locked", fmt.Sprintf("%s needs tier %d.", a.Setting, effects.TierOf(a.Setting)))
	case errors.Is(err, engine.ErrInsufficientFunds):
		// The engine already emitted a rejection notice.
	default:
		slog.Warn("ui action failed", "action", a.Kind, "error", err)
	}
	return false, u.redraw()
}

// do runs fn on the engine goroutine and returns fn's error.
func (u *UI) do(fn func() error) error {
	var err error
	if runErr := u.Eng.Do(func() { err = fn() }); runErr != nil {
		return runErr
	}
	return err
}

func (u *UI) toast(kind, icon, title, message string) {
	e := events.New(events.Notification)
	e.Notice = &events.Notice{Kind: kind, Icon: icon, Title: title, Message: message}
	u.Renderer.Apply(e)
}
