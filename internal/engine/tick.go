// Package engine runs the chaos game: the progression rules, the shop,
// and a single-goroutine scheduler that serializes every trigger.
package engine

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned by Do once the engine has stopped.
var ErrStopped = errors.New("engine stopped")

// Engine drives the game forward. Every state mutation runs on the
// goroutine inside Run: ticks, timers and work submitted with Do.
type Engine struct {
	Tick     uint64        // Income ticks since start (monotonic, never resets)
	Interval time.Duration // Income tick interval

	AmbientEvery  uint64 // OnAmbient runs every N ticks
	AutosaveEvery uint64 // OnAutosave runs every N ticks

	// Callbacks for each tick layer, populated during setup.
	OnTick     func(tick uint64) // Every tick: passive income
	OnAmbient  func(tick uint64) // Ambient chaos effects
	OnAutosave func(tick uint64) // Flush coalesced saves
	OnStop     func()            // Last call on the loop goroutine

	cmds     chan func()
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// Loop-goroutine only.
	timerGen uint64
	timers   map[*time.Timer]struct{}
}

// NewEngine creates an engine with a one second tick.
func NewEngine() *Engine {
	return &Engine{
		Interval:      time.Second,
		AmbientEvery:  5,
		AutosaveEvery: 30,
		cmds:          make(chan func()),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		timers:        make(map[*time.Timer]struct{}),
	}
}

// Run starts the loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	slog.Info("chaos engine started", "tick", e.Tick, "interval", e.Interval)
	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()
	defer close(e.done)

	for {
		select {
		case fn := <-e.cmds:
			fn()
		case <-ticker.C:
			e.step()
		case <-e.stop:
			e.CancelTimers()
			if e.OnStop != nil {
				e.OnStop()
			}
			slog.Info("chaos engine stopped", "tick", e.Tick)
			return
		}
	}
}

// Stop halts the loop. Safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
}

// Done is closed after Run returns.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Do runs fn on the loop goroutine and waits for it to finish.
// Must not be called from the loop goroutine itself.
func (e *Engine) Do(fn func()) error {
	finished := make(chan struct{})
	select {
	case e.cmds <- func() { defer close(finished); fn() }:
	case <-e.stop:
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-e.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// After schedules fn on the loop goroutine after d. The returned cancel
// is idempotent. CancelTimers invalidates every pending timer at once.
// Must be called from the loop goroutine.
func (e *Engine) After(d time.Duration, fn func()) (cancel func()) {
	gen := e.timerGen
	var t *time.Timer
	cancelled := false
	fire := func() {
		delete(e.timers, t)
		if cancelled || gen != e.timerGen {
			return
		}
		fn()
	}
	t = time.AfterFunc(d, func() {
		select {
		case e.cmds <- fire:
		case <-e.stop:
		}
	})
	e.timers[t] = struct{}{}
	return func() {
		cancelled = true
		t.Stop()
		delete(e.timers, t)
	}
}

// CancelTimers drops every pending After callback.
func (e *Engine) CancelTimers() {
	e.timerGen++
	for t := range e.timers {
		t.Stop()
		delete(e.timers, t)
	}
}

// step advances the engine by one tick.
func (e *Engine) step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}

	if e.AmbientEvery > 0 && e.Tick%e.AmbientEvery == 0 && e.OnAmbient != nil {
		e.OnAmbient(e.Tick)
	}

	if e.AutosaveEvery > 0 && e.Tick%e.AutosaveEvery == 0 && e.OnAutosave != nil {
		e.OnAutosave(e.Tick)
	}
}
