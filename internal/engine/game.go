package engine

import (
	"log/slog"
	"time"

	"github.com/talgya/chaosmode/internal/achievements"
	"github.com/talgya/chaosmode/internal/effects"
	"github.com/talgya/chaosmode/internal/events"
	"github.com/talgya/chaosmode/internal/game"
	"github.com/talgya/chaosmode/internal/persistence"
)

// Scheduler runs delayed work on the engine goroutine.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
	CancelTimers()
}

// Saver persists the state.
type Saver interface {
	Save(st *game.State) error
	Reset() *game.State
}

// Game ties the rules, evaluator, orchestrator and store together. Each
// exported mutation is one logical transaction: mutate, evaluate
// achievements, emit, request a save. Not safe for concurrent use; run
// it on the engine goroutine.
type Game struct {
	prog    *Progression
	eval    *achievements.Evaluator
	orch    *effects.Orchestrator
	store   Saver
	sched   Scheduler
	bus     *events.Bus
	journal *persistence.Journal
	now     func() time.Time

	state     *game.State
	ascension *effects.Ascension
	visible   bool
	dirty     bool
}

// Deps are the collaborators of a Game.
type Deps struct {
	Progression *Progression
	Evaluator   *achievements.Evaluator
	Store       Saver
	Scheduler   Scheduler
	Bus         *events.Bus
	Journal     *persistence.Journal // optional
	Now         func() time.Time     // optional, defaults to time.Now
}

// NewGame wraps an already loaded state. Call AttachOrchestrator and
// then Resume before the first trigger.
func NewGame(st *game.State, d Deps) *Game {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Game{
		prog:      d.Progression,
		eval:      d.Evaluator,
		store:     d.Store,
		sched:     d.Scheduler,
		bus:       d.Bus,
		journal:   d.Journal,
		now:       now,
		state:     st,
		ascension: effects.NewAscension(st),
		visible:   true,
	}
}

// AttachOrchestrator sets the effect orchestrator. It reads state via Game.State.
func (g *Game) AttachOrchestrator(o *effects.Orchestrator) {
	g.orch = o
}

// State returns the live state. Callers must not retain it across triggers.
func (g *Game) State() *game.State {
	return g.state
}

// Phase returns the ascension phase.
func (g *Game) Phase() effects.Phase {
	return g.ascension.Phase()
}

// Suspended reports whether the ascension cutscene is playing.
func (g *Game) Suspended() bool {
	return g.ascension.Suspended()
}

// Visible reports the presentation visibility flag.
func (g *Game) Visible() bool {
	return g.visible
}

// Resume publishes the continuous effect set, grants anything the loaded
// state already earned, and restarts an ascension interrupted by a restart.
func (g *Game) Resume() {
	if g.orch != nil {
		g.orch.Sync(true)
	}
	g.commit(false)
}

// Click registers one manual click.
func (g *Game) Click() error {
	if g.Suspended() {
		return effects.ErrSuspended
	}
	levels := g.prog.RegisterClick(g.state)
	g.dirty = true
	g.commit(len(levels) > 0)
	return nil
}

// Buy purchases one unit of id.
func (g *Game) Buy(id game.ItemID) (Purchase, error) {
	if g.Suspended() {
		return Purchase{}, effects.ErrSuspended
	}
	p, err := g.prog.Buy(g.state, id)
	if err != nil {
		return Purchase{}, err
	}
	g.commit(true)
	return p, nil
}

// PassiveTick pays minion income. It runs during the cutscene too.
func (g *Game) PassiveTick() {
	amount, levels := g.prog.PassiveTick(g.state)
	if amount == 0 {
		return
	}
	g.dirty = true
	g.commit(len(levels) > 0)
}

// AmbientTick runs the periodic effect pass.
func (g *Game) AmbientTick(tick uint64) {
	if g.orch != nil && !g.Suspended() {
		g.orch.Ambient(tick)
	}
}

// SetFlag switches a boolean setting, honoring tier locks.
func (g *Game) SetFlag(name game.SettingName, on bool) error {
	if err := effects.CanEnable(name, on, g.state.Level); err != nil {
		return err
	}
	if err := g.state.Settings.SetFlag(name, on); err != nil {
		return err
	}
	g.settingsChanged()
	return nil
}

// SetIntensity moves the chaos slider.
func (g *Game) SetIntensity(v int) error {
	if err := g.state.Settings.SetIntensity(v); err != nil {
		return err
	}
	g.settingsChanged()
	return nil
}

func (g *Game) settingsChanged() {
	if g.orch != nil {
		g.orch.Sync(false)
	}
	g.commit(true)
}

// SetMenuPosition records where the overlay was dragged.
func (g *Game) SetMenuPosition(x, y float64) {
	g.state.MenuPosition = game.MenuPosition{X: &x, Y: &y}
	g.dirty = true
}

// ToggleVisibility flips the overlay visibility. Ignored mid-cutscene.
func (g *Game) ToggleVisibility() (bool, error) {
	if g.Suspended() {
		return g.visible, effects.ErrSuspended
	}
	g.visible = !g.visible
	e := events.New(events.VisibilityToggled)
	v := g.visible
	e.Visible = &v
	g.bus.Emit(e)
	return g.visible, nil
}

// Reset discards all progress and the event journal. Pending timers are cancelled first so
// nothing mutates the discarded state.
func (g *Game) Reset() {
	g.sched.CancelTimers()
	g.state = g.store.Reset()
	if g.journal != nil {
		_ = g.journal.Clear()
	}
	g.ascension.Reset()
	g.dirty = false
	g.visible = true
	slog.Info("game reset")
	g.bus.Emit(events.New(events.StateReset))
	g.flushJournal()
}

// Autosave flushes coalesced click and tick mutations.
func (g *Game) Autosave() {
	if g.dirty {
		g.save()
	}
	g.flushJournal()
}

// Save writes the state now. Errors are reported by the store.
func (g *Game) Save() error {
	err := g.store.Save(g.state)
	if err == nil {
		g.dirty = false
	}
	g.flushJournal()
	return err
}

func (g *Game) save() {
	if err := g.store.Save(g.state); err == nil {
		g.dirty = false
	}
}

func (g *Game) flushJournal() {
	if g.journal != nil {
		_ = g.journal.Flush()
	}
}

// commit finishes a transaction: evaluate achievements, start the
// ascension if the milestone was reached, and save when something
// notable changed.
func (g *Game) commit(notable bool) {
	if len(g.eval.Evaluate(g.state, g.now())) > 0 {
		notable = true
	}

	params := g.prog.Params()
	if g.ascension.Begin(g.state, params.OmegaLevel) {
		slog.Info("ascension started", "level", g.state.Level)
		e := events.New(events.AscensionStarted)
		e.DurationMS = params.CutsceneDuration.Milliseconds()
		g.bus.Emit(e)
		g.sched.After(params.CutsceneDuration, g.completeAscension)
	}

	if notable {
		g.save()
	}
}

// completeAscension ends the cutscene: omegaMode is set, achievements are
// evaluated, the state is persisted once and then omegaEntered is emitted.
func (g *Game) completeAscension() {
	if !g.ascension.Complete(g.state) {
		return
	}
	slog.Info("omega mode entered", "level", g.state.Level)
	g.commit(true)
	g.bus.Emit(events.New(events.OmegaEntered))
}
