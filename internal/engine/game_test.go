package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/chaosmode/internal/achievements"
	"github.com/talgya/chaosmode/internal/effects"
	"github.com/talgya/chaosmode/internal/entropy"
	"github.com/talgya/chaosmode/internal/events"
	"github.com/talgya/chaosmode/internal/game"
	"github.com/talgya/chaosmode/internal/persistence"
	"github.com/talgya/chaosmode/internal/tuning"
)

// manualScheduler holds timers until the test fires them.
type manualScheduler struct {
	pending []func()
	delays  []time.Duration
}

func (m *manualScheduler) After(d time.Duration, fn func()) func() {
	i := len(m.pending)
	m.pending = append(m.pending, fn)
	m.delays = append(m.delays, d)
	return func() { m.pending[i] = nil }
}

func (m *manualScheduler) CancelTimers() {
	for i := range m.pending {
		m.pending[i] = nil
	}
}

func (m *manualScheduler) fireAll() {
	fns := m.pending
	m.pending = nil
	for _, fn := range fns {
		if fn != nil {
			fn()
		}
	}
}

// countingSaver counts successful saves.
type countingSaver struct {
	Saver
	saves int
}

func (c *countingSaver) Save(st *game.State) error {
	err := c.Saver.Save(st)
	if err == nil {
		c.saves++
	}
	return err
}

type fixture struct {
	game    *Game
	bus     *events.Bus
	backend *persistence.MemoryBackend
	store   *persistence.Store
	saver   *countingSaver
	sched   *manualScheduler
	seen    []events.Event
}

func newFixture(t *testing.T, params tuning.Params, st *game.State) *fixture {
	t.Helper()
	f := &fixture{
		bus:     events.NewBus(),
		backend: persistence.NewMemoryBackend(),
		sched:   &manualScheduler{},
	}
	clock := func() time.Time { return epoch }
	f.store = persistence.NewStore(f.backend, f.bus).WithClock(clock)
	f.saver = &countingSaver{Saver: f.store}
	if st == nil {
		st = f.store.Load()
	}
	registry := achievements.DefaultRegistry()
	f.game = NewGame(st, Deps{
		Progression: NewProgression(params, f.bus),
		Evaluator:   achievements.NewEvaluator(registry, f.bus),
		Store:       f.saver,
		Scheduler:   f.sched,
		Bus:         f.bus,
		Now:         clock,
	})
	f.game.AttachOrchestrator(effects.NewOrchestrator(params, f.bus, registry,
		entropy.Fixed(0.99), effects.NewWeather(1), f.game.State))
	f.bus.Subscribe(func(e events.Event) { f.seen = append(f.seen, e) })
	f.game.Resume()
	return f
}

func (f *fixture) count(typ events.Type) int {
	n := 0
	for _, e := range f.seen {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func (f *fixture) saved(t *testing.T) *game.State {
	t.Helper()
	raw, err := f.backend.Get(persistence.SaveKey)
	require.NoError(t, err)
	st, err := persistence.Decode([]byte(raw), epoch)
	require.NoError(t, err)
	return st
}

func TestClickPipelineOrdersEvents(t *testing.T) {
	params := tuning.Default()
	params.XPPerClick = 150
	f := newFixture(t, params, nil)

	require.NoError(t, f.game.Click())

	var types []events.Type
	for _, e := range f.seen {
		switch e.Type {
		case events.Notification, events.EffectRequested, events.EffectsChanged:
		default:
			types = append(types, e.Type)
		}
	}
	assert.Equal(t, []events.Type{events.ClickRegistered, events.LevelUp, events.AchievementUnlocked}, types)
	assert.True(t, f.game.State().UnlockedAchievements.Has("first_click"))

	// A level-up is notable, so the click was saved immediately.
	assert.Equal(t, uint32(2), f.saved(t).Level)
}

func TestPlainClicksAreCoalescedUntilAutosave(t *testing.T) {
	f := newFixture(t, tuning.Default(), nil)
	require.NoError(t, f.game.Click()) // first_click unlock saves
	require.NoError(t, f.game.Click())
	require.NoError(t, f.game.Click())

	assert.Equal(t, 1.0, f.saved(t).Clicks)

	f.game.Autosave()
	assert.Equal(t, 3.0, f.saved(t).Clicks)
}

func TestBuyThroughGame(t *testing.T) {
	st := game.Default(epoch)
	st.Clicks = 49
	f := newFixture(t, tuning.Default(), st)

	_, err := f.game.Buy(game.ItemMinion)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 49.0, f.game.State().Clicks)

	require.NoError(t, f.game.Click())
	p, err := f.game.Buy(game.ItemMinion)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), p.Owned)
	assert.True(t, f.game.State().UnlockedAchievements.Has("first_minion"))
	assert.Equal(t, uint32(1), f.saved(t).ShopItems.Minion.Owned)

	f.game.PassiveTick()
	assert.Equal(t, 1.0, f.game.State().Clicks)
}

func TestSettingsRespectTiers(t *testing.T) {
	f := newFixture(t, tuning.Default(), nil)

	err := f.game.SetFlag(game.SettingMeltPage, true)
	assert.ErrorIs(t, err, effects.ErrEffectLocked)
	assert.False(t, f.game.State().Settings.MeltPage)

	require.NoError(t, f.game.SetFlag(game.SettingDarkMode, false))
	assert.NotContains(t, f.game.Snapshot().ActiveEffects, "darkMode")
	assert.False(t, f.saved(t).Settings.DarkMode)

	require.NoError(t, f.game.SetIntensity(100))
	assert.True(t, f.game.State().UnlockedAchievements.Has("max_chaos"))
	assert.ErrorIs(t, f.game.SetIntensity(101), game.ErrInvalidValue)
	assert.ErrorIs(t, f.game.SetFlag("wobble", true), game.ErrUnknownSetting)

	// Resume and darkMode off; intensity does not change the continuous set.
	assert.Equal(t, 2, f.count(events.EffectsChanged))
}

func TestOmegaFiresExactlyOnce(t *testing.T) {
	params := tuning.Default()
	params.OmegaLevel = 3
	params.XPPerClick = 250 // reaches level 3 in one click
	f := newFixture(t, params, nil)

	require.NoError(t, f.game.Click())
	assert.Equal(t, effects.PhaseAscending, f.game.Phase())
	assert.True(t, f.game.Suspended())
	assert.Equal(t, 1, f.count(events.AscensionStarted))
	require.Len(t, f.sched.delays, 1)
	assert.Equal(t, params.CutsceneDuration, f.sched.delays[0])

	assert.ErrorIs(t, f.game.Click(), effects.ErrSuspended)
	_, err := f.game.Buy(game.ItemMinion)
	assert.ErrorIs(t, err, effects.ErrSuspended)
	_, err = f.game.ToggleVisibility()
	assert.ErrorIs(t, err, effects.ErrSuspended)

	saves := f.saver.saves
	f.sched.fireAll()
	assert.Equal(t, effects.PhaseOmega, f.game.Phase())
	assert.True(t, f.game.State().OmegaMode)
	assert.True(t, f.saved(t).OmegaMode)
	assert.Equal(t, 1, f.count(events.OmegaEntered))
	assert.True(t, f.game.State().UnlockedAchievements.Has("omega"))
	// One save covers omegaMode and the omega achievement, before the event.
	assert.Equal(t, saves+1, f.saver.saves)
	assert.True(t, f.saved(t).UnlockedAchievements.Has("omega"))
	var order []string
	for _, e := range f.seen {
		if e.Type == events.OmegaEntered || (e.Type == events.AchievementUnlocked && e.AchievementID == "omega") {
			order = append(order, string(e.Type))
		}
	}
	assert.Equal(t, []string{"achievementUnlocked", "omegaEntered"}, order)

	// Further level crossings never re-enter the machine.
	for i := 0; i < 20; i++ {
		require.NoError(t, f.game.Click())
	}
	f.sched.fireAll()
	assert.Equal(t, 1, f.count(events.OmegaEntered))
	assert.Equal(t, 1, f.count(events.AscensionStarted))
}

func TestResumeRestartsInterruptedAscension(t *testing.T) {
	st := game.Default(epoch)
	st.Level = 100
	st.XPToNextLevel = 1 << 40
	f := newFixture(t, tuning.Default(), st)

	assert.True(t, f.game.Suspended())
	f.sched.fireAll()
	assert.True(t, f.game.State().OmegaMode)
}

func TestResetCancelsCutscene(t *testing.T) {
	params := tuning.Default()
	params.OmegaLevel = 2
	params.XPPerClick = 100
	f := newFixture(t, params, nil)

	require.NoError(t, f.game.Click())
	require.True(t, f.game.Suspended())

	f.game.Reset()
	f.sched.fireAll()

	assert.Equal(t, effects.PhaseNormal, f.game.Phase())
	assert.False(t, f.game.State().OmegaMode)
	assert.Zero(t, f.count(events.OmegaEntered))
	assert.Equal(t, 1, f.count(events.StateReset))
	assert.Equal(t, game.Default(epoch), f.saved(t))
}

func TestToggleVisibility(t *testing.T) {
	f := newFixture(t, tuning.Default(), nil)

	v, err := f.game.ToggleVisibility()
	require.NoError(t, err)
	assert.False(t, v)
	assert.False(t, f.game.Snapshot().Visible)

	require.Equal(t, 1, f.count(events.VisibilityToggled))
	last := f.seen[len(f.seen)-1]
	require.NotNil(t, last.Visible)
	assert.False(t, *last.Visible)
}

func TestSaveFailureKeepsPlaying(t *testing.T) {
	f := newFixture(t, tuning.Default(), nil)
	f.backend.FailPuts = errors.New("disk full")

	require.NoError(t, f.game.Click())
	assert.Error(t, f.game.Save())
	assert.Equal(t, 1.0, f.game.State().Clicks)
	assert.GreaterOrEqual(t, f.count(events.Notification), 1)
}

func TestSnapshot(t *testing.T) {
	st := game.Default(epoch.Add(-2 * time.Hour))
	st.Clicks = 999.5
	st.ShopItems.Minion.Owned = 2
	f := newFixture(t, tuning.Default(), st)

	snap := f.game.Snapshot()

	assert.Equal(t, "999", snap.ClicksText)
	assert.Equal(t, "1st", snap.LevelText)
	assert.Equal(t, "2 hours ago", snap.ElapsedText)
	assert.Equal(t, 2.0, snap.ClicksPerSecond)
	assert.Equal(t, 50, snap.EffectiveIntensity)
	require.Len(t, snap.Shop, 3)
	assert.Equal(t, 67.0, snap.Shop[0].Price) // ceil(50 × 1.15²)
	assert.True(t, snap.Shop[0].Affordable)
	assert.False(t, snap.Shop[2].Affordable)
	assert.Len(t, snap.Achievements, 15)
	assert.True(t, snap.Achievements[13].Unlocked) // marathon
	assert.Equal(t, effects.PhaseNormal, snap.Phase)

	snap.State.Clicks = 0
	assert.Equal(t, 999.5, f.game.State().Clicks)
}
