package achievements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/chaosmode/internal/events"
	"github.com/talgya/chaosmode/internal/game"
)

var epoch = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func collect(bus *events.Bus) *[]string {
	var ids []string
	bus.Subscribe(func(e events.Event) {
		if e.Type == events.AchievementUnlocked {
			ids = append(ids, e.AchievementID)
		}
	})
	return &ids
}

func TestEvaluateUnlocksInRegistryOrder(t *testing.T) {
	bus := events.NewBus()
	got := collect(bus)
	ev := NewEvaluator(DefaultRegistry(), bus)

	s := game.Default(epoch)
	s.ManualClicks = 150
	s.Level = 12
	s.ShopItems.Minion.Owned = 1

	ids := ev.Evaluate(s, epoch)

	want := []game.AchievementID{"first_click", "click_100", "level_5", "level_10", "first_minion"}
	assert.Equal(t, want, ids)
	assert.Equal(t, []string{"first_click", "click_100", "level_5", "level_10", "first_minion"}, *got)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	bus := events.NewBus()
	got := collect(bus)
	ev := NewEvaluator(DefaultRegistry(), bus)
	s := game.Default(epoch)
	s.ManualClicks = 1

	ev.Evaluate(s, epoch)
	again := ev.Evaluate(s, epoch)

	assert.Empty(t, again)
	assert.Len(t, *got, 1)
}

func TestUnlockedOnlyGrows(t *testing.T) {
	ev := NewEvaluator(DefaultRegistry(), events.NewBus())
	s := game.Default(epoch)

	prev := s.UnlockedAchievements.Clone()
	for i := 0; i < 200; i++ {
		s.ManualClicks++
		if i == 100 {
			// Spending never revokes hoarder-style unlocks.
			s.Clicks = 20_000
		}
		if i == 101 {
			s.Clicks = 0
		}
		ev.Evaluate(s, epoch.Add(time.Duration(i)*time.Minute))
		for id := range prev {
			require.True(t, s.UnlockedAchievements.Has(id), "lost %s at step %d", id, i)
		}
		prev = s.UnlockedAchievements.Clone()
	}
	assert.True(t, s.UnlockedAchievements.Has("hoarder"))
	assert.True(t, s.UnlockedAchievements.Has("marathon"))
}

func TestOmegaAchievement(t *testing.T) {
	ev := NewEvaluator(DefaultRegistry(), events.NewBus())
	s := game.Default(epoch)
	s.OmegaMode = true

	ids := ev.Evaluate(s, epoch)

	assert.Contains(t, ids, game.AchievementID("omega"))
}

func TestLookupAndDuplicates(t *testing.T) {
	r := DefaultRegistry()
	d, ok := r.Lookup("minion_army")
	require.True(t, ok)
	assert.Equal(t, "Minion Army", d.Title)
	_, ok = r.Lookup("nope")
	assert.False(t, ok)
	assert.Equal(t, 15, r.Len())

	assert.Panics(t, func() {
		NewRegistry(Definition{ID: "a"}, Definition{ID: "a"})
	})
}
