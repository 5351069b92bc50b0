// Package achievements holds the fixed registry of one-time unlocks and
// the evaluator that grants them.
package achievements

import (
	"time"

	"github.com/talgya/chaosmode/internal/events"
	"github.com/talgya/chaosmode/internal/game"
	"github.com/talgya/chaosmode/internal/tuning"
)

// Definition is one achievement: metadata plus a predicate over state.
type Definition struct {
	ID          game.AchievementID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Icon        string             `json:"icon"`

	Unlocked func(s *game.State, now time.Time) bool `json:"-"`
}

// Registry is an ordered list of definitions. Order decides the unlock
// order of achievements satisfied by the same trigger.
type Registry struct {
	defs  []Definition
	index map[game.AchievementID]int
}

// NewRegistry builds a registry. Duplicate ids panic.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{index: make(map[game.AchievementID]int, len(defs))}
	for _, d := range defs {
		if _, dup := r.index[d.ID]; dup {
			panic("achievements: duplicate id " + string(d.ID))
		}
		r.index[d.ID] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	return r
}

// All returns the definitions in registry order.
func (r *Registry) All() []Definition {
	return r.defs
}

// Lookup finds a definition by id.
func (r *Registry) Lookup(id game.AchievementID) (Definition, bool) {
	i, ok := r.index[id]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Len returns the registry size.
func (r *Registry) Len() int {
	return len(r.defs)
}

func clicksAtLeast(n uint64) func(*game.State, time.Time) bool {
	return func(s *game.State, _ time.Time) bool { return s.ManualClicks >= n }
}

func levelAtLeast(n uint32) func(*game.State, time.Time) bool {
	return func(s *game.State, _ time.Time) bool { return s.Level >= n }
}

// DefaultRegistry is the shipped achievement list.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Definition{ID: "first_click", Title: "First Click", Description: "Click the chaos button.", Icon: "👆",
			Unlocked: clicksAtLeast(1)},
		Definition{ID: "click_100", Title: "Clicker", Description: "Click 100 times.", Icon: "🖱️",
			Unlocked: clicksAtLeast(100)},
		Definition{ID: "click_1000", Title: "Click Maniac", Description: "Click 1,000 times.", Icon: "🔥",
			Unlocked: clicksAtLeast(1000)},
		Definition{ID: "level_5", Title: "Getting Started", Description: "Reach level 5.", Icon: "⭐",
			Unlocked: levelAtLeast(5)},
		Definition{ID: "level_10", Title: "Chaos Apprentice", Description: "Reach level 10.", Icon: "🌟",
			Unlocked: levelAtLeast(10)},
		Definition{ID: "level_25", Title: "Chaos Adept", Description: "Reach level 25.", Icon: "💫",
			Unlocked: levelAtLeast(25)},
		Definition{ID: "level_50", Title: "Chaos Master", Description: "Reach level 50.", Icon: "👑",
			Unlocked: levelAtLeast(50)},
		Definition{ID: "first_minion", Title: "Minion Master", Description: "Buy your first minion.", Icon: "👾",
			Unlocked: func(s *game.State, _ time.Time) bool { return s.ShopItems.Minion.Owned >= 1 }},
		Definition{ID: "minion_army", Title: "Minion Army", Description: "Own 10 minions.", Icon: "🤖",
			Unlocked: func(s *game.State, _ time.Time) bool { return s.ShopItems.Minion.Owned >= 10 }},
		Definition{ID: "multiplied", Title: "Multiplied", Description: "Buy a click multiplier.", Icon: "✖️",
			Unlocked: func(s *game.State, _ time.Time) bool { return s.ShopItems.Multiplier.Owned >= 1 }},
		Definition{ID: "chaos_agent", Title: "Agent of Chaos", Description: "Buy a chaos booster.", Icon: "🌀",
			Unlocked: func(s *game.State, _ time.Time) bool { return s.ShopItems.ChaosBooster.Owned >= 1 }},
		Definition{ID: "hoarder", Title: "Hoarder", Description: "Bank 10,000 clicks.", Icon: "💰",
			Unlocked: func(s *game.State, _ time.Time) bool { return s.Clicks >= 10_000 }},
		Definition{ID: "max_chaos", Title: "Maximum Chaos", Description: "Turn chaos intensity to 100.", Icon: "🌪️",
			Unlocked: func(s *game.State, _ time.Time) bool { return s.Settings.ChaosIntensity >= tuning.MaxIntensity }},
		Definition{ID: "marathon", Title: "Marathon", Description: "Keep the chaos going for an hour.", Icon: "⏱️",
			Unlocked: func(s *game.State, now time.Time) bool { return s.Elapsed(now) >= time.Hour }},
		Definition{ID: "omega", Title: "Omega", Description: "Ascend beyond chaos.", Icon: "Ω",
			Unlocked: func(s *game.State, _ time.Time) bool { return s.OmegaMode }},
	)
}

// Evaluator grants achievements whose predicate has become true.
type Evaluator struct {
	registry *Registry
	bus      *events.Bus
}

// NewEvaluator creates an evaluator emitting on bus.
func NewEvaluator(registry *Registry, bus *events.Bus) *Evaluator {
	return &Evaluator{registry: registry, bus: bus}
}

// Registry returns the registry being evaluated.
func (ev *Evaluator) Registry() *Registry {
	return ev.registry
}

// Evaluate unlocks every satisfied, not-yet-unlocked achievement in
// registry order and returns the new ids. Re-running is a no-op.
func (ev *Evaluator) Evaluate(s *game.State, now time.Time) []game.AchievementID {
	var unlocked []game.AchievementID
	for _, d := range ev.registry.defs {
		if s.UnlockedAchievements.Has(d.ID) || !d.Unlocked(s, now) {
			continue
		}
		s.UnlockedAchievements.Add(d.ID)
		unlocked = append(unlocked, d.ID)

		e := events.New(events.AchievementUnlocked)
		e.AchievementID = string(d.ID)
		ev.bus.Emit(e)
	}
	return unlocked
}
