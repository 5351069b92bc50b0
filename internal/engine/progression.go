package engine

import (
	"math"

	"github.com/talgya/chaosmode/internal/events"
	"github.com/talgya/chaosmode/internal/game"
	"github.com/talgya/chaosmode/internal/tuning"
)

// Progression applies click, income and leveling rules to a state.
// It mutates the state it is handed and emits events on the bus; it keeps
// no state of its own.
type Progression struct {
	params tuning.Params
	bus    *events.Bus
}

// NewProgression creates the rules engine for a tuning set.
func NewProgression(params tuning.Params, bus *events.Bus) *Progression {
	return &Progression{params: params, bus: bus}
}

// Params returns the tuning in effect.
func (p *Progression) Params() tuning.Params {
	return p.params
}

// RegisterClick counts one manual click and returns the levels gained.
func (p *Progression) RegisterClick(s *game.State) []uint32 {
	value := s.ClickMultiplier
	s.Clicks += value
	s.ManualClicks++
	s.XP = satAdd(s.XP, p.params.XPPerClick)

	e := events.New(events.ClickRegistered)
	e.Value = value
	p.bus.Emit(e)

	return p.levelPass(s)
}

// PassiveTick pays minion income. Zero minions is a no-op.
// Returns the amount paid and the levels gained.
func (p *Progression) PassiveTick(s *game.State) (float64, []uint32) {
	amount := float64(s.ShopItems.Minion.Owned) * p.params.PerMinionRate
	if amount <= 0 {
		return 0, nil
	}
	s.Clicks += amount
	s.XP = satAdd(s.XP, floorToUint(amount))
	return amount, p.levelPass(s)
}

// ClicksPerSecond is the display rate of passive income.
func (p *Progression) ClicksPerSecond(s *game.State) float64 {
	perTick := float64(s.ShopItems.Minion.Owned) * p.params.PerMinionRate
	return perTick / p.params.IncomeInterval.Seconds()
}

// levelPass converts banked xp into levels until xp is below the
// threshold, emitting one levelUp per crossing in ascending order.
func (p *Progression) levelPass(s *game.State) []uint32 {
	var gained []uint32
	for s.XP >= s.XPToNextLevel {
		if s.Level >= p.params.MaxLevel {
			s.XP = s.XPToNextLevel - 1
			break
		}
		s.XP -= s.XPToNextLevel
		s.Level++
		s.XPToNextLevel = NextThreshold(s.XPToNextLevel, p.params)
		gained = append(gained, s.Level)

		e := events.New(events.LevelUp)
		e.Level = s.Level
		p.bus.Emit(e)
	}
	return gained
}

// NextThreshold scales an xp threshold by the growth factor, saturating
// at the ceiling. The result is never below prev and never zero.
func NextThreshold(prev uint64, params tuning.Params) uint64 {
	if prev >= params.XPCeiling {
		return params.XPCeiling
	}
	next := math.Ceil(float64(prev) * params.XPGrowth)
	if next >= float64(params.XPCeiling) || math.IsInf(next, 0) || math.IsNaN(next) {
		return params.XPCeiling
	}
	n := uint64(next)
	if n <= prev {
		n = prev + 1
	}
	return n
}

func satAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func floorToUint(f float64) uint64 {
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	if f >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(math.Floor(f))
}
