// Package tuning holds every numeric constant of the chaos economy.
// Nothing in the engine hard-codes a rate or a curve; it reads a Params.
package tuning

import (
	"math"
	"time"
)

// Fixed bounds of the model. These are not tunable because persisted
// records and the settings surface depend on them.
const (
	// StartXPToNextLevel is the xp threshold of level 1.
	StartXPToNextLevel = 100

	// MaxIntensity is the top of the chaosIntensity slider.
	MaxIntensity = 100

	// MaxEffectiveIntensity caps intensity after chaos boosters are added.
	MaxEffectiveIntensity = 300
)

// Params is the full tuning surface. Field tags let config override any
// value from the environment.
type Params struct {
	// XPPerClick is the xp a manual click awards, independent of the multiplier.
	XPPerClick uint64 `env:"CHAOS_XP_PER_CLICK"`

	// XPGrowth scales xpToNextLevel on every level-up (exponential curve).
	XPGrowth float64 `env:"CHAOS_XP_GROWTH"`

	// XPCeiling is where xpToNextLevel saturates instead of overflowing.
	XPCeiling uint64 `env:"CHAOS_XP_CEILING"`

	// MaxLevel is where leveling stops; excess xp is clamped below the threshold.
	MaxLevel uint32 `env:"CHAOS_MAX_LEVEL"`

	// PriceGrowth is the geometric price ratio per owned unit.
	PriceGrowth float64 `env:"CHAOS_PRICE_GROWTH"`

	// PerMinionRate is clicks generated per minion per income tick.
	PerMinionRate float64 `env:"CHAOS_PER_MINION_RATE"`

	// MultiplierStep is added to clickMultiplier per multiplier purchase.
	MultiplierStep float64 `env:"CHAOS_MULTIPLIER_STEP"`

	// BoosterIntensity is added to effective chaos intensity per booster.
	BoosterIntensity int `env:"CHAOS_BOOSTER_INTENSITY"`

	// IncomeInterval is the passive-income tick period.
	IncomeInterval time.Duration `env:"CHAOS_INCOME_INTERVAL"`

	// AmbientEvery runs the ambient-effect pass every N income ticks.
	AmbientEvery uint64 `env:"CHAOS_AMBIENT_EVERY"`

	// AutosaveEvery flushes coalesced click/tick mutations every N ticks.
	AutosaveEvery uint64 `env:"CHAOS_AUTOSAVE_EVERY"`

	// OmegaLevel is the milestone that starts the ascension cutscene.
	OmegaLevel uint32 `env:"CHAOS_OMEGA_LEVEL"`

	// CutsceneDuration is how long interaction stays suspended while ascending.
	CutsceneDuration time.Duration `env:"CHAOS_CUTSCENE_DURATION"`
}

// Default returns the shipped tuning.
func Default() Params {
	return Params{
		XPPerClick:       10,
		XPGrowth:         1.1,
		XPCeiling:        1 << 52, // still exact as a float64
		MaxLevel:         1 << 20,
		PriceGrowth:      1.15,
		PerMinionRate:    1,
		MultiplierStep:   0.5,
		BoosterIntensity: 10,
		IncomeInterval:   time.Second,
		AmbientEvery:     5,
		AutosaveEvery:    30,
		OmegaLevel:       100,
		CutsceneDuration: 8 * time.Second,
	}
}

// Validate reports the first parameter that would break an engine invariant.
func (p Params) Validate() error {
	switch {
	case p.XPGrowth <= 1 || math.IsInf(p.XPGrowth, 0) || math.IsNaN(p.XPGrowth):
		return invalid("xp growth must be > 1")
	case p.XPCeiling < StartXPToNextLevel:
		return invalid("xp ceiling below the level 1 threshold")
	case p.MaxLevel < 1:
		return invalid("max level must be >= 1")
	case p.PriceGrowth < 1 || math.IsInf(p.PriceGrowth, 0) || math.IsNaN(p.PriceGrowth):
		return invalid("price growth must be >= 1")
	case p.PerMinionRate < 0:
		return invalid("per-minion rate must be >= 0")
	case p.MultiplierStep < 0:
		return invalid("multiplier step must be >= 0")
	case p.BoosterIntensity < 0:
		return invalid("booster intensity must be >= 0")
	case p.IncomeInterval <= 0:
		return invalid("income interval must be positive")
	case p.AmbientEvery == 0 || p.AutosaveEvery == 0:
		return invalid("ambient and autosave periods must be positive")
	case p.OmegaLevel < 2:
		return invalid("omega level must be >= 2")
	case p.CutsceneDuration < 0:
		return invalid("cutscene duration must be >= 0")
	}
	return nil
}

type invalid string

func (e invalid) Error() string { return "tuning: " + string(e) }
