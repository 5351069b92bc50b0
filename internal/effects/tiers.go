package effects

import (
	"errors"
	"fmt"

	"github.com/talgya/chaosmode/internal/game"
)

// ErrEffectLocked rejects enabling a setting whose tier the level has not reached.
var ErrEffectLocked = errors.New("effect locked")

// Tier is a level-gated step of chaos escalation.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
	Tier4
	Tier5
)

// TierInfo describes a tier.
type TierInfo struct {
	Tier     Tier               `json:"tier"`
	MinLevel uint32             `json:"minLevel"`
	Name     string             `json:"name"`
	Settings []game.SettingName `json:"settings"`
}

// Tiers is the escalation ladder in ascending order. Tier 5 gates no
// setting; it turns on the ambient page shake.
var Tiers = []TierInfo{
	{Tier1, 1, "Mild Chaos", []game.SettingName{
		game.SettingDarkMode, game.SettingFireworksOnClick, game.SettingCursorTrail,
		game.SettingAnimateButtons, game.SettingPeriodicConfetti,
	}},
	{Tier2, 5, "Typographic Crimes", []game.SettingName{game.SettingComicSans, game.SettingRainbowText}},
	{Tier3, 10, "Reality Bending", []game.SettingName{game.SettingReplaceImages, game.SettingMatrixRain}},
	{Tier4, 25, "Structural Failure", []game.SettingName{game.SettingFlipPage, game.SettingMeltPage}},
	{Tier5, 50, "Total Chaos", nil},
}

// TiersForLevel returns every tier unlocked at level. Monotonic: a higher
// level never returns fewer tiers.
func TiersForLevel(level uint32) []Tier {
	var out []Tier
	for _, t := range Tiers {
		if level >= t.MinLevel {
			out = append(out, t.Tier)
		}
	}
	return out
}

// HighestTier returns the top unlocked tier.
func HighestTier(level uint32) Tier {
	tiers := TiersForLevel(level)
	if len(tiers) == 0 {
		return 0
	}
	return tiers[len(tiers)-1]
}

// NewTiers returns the tiers unlocked by moving from level from to level to.
func NewTiers(from, to uint32) []TierInfo {
	var out []TierInfo
	for _, t := range Tiers {
		if from < t.MinLevel && to >= t.MinLevel {
			out = append(out, t)
		}
	}
	return out
}

// TierOf returns the tier gating a setting. chaosIntensity is never gated.
func TierOf(name game.SettingName) Tier {
	for _, t := range Tiers {
		for _, s := range t.Settings {
			if s == name {
				return t.Tier
			}
		}
	}
	return Tier1
}

// Info returns the metadata of t.
func (t Tier) Info() TierInfo {
	for _, info := range Tiers {
		if info.Tier == t {
			return info
		}
	}
	return TierInfo{}
}

// CanEnable reports whether a setting may be switched on at level.
// Turning a setting off is always allowed.
func CanEnable(name game.SettingName, on bool, level uint32) error {
	if !on {
		return nil
	}
	tier := TierOf(name)
	if HighestTier(level) < tier {
		return fmt.Errorf("%w: %s needs level %d", ErrEffectLocked, name, tier.Info().MinLevel)
	}
	return nil
}
