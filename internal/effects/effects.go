// Package effects decides which presentation effects the chaos engine
// asks for. It never performs one: continuous effects are published as a
// full set, one-shot effects and toasts as events on the bus.
package effects

import (
	"sort"

	"github.com/talgya/chaosmode/internal/game"
	"github.com/talgya/chaosmode/internal/tuning"
)

// Continuous lists the settings that map one-to-one onto a standing
// presentation effect. fireworksOnClick and periodicConfetti gate
// one-shot effects instead and are not part of the active set.
var Continuous = []game.SettingName{
	game.SettingDarkMode,
	game.SettingComicSans,
	game.SettingRainbowText,
	game.SettingFlipPage,
	game.SettingMeltPage,
	game.SettingMatrixRain,
	game.SettingCursorTrail,
	game.SettingReplaceImages,
	game.SettingAnimateButtons,
}

// ActiveEffects returns the sorted ids of continuous effects whose flag is on.
func ActiveEffects(s game.Settings) []string {
	active := make([]string, 0, len(Continuous))
	for _, name := range Continuous {
		if on, _ := s.Flag(name); on {
			active = append(active, string(name))
		}
	}
	sort.Strings(active)
	return active
}

// EffectiveIntensity is the chaos slider plus the chaos boosters' bonus,
// capped at tuning.MaxEffectiveIntensity.
func EffectiveIntensity(s *game.State, params tuning.Params) int {
	i := s.Settings.ChaosIntensity + int(s.ShopItems.ChaosBooster.Owned)*params.BoosterIntensity
	if i > tuning.MaxEffectiveIntensity || i < 0 {
		return tuning.MaxEffectiveIntensity
	}
	return i
}

// FireChance maps an intensity to the probability a cosmetic one-shot fires.
func FireChance(intensity int) float64 {
	p := float64(intensity) / tuning.MaxIntensity
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// BurstSize is the particle count of a click burst at an intensity.
func BurstSize(intensity int) int {
	if intensity < 0 {
		intensity = 0
	}
	return 5 + intensity/10
}
