package game

import (
	"fmt"

	"github.com/talgya/chaosmode/internal/tuning"
)

// SettingName is one entry of the enumerated settings surface.
type SettingName string

const (
	SettingChaosIntensity   SettingName = "chaosIntensity"
	SettingDarkMode         SettingName = "darkMode"
	SettingComicSans        SettingName = "comicSans"
	SettingRainbowText      SettingName = "rainbowText"
	SettingFlipPage         SettingName = "flipPage"
	SettingMeltPage         SettingName = "meltPage"
	SettingMatrixRain       SettingName = "matrixRain"
	SettingFireworksOnClick SettingName = "fireworksOnClick"
	SettingCursorTrail      SettingName = "cursorTrail"
	SettingReplaceImages    SettingName = "replaceImages"
	SettingAnimateButtons   SettingName = "animateButtons"
	SettingPeriodicConfetti SettingName = "periodicConfetti"
)

// FlagNames lists the boolean settings in display order.
var FlagNames = []SettingName{
	SettingDarkMode,
	SettingComicSans,
	SettingRainbowText,
	SettingFlipPage,
	SettingMeltPage,
	SettingMatrixRain,
	SettingFireworksOnClick,
	SettingCursorTrail,
	SettingReplaceImages,
	SettingAnimateButtons,
	SettingPeriodicConfetti,
}

// ParseSettingName validates a wire setting name.
func ParseSettingName(s string) (SettingName, error) {
	if SettingName(s) == SettingChaosIntensity {
		return SettingChaosIntensity, nil
	}
	for _, n := range FlagNames {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSetting, s)
}

// Settings is persisted with the game state.
type Settings struct {
	ChaosIntensity   int  `json:"chaosIntensity"`
	DarkMode         bool `json:"darkMode"`
	ComicSans        bool `json:"comicSans"`
	RainbowText      bool `json:"rainbowText"`
	FlipPage         bool `json:"flipPage"`
	MeltPage         bool `json:"meltPage"`
	MatrixRain       bool `json:"matrixRain"`
	FireworksOnClick bool `json:"fireworksOnClick"`
	CursorTrail      bool `json:"cursorTrail"`
	ReplaceImages    bool `json:"replaceImages"`
	AnimateButtons   bool `json:"animateButtons"`
	PeriodicConfetti bool `json:"periodicConfetti"`
}

// DefaultSettings matches a first run.
func DefaultSettings() Settings {
	return Settings{
		ChaosIntensity:   50,
		DarkMode:         true,
		FireworksOnClick: true,
		CursorTrail:      true,
		AnimateButtons:   true,
		PeriodicConfetti: true,
	}
}

func (s *Settings) flag(name SettingName) (*bool, error) {
	switch name {
	case SettingDarkMode:
		return &s.DarkMode, nil
	case SettingComicSans:
		return &s.ComicSans, nil
	case SettingRainbowText:
		return &s.RainbowText, nil
	case SettingFlipPage:
		return &s.FlipPage, nil
	case SettingMeltPage:
		return &s.MeltPage, nil
	case SettingMatrixRain:
		return &s.MatrixRain, nil
	case SettingFireworksOnClick:
		return &s.FireworksOnClick, nil
	case SettingCursorTrail:
		return &s.CursorTrail, nil
	case SettingReplaceImages:
		return &s.ReplaceImages, nil
	case SettingAnimateButtons:
		return &s.AnimateButtons, nil
	case SettingPeriodicConfetti:
		return &s.PeriodicConfetti, nil
	case SettingChaosIntensity:
		return nil, fmt.Errorf("%w: %s is not a toggle", ErrInvalidValue, name)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSetting, name)
}

// Flag reads a boolean setting.
func (s *Settings) Flag(name SettingName) (bool, error) {
	p, err := s.flag(name)
	if err != nil {
		return false, err
	}
	return *p, nil
}

// SetFlag writes a boolean setting.
func (s *Settings) SetFlag(name SettingName, on bool) error {
	p, err := s.flag(name)
	if err != nil {
		return err
	}
	*p = on
	return nil
}

// SetIntensity writes chaosIntensity, rejecting values outside [0,100].
func (s *Settings) SetIntensity(v int) error {
	if v < 0 || v > tuning.MaxIntensity {
		return fmt.Errorf("%w: chaos intensity %d outside [0,%d]", ErrInvalidValue, v, tuning.MaxIntensity)
	}
	s.ChaosIntensity = v
	return nil
}
