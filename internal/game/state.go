// Package game defines the canonical chaos-mode game state and its
// persisted shape. It has no behavior beyond construction, copying,
// validation and typed access; the engine owns every mutation.
package game

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/talgya/chaosmode/internal/tuning"
)

// Errors shared by every layer that touches state.
var (
	ErrUnknownItem    = errors.New("unknown shop item")
	ErrUnknownSetting = errors.New("unknown setting")
	ErrInvalidValue   = errors.New("invalid setting value")
	ErrMalformed      = errors.New("malformed game state")
)

// MenuPosition is the last known overlay placement. Nil means "never moved".
type MenuPosition struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// State is the whole game. One instance exists per session and is owned
// by the engine; everything else sees copies.
type State struct {
	Clicks               float64        `json:"clicks"`       // Spendable; fractional multipliers accumulate exactly
	ManualClicks         uint64         `json:"manualClicks"` // Click triggers ever registered, never debited
	Level                uint32         `json:"level"`
	XP                   uint64         `json:"xp"`
	XPToNextLevel        uint64         `json:"xpToNextLevel"`
	Minions              uint32         `json:"minions"` // Display mirror of ShopItems.Minion.Owned
	ClickMultiplier      float64        `json:"clickMultiplier"`
	ShopItems            ShopItems      `json:"shopItems"`
	UnlockedAchievements AchievementSet `json:"unlockedAchievements"`
	Settings             Settings       `json:"settings"`
	OmegaMode            bool           `json:"omegaMode"`
	StartTime            int64          `json:"startTime"` // Epoch milliseconds
	MenuPosition         MenuPosition   `json:"menuPosition"`
}

// Default returns a first-run state anchored at now.
func Default(now time.Time) *State {
	return &State{
		Level:                1,
		XPToNextLevel:        tuning.StartXPToNextLevel,
		ClickMultiplier:      1,
		ShopItems:            DefaultShopItems(),
		UnlockedAchievements: AchievementSet{},
		Settings:             DefaultSettings(),
		StartTime:            now.UnixMilli(),
	}
}

// StartedAt returns StartTime as a time.
func (s *State) StartedAt() time.Time {
	return time.UnixMilli(s.StartTime)
}

// Elapsed returns how long this save has existed at now.
func (s *State) Elapsed(now time.Time) time.Duration {
	d := now.Sub(s.StartedAt())
	if d < 0 {
		return 0
	}
	return d
}

// DisplayClicks floors the spendable balance for display.
func (s *State) DisplayClicks() uint64 {
	if s.Clicks <= 0 {
		return 0
	}
	return uint64(math.Floor(s.Clicks))
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := *s
	c.UnlockedAchievements = s.UnlockedAchievements.Clone()
	if s.MenuPosition.X != nil {
		x := *s.MenuPosition.X
		c.MenuPosition.X = &x
	}
	if s.MenuPosition.Y != nil {
		y := *s.MenuPosition.Y
		c.MenuPosition.Y = &y
	}
	return &c
}

// Validate checks the invariants a hydrated record must satisfy.
// A failure means the record cannot be trusted as a whole.
func (s *State) Validate() error {
	switch {
	case s.Level < 1:
		return fmt.Errorf("%w: level %d", ErrMalformed, s.Level)
	case s.XPToNextLevel == 0:
		return fmt.Errorf("%w: zero xp threshold", ErrMalformed)
	case s.XP >= s.XPToNextLevel:
		return fmt.Errorf("%w: xp %d not below threshold %d", ErrMalformed, s.XP, s.XPToNextLevel)
	case math.IsNaN(s.Clicks) || math.IsInf(s.Clicks, 0) || s.Clicks < 0:
		return fmt.Errorf("%w: clicks %v", ErrMalformed, s.Clicks)
	case math.IsNaN(s.ClickMultiplier) || math.IsInf(s.ClickMultiplier, 0) || s.ClickMultiplier < 1:
		return fmt.Errorf("%w: click multiplier %v", ErrMalformed, s.ClickMultiplier)
	case s.Settings.ChaosIntensity < 0 || s.Settings.ChaosIntensity > tuning.MaxIntensity:
		return fmt.Errorf("%w: chaos intensity %d", ErrMalformed, s.Settings.ChaosIntensity)
	}
	for _, id := range Items {
		item := s.ShopItems.Get(id)
		if item.BasePrice <= 0 || math.IsNaN(item.BasePrice) || math.IsInf(item.BasePrice, 0) {
			return fmt.Errorf("%w: %s base price %v", ErrMalformed, id, item.BasePrice)
		}
	}
	return nil
}
