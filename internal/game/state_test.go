package game

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func TestDefaultState(t *testing.T) {
	s := Default(epoch)

	assert.Equal(t, uint32(1), s.Level)
	assert.Equal(t, uint64(0), s.XP)
	assert.Equal(t, uint64(100), s.XPToNextLevel)
	assert.Equal(t, 1.0, s.ClickMultiplier)
	assert.Equal(t, 50.0, s.ShopItems.Minion.BasePrice)
	assert.Equal(t, 250.0, s.ShopItems.Multiplier.BasePrice)
	assert.Equal(t, 1000.0, s.ShopItems.ChaosBooster.BasePrice)
	assert.Equal(t, 50, s.Settings.ChaosIntensity)
	assert.True(t, s.Settings.DarkMode)
	assert.False(t, s.Settings.MeltPage)
	assert.Equal(t, epoch, s.StartedAt().UTC())
	require.NoError(t, s.Validate())
}

func TestCloneIsDeep(t *testing.T) {
	s := Default(epoch)
	x := 12.0
	s.MenuPosition.X = &x
	s.UnlockedAchievements.Add("first_click")

	c := s.Clone()
	c.UnlockedAchievements.Add("omega")
	*c.MenuPosition.X = 99
	c.ShopItems.Minion.Owned = 4

	assert.False(t, s.UnlockedAchievements.Has("omega"))
	assert.Equal(t, 12.0, *s.MenuPosition.X)
	assert.Equal(t, uint32(0), s.ShopItems.Minion.Owned)
}

func TestValidateRejectsBrokenInvariants(t *testing.T) {
	cases := map[string]func(s *State){
		"level zero":          func(s *State) { s.Level = 0 },
		"zero threshold":      func(s *State) { s.XPToNextLevel = 0 },
		"xp at threshold":     func(s *State) { s.XP = s.XPToNextLevel },
		"negative clicks":     func(s *State) { s.Clicks = -1 },
		"multiplier below 1":  func(s *State) { s.ClickMultiplier = 0.5 },
		"intensity above 100": func(s *State) { s.Settings.ChaosIntensity = 101 },
		"free minions":        func(s *State) { s.ShopItems.Minion.BasePrice = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := Default(epoch)
			mutate(s)
			assert.True(t, errors.Is(s.Validate(), ErrMalformed))
		})
	}
}

func TestAchievementSetSerializesAsList(t *testing.T) {
	set := AchievementSet{}
	set.Add("level_5")
	set.Add("first_click")
	assert.False(t, set.Add("first_click"))

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `["first_click","level_5"]`, string(data))

	var back AchievementSet
	require.NoError(t, json.Unmarshal([]byte(`["a","b","a"]`), &back))
	assert.Len(t, back, 2)
	assert.True(t, back.Has("a"))

	require.NoError(t, json.Unmarshal([]byte(`null`), &back))
	assert.NotNil(t, back)
	assert.Empty(t, back)
}

func TestSettingsByName(t *testing.T) {
	s := DefaultSettings()

	require.NoError(t, s.SetFlag(SettingMeltPage, true))
	on, err := s.Flag(SettingMeltPage)
	require.NoError(t, err)
	assert.True(t, on)

	assert.ErrorIs(t, s.SetFlag("wobble", true), ErrUnknownSetting)
	assert.ErrorIs(t, s.SetFlag(SettingChaosIntensity, true), ErrInvalidValue)
	assert.ErrorIs(t, s.SetIntensity(101), ErrInvalidValue)
	assert.ErrorIs(t, s.SetIntensity(-1), ErrInvalidValue)
	require.NoError(t, s.SetIntensity(100))
	assert.Equal(t, 100, s.ChaosIntensity)

	name, err := ParseSettingName("chaosIntensity")
	require.NoError(t, err)
	assert.Equal(t, SettingChaosIntensity, name)
	_, err = ParseSettingName("nope")
	assert.ErrorIs(t, err, ErrUnknownSetting)
}

func TestParseItemID(t *testing.T) {
	id, err := ParseItemID("chaosBooster")
	require.NoError(t, err)
	assert.Equal(t, ItemChaosBooster, id)

	_, err = ParseItemID("goldenCursor")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestFormatCount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999.9, "999"},
		{1234, "1.23k"},
		{2_500_000, "2.50M"},
		{1_500_000_000, "1.50B"},
		{3e12, "3.00T"},
		{2e15, "2000.00T"},
		{-5, "0"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatCount(c.in), "FormatCount(%v)", c.in)
	}
}

func TestFormatLevelAndElapsed(t *testing.T) {
	assert.Equal(t, "5th", FormatLevel(5))
	assert.Equal(t, "1 hour ago", FormatElapsed(epoch, epoch.Add(time.Hour)))
}
